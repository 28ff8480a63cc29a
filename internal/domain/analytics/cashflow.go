package analytics

import "github.com/shopspring/decimal"

// Cashflow holds the raw deposit and withdrawal sums. No netting is done here.
type Cashflow struct {
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
}

// SummarizeCashflow sums deposit and withdrawal amounts
func SummarizeCashflow(records []BetRecord) Cashflow {
	var cf Cashflow
	for _, r := range records {
		switch r.Kind {
		case KindDeposit:
			cf.Deposits = cf.Deposits.Add(r.Amount)
		case KindWithdrawal:
			cf.Withdrawals = cf.Withdrawals.Add(r.Amount)
		}
	}
	return cf
}
