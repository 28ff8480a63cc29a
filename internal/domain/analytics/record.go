// Package analytics turns classified wager records into the overview,
// cashflow, timeline and breakdown figures served by the API. Everything in
// this package is a pure function over an immutable slice of records.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category selects which dimension set is meaningful for a wager
type Category string

const (
	CategorySport  Category = "sport"
	CategoryRacing Category = "racing"
)

// TransactionKind separates wagers from cash movements
type TransactionKind string

const (
	KindWager      TransactionKind = "wager"
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

// Result is the settlement outcome derived by the classifier
type Result string

const (
	ResultWon  Result = "won"
	ResultLost Result = "lost"
	ResultVoid Result = "void"
	ResultOpen Result = "open"
)

// Unclassified is the canonical key for a missing categorical value
const Unclassified = ""

// BetRecord is a classified record. It is never mutated after classification.
type BetRecord struct {
	ID         string
	PlacedAt   *time.Time
	SettledAt  *time.Time
	Stake      decimal.Decimal
	Payout     decimal.Decimal
	Sport      string
	Track      string
	BetType    string
	MarketType string
	Category   Category
	Kind       TransactionKind
	Result     Result

	// Amount is the cash value of a deposit or withdrawal; zero for wagers
	Amount decimal.Decimal
}

// IsWager reports whether the record is a placed bet
func (r BetRecord) IsWager() bool {
	return r.Kind == KindWager
}

// IsSettled reports whether the wager has a known result
func (r BetRecord) IsSettled() bool {
	return r.Result != ResultOpen
}

// Profit is payout minus stake
func (r BetRecord) Profit() decimal.Decimal {
	return r.Payout.Sub(r.Stake)
}

// Key returns the canonical grouping key of the record for a dimension
func (r BetRecord) Key(d Dimension) string {
	switch d {
	case DimensionSport:
		return r.Sport
	case DimensionTrack:
		return r.Track
	case DimensionBetType:
		return r.BetType
	case DimensionMarketType:
		return r.MarketType
	}
	return Unclassified
}
