package analytics

import "github.com/shopspring/decimal"

// CardStatus tells the consumer whether a card carries a value
type CardStatus string

const (
	CardOK     CardStatus = "ok"
	CardNoData CardStatus = "no_data"
)

// Card labels, in display order
const (
	LabelTotalProfit  = "Total profit/loss"
	LabelWinRate      = "Win rate"
	LabelAverageStake = "Average stake"
	LabelBestSport    = "Best sport"
)

// MetricCard is one overview figure. Exactly one of Number and Text is set
// when Status is CardOK; neither is set for CardNoData.
type MetricCard struct {
	Label  string
	Helper string
	Status CardStatus
	Number *decimal.Decimal
	Text   *string
}

func numberCard(label, helper string, v decimal.Decimal) MetricCard {
	return MetricCard{Label: label, Helper: helper, Status: CardOK, Number: &v}
}

func textCard(label, helper, v string) MetricCard {
	return MetricCard{Label: label, Helper: helper, Status: CardOK, Text: &v}
}

func emptyCard(label, helper string) MetricCard {
	return MetricCard{Label: label, Helper: helper, Status: CardNoData}
}

// UnclassifiedLabel is shown when the best group has no value for the dimension
const UnclassifiedLabel = "Unclassified"

// ComposeOverview builds the fixed, ordered overview cards
func ComposeOverview(records []BetRecord) []MetricCard {
	var (
		wagers   int
		stakeSum decimal.Decimal
		settled  tally
		pnl      decimal.Decimal
	)
	for _, r := range records {
		if !r.IsWager() {
			continue
		}
		wagers++
		stakeSum = stakeSum.Add(r.Stake)
		if !r.IsSettled() {
			continue
		}
		settled.add(r)
		if r.Result != ResultVoid {
			pnl = pnl.Add(r.Profit())
		}
	}

	const (
		helperProfit = "Net result of settled wagers"
		helperWin    = "Share of decided wagers that won"
		helperStake  = "Mean stake per wager"
		helperBest   = "Highest profit by sport"
	)

	if wagers == 0 {
		return []MetricCard{
			emptyCard(LabelTotalProfit, helperProfit),
			emptyCard(LabelWinRate, helperWin),
			emptyCard(LabelAverageStake, helperStake),
			emptyCard(LabelBestSport, helperBest),
		}
	}

	cards := []MetricCard{
		numberCard(LabelTotalProfit, helperProfit, pnl),
		numberCard(LabelWinRate, helperWin, decimal.NewFromFloat(settled.winRate())),
		numberCard(LabelAverageStake, helperStake, stakeSum.Div(decimal.NewFromInt(int64(wagers)))),
	}

	best, ok := bestGroup(records, DimensionSport, ForCategory(CategorySport))
	if !ok {
		cards = append(cards, emptyCard(LabelBestSport, helperBest))
	} else {
		name := best.Key
		if best.IsUnclassified() {
			name = UnclassifiedLabel
		}
		cards = append(cards, textCard(LabelBestSport, helperBest, name))
	}

	return cards
}

// bestGroup returns the row with the highest profit, earlier rows winning ties
func bestGroup(records []BetRecord, d Dimension, f Filters) (BreakdownRow, bool) {
	rows, err := Aggregate(records, d, f)
	if err != nil || len(rows) == 0 {
		return BreakdownRow{}, false
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if r.Profit.GreaterThan(best.Profit) {
			best = r
		}
	}
	return best, true
}
