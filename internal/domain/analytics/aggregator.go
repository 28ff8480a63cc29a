package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BreakdownRow holds the reduced figures for one group
type BreakdownRow struct {
	Key     string
	Count   int
	Stake   decimal.Decimal
	Payout  decimal.Decimal
	Profit  decimal.Decimal
	ROI     float64
	WinRate float64
	Won     int
	Lost    int
}

// IsUnclassified reports whether the row is the bucket for missing values
func (r BreakdownRow) IsUnclassified() bool {
	return r.Key == Unclassified
}

// tally accumulates the figures shared by breakdown rows and overview cards
type tally struct {
	count  int
	stake  decimal.Decimal
	payout decimal.Decimal
	won    int
	lost   int
}

func (t *tally) add(r BetRecord) {
	t.count++
	t.stake = t.stake.Add(r.Stake)
	t.payout = t.payout.Add(r.Payout)
	switch r.Result {
	case ResultWon:
		t.won++
	case ResultLost:
		t.lost++
	}
}

// merge folds an already reduced row into the tally
func (t *tally) merge(r BreakdownRow) {
	t.count += r.Count
	t.stake = t.stake.Add(r.Stake)
	t.payout = t.payout.Add(r.Payout)
	t.won += r.Won
	t.lost += r.Lost
}

func (t *tally) profit() decimal.Decimal {
	return t.payout.Sub(t.stake)
}

// roi is profit over stake, defined as 0 when nothing was staked
func (t *tally) roi() float64 {
	if !t.stake.IsPositive() {
		return 0
	}
	return t.profit().Div(t.stake).InexactFloat64()
}

// winRate is won over decided (won + lost) wagers, 0 when none were decided
func (t *tally) winRate() float64 {
	decided := t.won + t.lost
	if decided == 0 {
		return 0
	}
	return float64(t.won) / float64(decided)
}

func (t *tally) row(key string) BreakdownRow {
	return BreakdownRow{
		Key:     key,
		Count:   t.count,
		Stake:   t.stake,
		Payout:  t.payout,
		Profit:  t.profit(),
		ROI:     t.roi(),
		WinRate: t.winRate(),
		Won:     t.won,
		Lost:    t.lost,
	}
}

// Aggregate groups the settled wagers matching filters by dimension.
//
// Every matching record lands in exactly one row; records missing the
// dimension value share the Unclassified row. Rows are ordered by profit
// descending, then stake descending, then key ascending, with the
// Unclassified row always last.
func Aggregate(records []BetRecord, dimension Dimension, filters Filters) ([]BreakdownRow, error) {
	if err := ValidateBreakdown(dimension, filters); err != nil {
		return nil, err
	}

	groups := make(map[string]*tally)
	for _, r := range records {
		if !r.IsWager() || !r.IsSettled() || !filters.Match(r) {
			continue
		}
		key := r.Key(dimension)
		g, ok := groups[key]
		if !ok {
			g = &tally{}
			groups[key] = g
		}
		g.add(r)
	}

	rows := make([]BreakdownRow, 0, len(groups))
	for key, g := range groups {
		rows = append(rows, g.row(key))
	}
	sortRows(rows)

	return rows, nil
}

// ValidateBreakdown checks a breakdown query without touching any records
func ValidateBreakdown(dimension Dimension, filters Filters) error {
	if _, err := ParseDimension(string(dimension)); err != nil {
		return err
	}
	if err := filters.Validate(); err != nil {
		return err
	}
	if !filters.Category.Allows(dimension) {
		return &QueryError{
			Param:  "dimension",
			Value:  string(dimension),
			Reason: "not valid for category " + string(filters.Category),
		}
	}
	return nil
}

func sortRows(rows []BreakdownRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.IsUnclassified() != b.IsUnclassified() {
			return b.IsUnclassified()
		}
		if c := a.Profit.Cmp(b.Profit); c != 0 {
			return c > 0
		}
		if c := a.Stake.Cmp(b.Stake); c != 0 {
			return c > 0
		}
		return a.Key < b.Key
	})
}
