package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format of timeline points
const DateLayout = "2006-01-02"

// TimelinePoint is the profit of one calendar day and the running total
type TimelinePoint struct {
	Date       string
	Profit     decimal.Decimal
	Cumulative decimal.Decimal
}

// BuildTimeline buckets settled, non-void wagers by the calendar day of
// settled_at in loc. An empty category includes every category.
// Days without settled wagers are not emitted.
func BuildTimeline(records []BetRecord, category Category, loc *time.Location) ([]TimelinePoint, error) {
	if category != "" {
		if _, err := ParseCategory(string(category)); err != nil {
			return nil, err
		}
	}
	if loc == nil {
		loc = time.UTC
	}

	days := make(map[string]decimal.Decimal)
	for _, r := range records {
		if !r.IsWager() || !r.IsSettled() || r.Result == ResultVoid || r.SettledAt == nil {
			continue
		}
		if category != "" && r.Category != category {
			continue
		}
		day := r.SettledAt.In(loc).Format(DateLayout)
		days[day] = days[day].Add(r.Profit())
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	points := make([]TimelinePoint, 0, len(dates))
	cumulative := decimal.Zero
	for _, d := range dates {
		cumulative = cumulative.Add(days[d])
		points = append(points, TimelinePoint{
			Date:       d,
			Profit:     days[d],
			Cumulative: cumulative,
		})
	}

	return points, nil
}
