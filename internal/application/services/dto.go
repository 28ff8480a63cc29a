package services

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bimakw/wager-analytics/internal/domain/analytics"
)

// Meta describes the snapshot a response was computed from
type Meta struct {
	Snapshot        string `json:"snapshot"`
	ExcludedRecords int    `json:"excluded_records"`
}

// MetricCardDTO is the API representation of an overview card.
// Value is null when Status is "no_data".
type MetricCardDTO struct {
	Label  string      `json:"label"`
	Value  interface{} `json:"value"`
	Helper string      `json:"helper"`
	Status string      `json:"status"`
}

// CashflowDTO holds raw deposit and withdrawal totals
type CashflowDTO struct {
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"`
}

// TimelinePointDTO is one day of the profit timeline
type TimelinePointDTO struct {
	Date       string  `json:"date"`
	Profit     float64 `json:"profit"`
	Cumulative float64 `json:"cumulative"`
}

// BreakdownRowDTO is one group of a breakdown. Key is null for unclassified.
type BreakdownRowDTO struct {
	Key     *string `json:"key"`
	Count   int     `json:"count"`
	Stake   float64 `json:"stake"`
	Payout  float64 `json:"payout"`
	Profit  float64 `json:"profit"`
	ROI     float64 `json:"roi"`
	WinRate float64 `json:"win_rate"`
}

// TimelinesDTO holds one timeline per category
type TimelinesDTO struct {
	Sport  []TimelinePointDTO `json:"sport"`
	Racing []TimelinePointDTO `json:"racing"`
}

// DashboardDTO bundles every dashboard panel computed from one snapshot
type DashboardDTO struct {
	Overview  []MetricCardDTO `json:"overview"`
	Cashflow  CashflowDTO     `json:"cashflow"`
	Timelines TimelinesDTO    `json:"timelines"`
}

// OverviewResponse is the API response for the overview cards
type OverviewResponse struct {
	Data []MetricCardDTO `json:"data"`
	Meta Meta            `json:"meta"`
}

// ExtendedOverviewResponse is the API response for the supplementary cards
type ExtendedOverviewResponse struct {
	Data []MetricCardDTO `json:"data"`
	Meta Meta            `json:"meta"`
}

// CashflowResponse is the API response for cashflow totals
type CashflowResponse struct {
	Data CashflowDTO `json:"data"`
	Meta Meta        `json:"meta"`
}

// TimelineResponse is the API response for the profit timeline
type TimelineResponse struct {
	Data []TimelinePointDTO `json:"data"`
	Meta Meta               `json:"meta"`
}

// BreakdownResponse is the API response for a breakdown query
type BreakdownResponse struct {
	Data []BreakdownRowDTO `json:"data"`
	Meta Meta              `json:"meta"`
}

// DashboardResponse is the API response for the combined dashboard
type DashboardResponse struct {
	Data DashboardDTO `json:"data"`
	Meta Meta         `json:"meta"`
}

// money rounds a currency amount to cents
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// ratio rounds a fraction to four places
func ratio(f float64) float64 {
	return math.Round(f*10000) / 10000
}

func toCardDTOs(cards []analytics.MetricCard) []MetricCardDTO {
	out := make([]MetricCardDTO, len(cards))
	for i, c := range cards {
		dto := MetricCardDTO{
			Label:  c.Label,
			Helper: c.Helper,
			Status: string(c.Status),
		}
		switch {
		case c.Status != analytics.CardOK:
		case c.Text != nil:
			dto.Value = *c.Text
		case c.Number != nil && c.Label == analytics.LabelWinRate:
			dto.Value = ratio(c.Number.InexactFloat64())
		case c.Number != nil:
			dto.Value = money(*c.Number)
		}
		out[i] = dto
	}
	return out
}

func toCashflowDTO(cf analytics.Cashflow) CashflowDTO {
	return CashflowDTO{
		Deposits:    money(cf.Deposits),
		Withdrawals: money(cf.Withdrawals),
	}
}

// toTimelineDTOs rounds each day to cents and rebuilds the running total
// from the rounded days, so consecutive points still add up.
func toTimelineDTOs(points []analytics.TimelinePoint) []TimelinePointDTO {
	out := make([]TimelinePointDTO, len(points))
	cumulative := decimal.Zero
	for i, p := range points {
		profit := p.Profit.Round(2)
		cumulative = cumulative.Add(profit)
		out[i] = TimelinePointDTO{
			Date:       p.Date,
			Profit:     profit.InexactFloat64(),
			Cumulative: cumulative.InexactFloat64(),
		}
	}
	return out
}

func toBreakdownDTOs(rows []analytics.BreakdownRow) []BreakdownRowDTO {
	out := make([]BreakdownRowDTO, len(rows))
	for i, r := range rows {
		stake, payout := r.Stake.Round(2), r.Payout.Round(2)
		dto := BreakdownRowDTO{
			Count:   r.Count,
			Stake:   stake.InexactFloat64(),
			Payout:  payout.InexactFloat64(),
			Profit:  payout.Sub(stake).InexactFloat64(),
			ROI:     ratio(r.ROI),
			WinRate: ratio(r.WinRate),
		}
		if !r.IsUnclassified() {
			key := r.Key
			dto.Key = &key
		}
		out[i] = dto
	}
	return out
}
