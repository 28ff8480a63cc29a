package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bimakw/wager-analytics/internal/domain/analytics"
	"github.com/bimakw/wager-analytics/internal/domain/entities"
)

// ErrNoKnownColumns is returned when the header names none of the record fields
var ErrNoKnownColumns = errors.New("csv header has no known columns")

// timeLayouts are tried in order for placed_at and settled_at
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

type setter func(r *entities.RawRecord, v string) error

func text(field func(r *entities.RawRecord) **string) setter {
	return func(r *entities.RawRecord, v string) error {
		*field(r) = &v
		return nil
	}
}

func timestamp(field func(r *entities.RawRecord) **time.Time) setter {
	return func(r *entities.RawRecord, v string) error {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				*field(r) = &t
				return nil
			}
		}
		return fmt.Errorf("invalid timestamp %q", v)
	}
}

// columns maps header names onto record fields
var columns = map[string]setter{
	"id": func(r *entities.RawRecord, v string) error {
		r.ID = v
		return nil
	},
	"placed_at":        timestamp(func(r *entities.RawRecord) **time.Time { return &r.PlacedAt }),
	"settled_at":       timestamp(func(r *entities.RawRecord) **time.Time { return &r.SettledAt }),
	"stake":            text(func(r *entities.RawRecord) **string { return &r.Stake }),
	"payout":           text(func(r *entities.RawRecord) **string { return &r.Payout }),
	"amount":           text(func(r *entities.RawRecord) **string { return &r.Amount }),
	"sport":            text(func(r *entities.RawRecord) **string { return &r.Sport }),
	"track":            text(func(r *entities.RawRecord) **string { return &r.Track }),
	"bet_type":         text(func(r *entities.RawRecord) **string { return &r.BetType }),
	"market_type":      text(func(r *entities.RawRecord) **string { return &r.MarketType }),
	"category":         text(func(r *entities.RawRecord) **string { return &r.Category }),
	"transaction_kind": text(func(r *entities.RawRecord) **string { return &r.TransactionKind }),
	"result":           text(func(r *entities.RawRecord) **string { return &r.Result }),
}

// ReadRecords parses a CSV of normalized rows. The first line is a header
// naming record fields; unknown columns are ignored and empty cells stay nil.
// Amounts are not validated here. A row with a malformed timestamp is left
// out of the records and reported as a rejection instead.
func ReadRecords(in io.Reader) ([]entities.RawRecord, []analytics.Rejection, error) {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrNoKnownColumns
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	setters := make([]setter, len(header))
	names := make([]string, len(header))
	known := 0
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		names[i] = name
		if set, ok := columns[name]; ok {
			setters[i] = set
			known++
		}
	}
	if known == 0 {
		return nil, nil, ErrNoKnownColumns
	}

	records := make([]entities.RawRecord, 0)
	var rejections []analytics.Rejection
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		var (
			rec     entities.RawRecord
			invalid *analytics.ValidationError
		)
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if i >= len(setters) || setters[i] == nil || cell == "" {
				continue
			}
			if err := setters[i](&rec, cell); err != nil && invalid == nil {
				invalid = &analytics.ValidationError{
					Field:  names[i],
					Reason: fmt.Sprintf("line %d: %v", line, err),
				}
			}
		}

		if invalid != nil {
			invalid.RecordID = rec.ID
			if invalid.RecordID == "" {
				invalid.RecordID = fmt.Sprintf("line %d", line)
			}
			rejections = append(rejections, analytics.Rejection{RecordID: invalid.RecordID, Err: invalid})
			continue
		}
		records = append(records, rec)
	}

	return records, rejections, nil
}
