package testutil

import (
	"fmt"
	"time"

	"github.com/bimakw/wager-analytics/internal/domain/entities"
)

// Common test labels
const (
	Football   = "Football"
	Tennis     = "Tennis"
	Flemington = "Flemington"
	Randwick   = "Randwick"
)

var (
	// PlacedAt is the default placement time of test records
	PlacedAt = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	// SettledAt is the default settlement time of test records
	SettledAt = time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
)

// CreateTestRecord creates a settled, winning football wager by default
func CreateTestRecord(opts ...RecordOption) entities.RawRecord {
	placed, settled := PlacedAt, SettledAt
	r := entities.RawRecord{
		ID:              "rec-1",
		PlacedAt:        &placed,
		SettledAt:       &settled,
		Stake:           PointerTo("10"),
		Payout:          PointerTo("25"),
		Sport:           PointerTo(Football),
		TransactionKind: PointerTo("wager"),
	}

	for _, opt := range opts {
		opt(&r)
	}

	return r
}

type RecordOption func(*entities.RawRecord)

func WithID(id string) RecordOption {
	return func(r *entities.RawRecord) {
		r.ID = id
	}
}

func WithStake(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.Stake = &v
	}
}

func WithPayout(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.Payout = &v
	}
}

func WithAmount(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.Amount = &v
	}
}

func WithSport(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.Sport = &v
	}
}

// WithoutSport clears the sport so the record is unclassified by sport
func WithoutSport() RecordOption {
	return func(r *entities.RawRecord) {
		r.Sport = nil
	}
}

// WithTrack turns the record into a racing wager at the given track
func WithTrack(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.Track = &v
		r.Sport = nil
	}
}

func WithBetType(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.BetType = &v
	}
}

func WithMarketType(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.MarketType = &v
	}
}

func WithCategory(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.Category = &v
	}
}

func WithKind(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.TransactionKind = &v
	}
}

func WithResult(v string) RecordOption {
	return func(r *entities.RawRecord) {
		r.Result = &v
	}
}

func WithSettledAt(ts time.Time) RecordOption {
	return func(r *entities.RawRecord) {
		r.SettledAt = &ts
	}
}

// Unsettled marks the record as still open
func Unsettled() RecordOption {
	return func(r *entities.RawRecord) {
		r.SettledAt = nil
	}
}

// CreateDeposit creates a deposit transaction
func CreateDeposit(id, amount string) entities.RawRecord {
	return CreateTestRecord(
		WithID(id),
		WithKind("deposit"),
		WithAmount(amount),
		WithoutSport(),
		Unsettled(),
		func(r *entities.RawRecord) { r.Stake, r.Payout = nil, nil },
	)
}

// CreateWithdrawal creates a withdrawal transaction
func CreateWithdrawal(id, amount string) entities.RawRecord {
	return CreateTestRecord(
		WithID(id),
		WithKind("withdrawal"),
		WithAmount(amount),
		WithoutSport(),
		Unsettled(),
		func(r *entities.RawRecord) { r.Stake, r.Payout = nil, nil },
	)
}

// CreateMultipleRecords creates count records with sequential ids, settled a
// day apart
func CreateMultipleRecords(count int, opts ...RecordOption) []entities.RawRecord {
	records := make([]entities.RawRecord, count)
	for i := 0; i < count; i++ {
		r := CreateTestRecord(opts...)
		r.ID = fmt.Sprintf("rec-%03d", i+1)
		if r.SettledAt != nil {
			settled := r.SettledAt.AddDate(0, 0, i)
			r.SettledAt = &settled
		}
		records[i] = r
	}
	return records
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
