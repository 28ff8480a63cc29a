package entities

import (
	"time"
)

// RawRecord is a normalized row as held by the record store, before classification.
// Amounts are kept as received so malformed values can be reported instead of dropped.
type RawRecord struct {
	ID              string     `db:"id"`
	BatchID         string     `db:"batch_id"`
	PlacedAt        *time.Time `db:"placed_at"`
	SettledAt       *time.Time `db:"settled_at"`
	Stake           *string    `db:"stake"`
	Payout          *string    `db:"payout"`
	Amount          *string    `db:"amount"`
	Sport           *string    `db:"sport"`
	Track           *string    `db:"track"`
	BetType         *string    `db:"bet_type"`
	MarketType      *string    `db:"market_type"`
	Category        *string    `db:"category"`
	TransactionKind *string    `db:"transaction_kind"`
	Result          *string    `db:"result"`
}

// Batch is one ingestion unit. All of its rows become visible together.
type Batch struct {
	ID        string    `db:"id"`
	Source    string    `db:"source"`
	RowCount  int       `db:"row_count"`
	CreatedAt time.Time `db:"created_at"`
}

// Snapshot is a consistent view of the current records
type Snapshot struct {
	Version string
	Records []RawRecord
}
