package repositories

import (
	"context"

	"github.com/bimakw/wager-analytics/internal/domain/entities"
)

// EmptyVersion is the snapshot version of a store holding no batches
const EmptyVersion = "empty"

// BetRecordRepository defines the record store contract
type BetRecordRepository interface {
	// Version returns an identifier that changes whenever a batch is committed
	Version(ctx context.Context) (string, error)

	// Snapshot returns the current records and the version they belong to.
	// A record id present in several batches resolves to the newest batch.
	Snapshot(ctx context.Context) (*entities.Snapshot, error)

	// InsertBatch stores a batch and its rows in a single transaction
	InsertBatch(ctx context.Context, batch *entities.Batch, rows []entities.RawRecord) error

	// ListBatches returns the most recent batches, newest first
	ListBatches(ctx context.Context, limit int) ([]entities.Batch, error)
}
