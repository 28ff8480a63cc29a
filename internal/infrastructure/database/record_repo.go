package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/wager-analytics/internal/domain/entities"
	"github.com/bimakw/wager-analytics/internal/domain/repositories"
)

// Ensure RecordRepo implements BetRecordRepository
var _ repositories.BetRecordRepository = (*RecordRepo)(nil)

// RecordRepo implements BetRecordRepository using PostgreSQL
type RecordRepo struct {
	db *sqlx.DB
}

// NewRecordRepo creates a new record repository
func NewRecordRepo(db *sqlx.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

const versionQuery = `
	SELECT
		COALESCE((SELECT id::TEXT FROM batches ORDER BY created_at DESC, id DESC LIMIT 1), '') AS latest,
		(SELECT COUNT(*) FROM batches) AS batches
`

// The newest batch wins when the same record id was uploaded more than once
const currentRecordsQuery = `
	SELECT DISTINCT ON (r.id)
		r.id, r.batch_id, r.placed_at, r.settled_at,
		r.stake, r.payout, r.amount,
		r.sport, r.track, r.bet_type, r.market_type,
		r.category, r.transaction_kind, r.result
	FROM bet_records r
	JOIN batches b ON b.id = r.batch_id
	ORDER BY r.id, b.created_at DESC, b.id DESC
`

type versionRow struct {
	Latest  string `db:"latest"`
	Batches int64  `db:"batches"`
}

func (v versionRow) String() string {
	if v.Batches == 0 {
		return repositories.EmptyVersion
	}
	return v.Latest + "." + strconv.FormatInt(v.Batches, 10)
}

// Version returns an identifier of the current set of committed batches
func (r *RecordRepo) Version(ctx context.Context) (string, error) {
	var row versionRow
	if err := r.db.GetContext(ctx, &row, versionQuery); err != nil {
		return "", fmt.Errorf("failed to get store version: %w", err)
	}
	return row.String(), nil
}

// Snapshot reads the version and the current records in one read-only,
// repeatable-read transaction so both describe the same committed state
func (r *RecordRepo) Snapshot(ctx context.Context) (*entities.Snapshot, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version versionRow
	if err := tx.GetContext(ctx, &version, versionQuery); err != nil {
		return nil, fmt.Errorf("failed to get store version: %w", err)
	}

	records := make([]entities.RawRecord, 0)
	if err := tx.SelectContext(ctx, &records, currentRecordsQuery); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to close snapshot: %w", err)
	}

	return &entities.Snapshot{
		Version: version.String(),
		Records: records,
	}, nil
}

// InsertBatch stores the batch and all of its rows in a single transaction
func (r *RecordRepo) InsertBatch(ctx context.Context, batch *entities.Batch, rows []entities.RawRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO batches (id, source, row_count)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, batch.ID, batch.Source, len(rows)).Scan(&batch.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bet_records (batch_id, id, placed_at, settled_at,
								 stake, payout, amount,
								 sport, track, bet_type, market_type,
								 category, transaction_kind, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (batch_id, id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			batch.ID,
			row.ID,
			row.PlacedAt,
			row.SettledAt,
			row.Stake,
			row.Payout,
			row.Amount,
			row.Sport,
			row.Track,
			row.BetType,
			row.MarketType,
			row.Category,
			row.TransactionKind,
			row.Result,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	batch.RowCount = len(rows)
	return nil
}

// ListBatches returns the most recent batches, newest first
func (r *RecordRepo) ListBatches(ctx context.Context, limit int) ([]entities.Batch, error) {
	query := `
		SELECT id, source, row_count, created_at
		FROM batches
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	batches := make([]entities.Batch, 0)
	if err := r.db.SelectContext(ctx, &batches, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}

	return batches, nil
}
