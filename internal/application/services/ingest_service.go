package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wager-analytics/internal/config"
	"github.com/bimakw/wager-analytics/internal/domain/analytics"
	"github.com/bimakw/wager-analytics/internal/domain/entities"
	"github.com/bimakw/wager-analytics/internal/domain/repositories"
	"github.com/bimakw/wager-analytics/internal/infrastructure/cache"
	"github.com/bimakw/wager-analytics/internal/infrastructure/telemetry"
)

var (
	// ErrEmptyBatch is returned when a batch carries no rows
	ErrEmptyBatch = errors.New("batch has no rows")

	// ErrDuplicateRecord is returned when a record id repeats within a batch
	ErrDuplicateRecord = errors.New("duplicate record id in batch")
)

const (
	defaultBatchListLimit = 20
	maxBatchListLimit     = 100

	// reportedRejections caps how many rejections a report carries
	reportedRejections = 50
)

// IngestService commits normalized record batches to the record store
type IngestService struct {
	repo       repositories.BetRecordRepository
	classifier *analytics.Classifier
	cache      cache.Store
	config     config.IngestConfig
	logger     *zap.Logger
}

// NewIngestService creates a new ingest service. cache may be nil.
func NewIngestService(
	repo repositories.BetRecordRepository,
	classifier *analytics.Classifier,
	cache cache.Store,
	cfg config.IngestConfig,
	logger *zap.Logger,
) *IngestService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	return &IngestService{
		repo:       repo,
		classifier: classifier,
		cache:      cache,
		config:     cfg,
		logger:     logger,
	}
}

// BatchReport summarizes a committed batch
type BatchReport struct {
	BatchID    string                `json:"batch_id"`
	Source     string                `json:"source"`
	Rows       int                   `json:"rows"`
	Rejected   int                   `json:"rejected"`
	Unparsed   int                   `json:"unparsed"`
	Rejections []analytics.Rejection `json:"-"`
}

// AddUnparsed counts rows the source could not turn into records. They were
// never stored, so they add to Rejected but not to Rows.
func (r *BatchReport) AddUnparsed(rejections []analytics.Rejection) {
	if len(rejections) == 0 {
		return
	}
	r.Unparsed += len(rejections)
	r.Rejected += len(rejections)

	merged := make([]analytics.Rejection, 0, len(rejections)+len(r.Rejections))
	merged = append(merged, rejections...)
	merged = append(merged, r.Rejections...)
	if len(merged) > reportedRejections {
		merged = merged[:reportedRejections]
	}
	r.Rejections = merged
}

// IngestBatch stores rows as one batch. Rows the classifier rejects are
// still stored so they keep showing up as excluded records; the report
// tells the caller how many there were.
func (s *IngestService) IngestBatch(ctx context.Context, source string, rows []entities.RawRecord) (*BatchReport, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}
	if source == "" {
		source = s.config.Source
	}

	batch := &entities.Batch{
		ID:     uuid.NewString(),
		Source: source,
	}

	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		rows[i].ID = strings.TrimSpace(rows[i].ID)
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if _, dup := seen[rows[i].ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRecord, rows[i].ID)
		}
		seen[rows[i].ID] = struct{}{}
		rows[i].BatchID = batch.ID
	}

	started := time.Now()
	rejections, err := s.validate(ctx, rows)
	if err != nil {
		return nil, err
	}

	if err := s.repo.InsertBatch(ctx, batch, rows); err != nil {
		return nil, fmt.Errorf("failed to store batch: %w", err)
	}

	telemetry.IngestedRows(len(rows)-len(rejections), len(rejections))

	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, CacheKeyPrefix); err != nil {
			s.logger.Warn("Failed to invalidate metrics cache", zap.Error(err))
		}
	}

	report := &BatchReport{
		BatchID:  batch.ID,
		Source:   source,
		Rows:     len(rows),
		Rejected: len(rejections),
	}
	if len(rejections) > reportedRejections {
		report.Rejections = rejections[:reportedRejections]
	} else {
		report.Rejections = rejections
	}

	s.logger.Info("Batch ingested",
		zap.String("batch_id", batch.ID),
		zap.String("source", source),
		zap.Int("rows", len(rows)),
		zap.Int("rejected", len(rejections)),
		zap.Duration("duration", time.Since(started)),
	)

	return report, nil
}

// validate classifies rows in parallel chunks and returns the rejections in
// input order
func (s *IngestService) validate(ctx context.Context, rows []entities.RawRecord) ([]analytics.Rejection, error) {
	chunks := (len(rows) + s.config.ChunkSize - 1) / s.config.ChunkSize
	results := make([][]analytics.Rejection, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := 0; i < chunks; i++ {
		i := i
		start := i * s.config.ChunkSize
		end := start + s.config.ChunkSize
		if end > len(rows) {
			end = len(rows)
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, results[i] = s.classifier.ClassifyAll(rows[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to validate batch: %w", err)
	}

	var rejections []analytics.Rejection
	for _, r := range results {
		rejections = append(rejections, r...)
	}
	return rejections, nil
}

// ListBatches returns recent batches, newest first
func (s *IngestService) ListBatches(ctx context.Context, limit int) ([]entities.Batch, error) {
	if limit <= 0 {
		limit = defaultBatchListLimit
	}
	if limit > maxBatchListLimit {
		limit = maxBatchListLimit
	}

	batches, err := s.repo.ListBatches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return batches, nil
}
