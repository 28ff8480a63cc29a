package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wager-analytics/internal/domain/analytics"
	"github.com/bimakw/wager-analytics/internal/domain/repositories"
	"github.com/bimakw/wager-analytics/internal/infrastructure/cache"
	"github.com/bimakw/wager-analytics/internal/infrastructure/telemetry"
)

// CacheKeyPrefix prefixes every cached metrics response
const CacheKeyPrefix = "metrics:"

// ErrStoreUnavailable is returned when the record store cannot be read
var ErrStoreUnavailable = errors.New("record store unavailable")

// MetricsService answers dashboard queries over the current record snapshot
type MetricsService struct {
	repo       repositories.BetRecordRepository
	classifier *analytics.Classifier
	cache      cache.Store
	cacheTTL   time.Duration
	location   *time.Location
	logger     *zap.Logger
}

// NewMetricsService creates a new metrics service. cache may be nil.
func NewMetricsService(
	repo repositories.BetRecordRepository,
	classifier *analytics.Classifier,
	cache cache.Store,
	cacheTTL time.Duration,
	location *time.Location,
	logger *zap.Logger,
) *MetricsService {
	if location == nil {
		location = time.UTC
	}
	return &MetricsService{
		repo:       repo,
		classifier: classifier,
		cache:      cache,
		cacheTTL:   cacheTTL,
		location:   location,
		logger:     logger,
	}
}

// BreakdownQuery selects a breakdown. A nil Sport means no sport filter;
// a pointer to the empty string selects unclassified records.
type BreakdownQuery struct {
	Dimension analytics.Dimension
	Category  analytics.Category
	Sport     *string
}

func (q BreakdownQuery) filters() analytics.Filters {
	f := analytics.ForCategory(q.Category)
	if q.Sport != nil {
		f = f.With(analytics.DimensionSport, *q.Sport)
	}
	return f
}

func (q BreakdownQuery) cacheKey() string {
	key := fmt.Sprintf("breakdown:%s:%s", q.Dimension, q.Category)
	if q.Sport != nil {
		key += ":sport=" + url.QueryEscape(analytics.CanonicalKey(*q.Sport))
	}
	return key
}

// view is one classified snapshot
type view struct {
	version    string
	records    []analytics.BetRecord
	rejections []analytics.Rejection
}

func (v *view) meta() Meta {
	return Meta{Snapshot: v.version, ExcludedRecords: len(v.rejections)}
}

// GetOverview returns the overview cards
func (s *MetricsService) GetOverview(ctx context.Context) (*OverviewResponse, error) {
	return cachedQuery(ctx, s, "overview", "overview", func(v *view) (*OverviewResponse, error) {
		return &OverviewResponse{
			Data: toCardDTOs(analytics.ComposeOverview(v.records)),
			Meta: v.meta(),
		}, nil
	})
}

// GetExtendedOverview returns the worst sport and the singles and multis cards
func (s *MetricsService) GetExtendedOverview(ctx context.Context) (*ExtendedOverviewResponse, error) {
	return cachedQuery(ctx, s, "overview_extended", "overview:extended", func(v *view) (*ExtendedOverviewResponse, error) {
		return &ExtendedOverviewResponse{
			Data: toCardDTOs(analytics.ComposeExtendedOverview(v.records)),
			Meta: v.meta(),
		}, nil
	})
}

// GetCashflow returns deposit and withdrawal totals
func (s *MetricsService) GetCashflow(ctx context.Context) (*CashflowResponse, error) {
	return cachedQuery(ctx, s, "cashflow", "cashflow", func(v *view) (*CashflowResponse, error) {
		return &CashflowResponse{
			Data: toCashflowDTO(analytics.SummarizeCashflow(v.records)),
			Meta: v.meta(),
		}, nil
	})
}

// GetTimeline returns the daily profit timeline. An empty category covers
// every category.
func (s *MetricsService) GetTimeline(ctx context.Context, category analytics.Category) (*TimelineResponse, error) {
	if category != "" {
		if _, err := analytics.ParseCategory(string(category)); err != nil {
			return nil, err
		}
	}

	key := "timeline:all"
	if category != "" {
		key = "timeline:" + string(category)
	}

	return cachedQuery(ctx, s, "timeline", key, func(v *view) (*TimelineResponse, error) {
		points, err := analytics.BuildTimeline(v.records, category, s.location)
		if err != nil {
			return nil, err
		}
		return &TimelineResponse{Data: toTimelineDTOs(points), Meta: v.meta()}, nil
	})
}

// GetBreakdown groups settled wagers by a dimension
func (s *MetricsService) GetBreakdown(ctx context.Context, q BreakdownQuery) (*BreakdownResponse, error) {
	filters := q.filters()
	if err := analytics.ValidateBreakdown(q.Dimension, filters); err != nil {
		return nil, err
	}

	return cachedQuery(ctx, s, "breakdown", q.cacheKey(), func(v *view) (*BreakdownResponse, error) {
		rows, err := analytics.Aggregate(v.records, q.Dimension, filters)
		if err != nil {
			return nil, err
		}
		return &BreakdownResponse{Data: toBreakdownDTOs(rows), Meta: v.meta()}, nil
	})
}

// GetDashboard computes every dashboard panel from a single snapshot
func (s *MetricsService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	return cachedQuery(ctx, s, "dashboard", "dashboard", func(v *view) (*DashboardResponse, error) {
		resp := &DashboardResponse{Meta: v.meta()}

		g := new(errgroup.Group)
		g.Go(func() error {
			resp.Data.Overview = toCardDTOs(analytics.ComposeOverview(v.records))
			return nil
		})
		g.Go(func() error {
			resp.Data.Cashflow = toCashflowDTO(analytics.SummarizeCashflow(v.records))
			return nil
		})
		g.Go(func() error {
			points, err := analytics.BuildTimeline(v.records, analytics.CategorySport, s.location)
			if err != nil {
				return err
			}
			resp.Data.Timelines.Sport = toTimelineDTOs(points)
			return nil
		})
		g.Go(func() error {
			points, err := analytics.BuildTimeline(v.records, analytics.CategoryRacing, s.location)
			if err != nil {
				return err
			}
			resp.Data.Timelines.Racing = toTimelineDTOs(points)
			return nil
		})

		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("failed to build dashboard: %w", err)
		}
		return resp, nil
	})
}

// cachedQuery serves op from the cache when the snapshot version is
// unchanged, and otherwise classifies a fresh snapshot and builds it.
func cachedQuery[T any](
	ctx context.Context,
	s *MetricsService,
	op, key string,
	build func(v *view) (*T, error),
) (*T, error) {
	started := time.Now()
	defer telemetry.ObserveQuery(op, started)

	if s.cache != nil {
		version, err := s.repo.Version(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		var cached T
		cacheKey := CacheKeyPrefix + version + ":" + key
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			telemetry.CacheHit(op)
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
		telemetry.CacheMiss(op)
	}

	v, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := build(v)
	if err != nil {
		return nil, err
	}

	// Cache under the version the data was actually read at
	if s.cache != nil {
		cacheKey := CacheKeyPrefix + v.version + ":" + key
		if err := s.cache.SetWithTTL(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache response", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return result, nil
}

// load reads and classifies the current snapshot
func (s *MetricsService) load(ctx context.Context) (*view, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	records, rejections := s.classifier.ClassifyAll(snap.Records)
	telemetry.SetExcluded(len(rejections))

	if len(rejections) > 0 {
		s.logger.Warn("Records excluded from aggregation",
			zap.String("snapshot", snap.Version),
			zap.Int("excluded", len(rejections)),
			zap.String("first_record", rejections[0].RecordID),
			zap.Error(rejections[0].Err),
		)
	}

	return &view{
		version:    snap.Version,
		records:    records,
		rejections: rejections,
	}, nil
}
