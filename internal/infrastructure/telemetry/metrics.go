package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Time taken to answer an analytics query",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_results_total",
			Help: "Cache lookups by operation and outcome",
		},
		[]string{"operation", "result"},
	)

	excludedRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analytics_excluded_records",
			Help: "Records rejected by the classifier in the latest snapshot",
		},
	)

	ingestRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Rows ingested by outcome of pre-validation",
		},
		[]string{"outcome"},
	)
)

// ObserveQuery records how long an operation took
func ObserveQuery(operation string, started time.Time) {
	queryDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// CacheHit counts a cache hit for an operation
func CacheHit(operation string) {
	cacheResults.WithLabelValues(operation, "hit").Inc()
}

// CacheMiss counts a cache miss for an operation
func CacheMiss(operation string) {
	cacheResults.WithLabelValues(operation, "miss").Inc()
}

// SetExcluded records the number of rejected records in the latest snapshot
func SetExcluded(n int) {
	excludedRecords.Set(float64(n))
}

// IngestedRows counts accepted and rejected rows of a batch
func IngestedRows(accepted, rejected int) {
	ingestRows.WithLabelValues("accepted").Add(float64(accepted))
	ingestRows.WithLabelValues("rejected").Add(float64(rejected))
}
