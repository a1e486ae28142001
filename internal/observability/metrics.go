package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campdir_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campdir_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// GeocoderRequests counts outbound geocoder calls by result.
	GeocoderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campdir_geocoder_requests_total",
		Help: "Total number of geocoder requests by result",
	}, []string{"result"})

	// AggregateRecomputeFailures counts derived-aggregate recomputations that failed.
	// Recompute is best-effort relative to the triggering write, so failures
	// only surface here and in the logs.
	AggregateRecomputeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campdir_aggregate_recompute_failures_total",
		Help: "Total number of failed derived-aggregate recomputations",
	}, []string{"aggregate"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
