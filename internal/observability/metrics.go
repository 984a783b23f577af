package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcileOutcomes counts reconciliation results by entity and outcome
	// (committed, rejected, failed).
	ReconcileOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_reconcile_outcomes_total",
		Help: "Total number of entity reconciliations by entity type and outcome",
	}, []string{"entity", "outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atelier_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// BlobOperations counts blob store calls by operation and result.
	BlobOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_blob_operations_total",
		Help: "Total number of blob store operations by operation and result",
	}, []string{"operation", "result"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// Reconciliation outcome labels.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// ObserveReconcile records one reconciliation outcome.
func ObserveReconcile(entity, outcome string) {
	ReconcileOutcomes.WithLabelValues(entity, outcome).Inc()
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
