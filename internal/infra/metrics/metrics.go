// Package metrics registers the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecomputeDuration measures aggregate derivation latency in seconds.
	RecomputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_recompute_duration_seconds",
			Help:    "Aggregate recompute duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"scope"}, // scope: target, rollup
	)

	// RollupRepairs counts roll-up amounts that changed on refresh.
	RollupRepairs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_rollup_repairs_total",
			Help: "Total number of roll-up targets whose cached amount was rewritten",
		},
	)

	// SideEffectFailures counts post-commit work that failed.
	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_side_effect_failures_total",
			Help: "Total number of failed post-commit side effects",
		},
		[]string{"kind"}, // kind: recompute, notify, audit
	)

	// ReconciliationRuns counts RecalculateAll executions.
	ReconciliationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		},
		[]string{"outcome"}, // outcome: success, failed, skipped
	)

	// LedgerMutations counts committed ledger mutations.
	LedgerMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Total number of committed ledger mutations",
		},
		[]string{"action"},
	)

	// HTTPRequestDuration measures API latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveRecompute records how long a recompute took.
func ObserveRecompute(scope string, started time.Time) {
	RecomputeDuration.WithLabelValues(scope).Observe(time.Since(started).Seconds())
}

// RecordSideEffectFailure increments the failure counter for kind.
func RecordSideEffectFailure(kind string) {
	SideEffectFailures.WithLabelValues(kind).Inc()
}

// RecordMutation increments the mutation counter for action.
func RecordMutation(action string) {
	LedgerMutations.WithLabelValues(action).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
