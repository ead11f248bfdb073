// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transport label values.
const (
	TransportHTTP   = "http"
	TransportWorker = "worker"
)

var (
	ProjectionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_projections_completed_total",
			Help: "Total number of premium projections completed",
		},
		[]string{"transport"},
	)

	ProjectionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_projections_failed_total",
			Help: "Total number of premium projections that failed",
		},
		[]string{"transport", "error_code"},
	)

	ProjectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "premium_projection_duration_seconds",
			Help:    "Duration of premium projections in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"transport"},
	)

	ProjectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "premium_projections_active",
			Help: "Number of projections currently in flight",
		},
		[]string{"transport"},
	)

	PlanLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plan_load_duration_seconds",
			Help:    "Time spent reading and decoding a plan price table",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"outcome"},
	)
)
