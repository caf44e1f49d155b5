package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the pipeline's Prometheus collectors.
type Metrics struct {
	FeedsIngested      prometheus.Counter
	RowsIngested       *prometheus.CounterVec
	RowsProcessed      *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
	ExportsGenerated   prometheus.Counter
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors on reg. Tests pass a fresh registry so
// repeated construction never collides.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FeedsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedforge_feeds_ingested_total",
			Help: "Number of feed files ingested.",
		}),
		RowsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedforge_rows_ingested_total",
			Help: "Number of feed rows ingested by kind.",
		}, []string{"kind"}),
		RowsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feedforge_rows_processed_total",
			Help: "Number of rows run through enrichment by outcome.",
		}, []string{"outcome"}),
		CompletionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedforge_completion_duration_seconds",
			Help:    "Latency of completion API calls.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		ExportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedforge_exports_generated_total",
			Help: "Number of export files generated.",
		}),
	}
}
