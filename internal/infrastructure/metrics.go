package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the reconciliation service.
type Metrics struct {
	registry *prometheus.Registry

	ReconciliationsTotal *prometheus.CounterVec
	RowsProcessedTotal   *prometheus.CounterVec
	RowsDroppedTotal     prometheus.Counter
	ExportsTotal         *prometheus.CounterVec
	ReconcileDuration    prometheus.Histogram
	ActiveSessions       prometheus.Gauge
}

// NewMetrics creates and registers the service collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ReconciliationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reqcheck",
			Name:      "reconciliations_total",
			Help:      "Reconciliation runs by outcome.",
		}, []string{"outcome"}),
		RowsProcessedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reqcheck",
			Name:      "rows_processed_total",
			Help:      "Dataset rows processed by dataset kind.",
		}, []string{"kind"}),
		RowsDroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reqcheck",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped for unparseable identifiers.",
		}),
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reqcheck",
			Name:      "exports_total",
			Help:      "Report exports by format.",
		}, []string{"format"}),
		ReconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reqcheck",
			Name:      "reconcile_duration_seconds",
			Help:      "Wall time of one full pipeline run.",
			Buckets:   prometheus.DefBuckets,
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reqcheck",
			Name:      "active_sessions",
			Help:      "Sessions currently held in the store.",
		}),
	}
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
