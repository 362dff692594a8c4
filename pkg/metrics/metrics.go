package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scan outcomes.
const (
	OutcomeComplete    = "complete"
	OutcomeReview      = "review"
	OutcomeUnreadable  = "unreadable"
	OutcomeEngineError = "engine_error"
)

// Metrics holds the Prometheus instruments for the scan service.
type Metrics struct {
	registry     *prometheus.Registry
	ScansTotal   *prometheus.CounterVec
	ScanDuration prometheus.Histogram
}

// New creates the instruments on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ScansTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openidscan_scans_total",
			Help: "Scans processed, by outcome",
		}, []string{"outcome"}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "openidscan_scan_duration_seconds",
			Help:    "Wall time of a scan including OCR",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

// ObserveScan records one scan.
func (m *Metrics) ObserveScan(outcome string, d time.Duration) {
	m.ScansTotal.WithLabelValues(outcome).Inc()
	m.ScanDuration.Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
