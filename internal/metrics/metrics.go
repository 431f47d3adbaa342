// Package metrics exposes run counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TrialsLoader/internal/domain"
	"TrialsLoader/internal/ports"
)

// Recorder translates run summaries into Prometheus series. Outcome and
// rejection counters are data-quality signals; failed counts infrastructure
// trouble, which needs different remediation.
type Recorder struct {
	registry    *prometheus.Registry
	outcomes    *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
	runDuration prometheus.Histogram
	runs        prometheus.Counter
}

var _ ports.RunRecorder = (*Recorder)(nil)

// NewRecorder builds a recorder with its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trialsloader_records_total",
			Help: "Processed records by outcome.",
		}, []string{"outcome"}),
		fieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trialsloader_field_errors_total",
			Help: "Field normalization failures by reason code.",
		}, []string{"code"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trialsloader_run_duration_seconds",
			Help:    "Wall time of one snapshot load.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "trialsloader_runs_total",
			Help: "Completed snapshot loads.",
		}),
	}
}

// ObserveRun folds one run summary into the counters.
func (r *Recorder) ObserveRun(summary domain.RunSummary) {
	r.runs.Inc()
	r.outcomes.WithLabelValues("inserted").Add(float64(summary.Inserted))
	r.outcomes.WithLabelValues("updated").Add(float64(summary.Updated))
	r.outcomes.WithLabelValues("noop").Add(float64(summary.Noops))
	r.outcomes.WithLabelValues("rejected").Add(float64(summary.Rejected))
	r.outcomes.WithLabelValues("failed").Add(float64(summary.Failed))
	for code, n := range summary.FieldErrors {
		r.fieldErrors.WithLabelValues(code).Add(float64(n))
	}
	if !summary.FinishedAt.IsZero() && !summary.StartedAt.IsZero() {
		r.runDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	}
}

// Handler serves the recorder's registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
