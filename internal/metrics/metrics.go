package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "councilvote"

// Metrics holds the election counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Submissions *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
	LiveDeltas  *prometheus.CounterVec
}

// New registers the election counters, plus Go runtime and process
// collectors, on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Official submission rounds committed, by kind (submit or recount)",
			},
			[]string{"kind"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submission_rejections_total",
				Help:      "Official submissions rejected before commit, by reason",
			},
			[]string{"reason"},
		),
		LiveDeltas: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "live_deltas_total",
				Help:      "Live tally changes applied, by tally type",
			},
			[]string{"tally_type"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SubmissionCommitted counts a committed round
func (m *Metrics) SubmissionCommitted(kind string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind).Inc()
}

// SubmissionRejected counts a rejected submission
func (m *Metrics) SubmissionRejected(reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(reason).Inc()
}

// LiveDeltaApplied counts a live tally change
func (m *Metrics) LiveDeltaApplied(tallyType string) {
	if m == nil {
		return
	}
	m.LiveDeltas.WithLabelValues(tallyType).Inc()
}
