package panel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded by MetricsRecorder.
const (
	OutcomeRendered   = "rendered"
	OutcomeCleared    = "cleared"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
	OutcomeProcessed  = "processed"
)

// MetricsRecorder records controller activity.
// Tests inject a fake; production uses PrometheusMetrics.
type MetricsRecorder interface {
	RecordSearch(outcome string)
	RecordSubmission(outcome string)
}

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_searches_total",
			Help: "Article searches issued by the panel, by outcome",
		},
		[]string{"outcome"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_url_submissions_total",
			Help: "Article URL submissions issued by the panel, by outcome",
		},
		[]string{"outcome"},
	)
)

// PrometheusMetrics implements MetricsRecorder with package-level Prometheus counters.
type PrometheusMetrics struct{}

// NewPrometheusMetrics returns the Prometheus-backed recorder.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{}
}

// RecordSearch counts a search outcome.
func (PrometheusMetrics) RecordSearch(outcome string) {
	searchesTotal.WithLabelValues(outcome).Inc()
}

// RecordSubmission counts a URL submission outcome.
func (PrometheusMetrics) RecordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

type noopMetrics struct{}

func (noopMetrics) RecordSearch(string)     {}
func (noopMetrics) RecordSubmission(string) {}
