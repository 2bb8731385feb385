package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives limiter events.
type Metrics interface {
	RecordDecision(path string, allowed bool)
	RecordCheckDuration(d time.Duration)
	SetActiveKeys(n int)
	RecordEviction(n int)
}

// PrometheusMetrics exports limiter events.
type PrometheusMetrics struct {
	requests      *prometheus.CounterVec
	checkDuration prometheus.Histogram
	activeKeys    prometheus.Gauge
	evictions     prometheus.Counter
}

// NewPrometheusMetrics registers the limiter collectors with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limit_requests_total",
			Help: "Rate limited requests by path and status (allowed, denied)",
		}, []string{"path", "status"}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "http_rate_limit_check_duration_seconds",
			Help:    "Duration of rate limit checks",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		activeKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_rate_limit_active_keys",
			Help: "Keys currently tracked by the rate limiter",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limit_evictions_total",
			Help: "Keys evicted from a full rate limit store",
		}),
	}
	reg.MustRegister(m.requests, m.checkDuration, m.activeKeys, m.evictions)
	return m
}

func (m *PrometheusMetrics) RecordDecision(path string, allowed bool) {
	status := "allowed"
	if !allowed {
		status = "denied"
	}
	m.requests.WithLabelValues(path, status).Inc()
}

func (m *PrometheusMetrics) RecordCheckDuration(d time.Duration) {
	m.checkDuration.Observe(d.Seconds())
}

func (m *PrometheusMetrics) SetActiveKeys(n int) { m.activeKeys.Set(float64(n)) }

func (m *PrometheusMetrics) RecordEviction(n int) { m.evictions.Add(float64(n)) }

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) RecordDecision(string, bool)       {}
func (NoopMetrics) RecordCheckDuration(time.Duration) {}
func (NoopMetrics) SetActiveKeys(int)                 {}
func (NoopMetrics) RecordEviction(int)                {}
