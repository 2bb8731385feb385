package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observation describes one completed summarization.
type Observation struct {
	Service  string
	Length   int // runes
	Limit    int
	Duration time.Duration
}

// WithinLimit reports whether the summary fit the character limit.
func (o Observation) WithinLimit() bool {
	return o.Length <= o.Limit
}

// Recorder receives summarization observations.
type Recorder interface {
	Observe(Observation)
}

// PrometheusRecorder exports observations labelled by service.
type PrometheusRecorder struct {
	length     *prometheus.HistogramVec
	exceeded   *prometheus.CounterVec
	compliance *prometheus.GaugeVec
	duration   *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the summary collectors with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	f := promauto.With(reg)
	svc := []string{"service"}
	return &PrometheusRecorder{
		length: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "article_summary_length_characters",
			Help:    "Summary length in characters",
			Buckets: []float64{100, 300, 500, 700, 900, 1100, 1500, 2000},
		}, svc),
		exceeded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "article_summary_limit_exceeded_total",
			Help: "Summaries longer than the configured character limit",
		}, svc),
		compliance: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "article_summary_limit_compliance",
			Help: "1 if the last summary fit the character limit, else 0",
		}, svc),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "article_summarization_duration_seconds",
			Help:    "Time to generate a summary through an AI API",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, svc),
	}
}

func (p *PrometheusRecorder) Observe(o Observation) {
	p.length.WithLabelValues(o.Service).Observe(float64(o.Length))
	p.duration.WithLabelValues(o.Service).Observe(o.Duration.Seconds())
	if o.WithinLimit() {
		p.compliance.WithLabelValues(o.Service).Set(1)
		return
	}
	p.compliance.WithLabelValues(o.Service).Set(0)
	p.exceeded.WithLabelValues(o.Service).Inc()
}

// defaultRecorder is shared by the API summarizers.
var defaultRecorder = sync.OnceValue(func() Recorder {
	return NewPrometheusRecorder(prometheus.DefaultRegisterer)
})
