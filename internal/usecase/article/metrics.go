package article

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded by MetricsRecorder.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalid       = "invalid"
	OutcomeFetchFailed   = "fetch_failed"
	OutcomeSummaryFailed = "summary_failed"
	OutcomeStoreFailed   = "store_failed"

	SourceStore     = "store"
	SourceDiscovery = "discovery"
)

// MetricsRecorder records service activity.
type MetricsRecorder interface {
	RecordProcessed(outcome string)
	RecordBiasRating(rating int)
	RecordSearchResults(source string, n int)
}

var (
	articlesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_processed_total",
			Help: "Submitted article URLs processed, by outcome",
		},
		[]string{"outcome"},
	)

	biasRatings = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "article_bias_rating",
		Help:    "Bias ratings of processed articles",
		Buckets: []float64{1, 2, 3, 4, 5},
	})

	searchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_search_results_total",
			Help: "Articles returned by searches, by source",
		},
		[]string{"source"},
	)
)

// PrometheusMetrics implements MetricsRecorder with package-level collectors.
type PrometheusMetrics struct{}

func (PrometheusMetrics) RecordProcessed(outcome string) {
	articlesProcessed.WithLabelValues(outcome).Inc()
}

func (PrometheusMetrics) RecordBiasRating(rating int) {
	biasRatings.Observe(float64(rating))
}

func (PrometheusMetrics) RecordSearchResults(source string, n int) {
	searchResults.WithLabelValues(source).Add(float64(n))
}

type noopMetrics struct{}

func (noopMetrics) RecordProcessed(string)          {}
func (noopMetrics) RecordBiasRating(int)            {}
func (noopMetrics) RecordSearchResults(string, int) {}
