// Package circuitbreaker wraps github.com/sony/gobreaker with named presets for
// the article service's outbound dependencies.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"

	"article-panel/internal/resilience/retry"
)

// ErrOpenState is returned while a breaker is open.
var ErrOpenState = gobreaker.ErrOpenState

// ErrTooManyRequests is returned when a half-open breaker rejects a probe.
var ErrTooManyRequests = gobreaker.ErrTooManyRequests

var (
	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"circuit"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_rejected_total",
		Help: "Calls rejected without running because the breaker was open or probing",
	}, []string{"circuit"})
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name identifies the breaker in logs, metrics and health output.
	Name string

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker, e.g. 0.6.
	FailureThreshold float64

	// MinRequests is the minimum sample size before the ratio is considered.
	MinRequests uint32

	// IsFailure decides which errors count against the dependency. Nil means
	// IsFailure from this package.
	IsFailure func(error) bool
}

func preset(name string, maxReq uint32, interval, timeout time.Duration, threshold float64, minReq uint32) Config {
	return Config{
		Name:             name,
		MaxRequests:      maxReq,
		Interval:         interval,
		Timeout:          timeout,
		FailureThreshold: threshold,
		MinRequests:      minReq,
	}
}

// ClaudeAPIConfig is used by the Claude summarizer.
func ClaudeAPIConfig() Config {
	return preset("claude-api", 3, 30*time.Second, 60*time.Second, 0.6, 5)
}

// OpenAIAPIConfig is used by the OpenAI summarizer.
func OpenAIAPIConfig() Config {
	return preset("openai-api", 3, 30*time.Second, 60*time.Second, 0.6, 5)
}

// ArticleFetchConfig is used when downloading submitted article pages.
// Submitted URLs point at arbitrary hosts, so the breaker trips late and
// recovers fast.
func ArticleFetchConfig() Config {
	return preset("article-fetch", 3, 60*time.Second, 30*time.Second, 0.8, 10)
}

// DiscoveryConfig is used by the news feed discovery provider.
func DiscoveryConfig() Config {
	return preset("news-discovery", 5, 60*time.Second, 120*time.Second, 0.7, 5)
}

// IsFailure reports whether err says the dependency is unhealthy. Caller
// cancellation and 4xx answers other than 408 and 429 do not count.
func IsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
		return httpErr.StatusCode == http.StatusRequestTimeout ||
			httpErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// CircuitBreaker is a named gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a circuit breaker. State changes are logged and exported as
// the circuit_breaker_state gauge.
func New(cfg Config) *CircuitBreaker {
	isFailure := cfg.IsFailure
	if isFailure == nil {
		isFailure = IsFailure
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool { return !isFailure(err) },
		OnStateChange: func(name string, from, to gobreaker.State) {
			stateGauge.WithLabelValues(name).Set(float64(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	stateGauge.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Do runs fn through cb. While the breaker is open it returns ErrOpenState
// without calling fn.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		rejectedTotal.WithLabelValues(cb.name).Inc()
	}
	v, _ := res.(T)
	return v, err
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Counts returns the counts of the current generation.
func (cb *CircuitBreaker) Counts() gobreaker.Counts {
	return cb.breaker.Counts()
}

// Name returns the breaker's name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether the breaker is open.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
