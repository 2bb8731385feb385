// Package summarizer turns article text into a short English summary.
// Claude and OpenAI implementations call their APIs through a circuit breaker
// and retry with backoff. NoOp truncates the text instead and needs no API key.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"article-panel/internal/resilience/circuitbreaker"
	"article-panel/internal/resilience/retry"
	"article-panel/internal/utils/text"
)

// Summarizer summarizes article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ErrEmptyResponse is returned when an API answers without any summary text.
var ErrEmptyResponse = errors.New("summarizer: empty response")

// maxInputRunes bounds the article text sent to an AI API.
const maxInputRunes = 10000

const truncationNote = "...\n(The article was truncated because it is long.)"

// New returns the summarizer selected by cfg.Type.
func New(cfg Config) (Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case TypeClaude:
		return NewClaude(cfg), nil
	case TypeOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return NewNoOp(cfg.CharacterLimit), nil
	}
}

func buildPrompt(limit int, body string) string {
	return fmt.Sprintf("Summarize the following news article in English in no more than %d characters. "+
		"Keep the summary neutral and factual.\n\n%s", limit, body)
}

// prepareInput cuts text that would not fit the API's context window.
func prepareInput(ctx context.Context, service, body string) string {
	cut, truncated := text.TruncateRunes(body, maxInputRunes, truncationNote)
	if truncated {
		slog.WarnContext(ctx, "text truncated for summarization",
			slog.String("service", service),
			slog.Int("original_length", text.CountRunes(body)),
			slog.Int("truncated_length", text.CountRunes(cut)))
	}
	return cut
}

// call runs one API request through the breaker, retrying transient failures.
func call(ctx context.Context, cb *circuitbreaker.CircuitBreaker, cfg retry.Config, fn func() (string, error)) (string, error) {
	summary, err := retry.Do(ctx, cfg, func() (string, error) {
		s, err := circuitbreaker.Do(cb, fn)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.WarnContext(ctx, "summarizer circuit breaker open, request rejected",
				slog.String("service", cb.Name()),
				slog.String("state", cb.State().String()))
			return "", fmt.Errorf("%s unavailable: %w", cb.Name(), err)
		}
		return s, err
	})
	if err != nil {
		return "", fmt.Errorf("%s summarize: %w", cb.Name(), err)
	}
	return summary, nil
}

// observe logs and records one completed summarization.
func observe(ctx context.Context, m Recorder, service string, limit int, summary string, d time.Duration) {
	o := Observation{Service: service, Length: text.CountRunes(summary), Limit: limit, Duration: d}

	slog.InfoContext(ctx, "summarization completed",
		slog.String("service", service),
		slog.Int("summary_length", o.Length),
		slog.Int("character_limit", limit),
		slog.Bool("within_limit", o.WithinLimit()),
		slog.Duration("duration", d))
	if !o.WithinLimit() {
		slog.WarnContext(ctx, "summary exceeds character limit",
			slog.String("service", service),
			slog.Int("excess", o.Length-limit))
	}
	m.Observe(o)
}
