package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"article-panel/internal/resilience/circuitbreaker"
	"article-panel/internal/resilience/retry"
)

// Claude summarizes with Anthropic's Messages API.
type Claude struct {
	client  anthropic.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	config  Config
	metrics Recorder
}

// NewClaude creates a Claude summarizer. The SDK's own retries are disabled;
// retries happen around the circuit breaker instead.
func NewClaude(cfg Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("initialized claude summarizer",
		slog.Int("character_limit", cfg.CharacterLimit),
		slog.String("model", cfg.Model))

	return &Claude{
		client:  anthropic.NewClient(opts...),
		breaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retry:   retry.AIAPIConfig(),
		config:  cfg,
		metrics: defaultRecorder(),
	}
}

// Summarize returns an English summary of text.
func (c *Claude) Summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	prompt := buildPrompt(c.config.CharacterLimit, prepareInput(ctx, "claude", text))
	return call(ctx, c.breaker, c.retry, func() (string, error) {
		return c.doSummarize(ctx, prompt)
	})
}

func (c *Claude) doSummarize(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "claude summarization failed",
			slog.Duration("duration", duration),
			slog.Any("error", err))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("claude api error: %w",
				&retry.HTTPError{StatusCode: apiErr.StatusCode, Message: "messages request failed"})
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", fmt.Errorf("claude: %w", ErrEmptyResponse)
	}

	observe(ctx, c.metrics, "claude", c.config.CharacterLimit, summary, duration)
	return summary, nil
}
