package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"article-panel/internal/resilience/circuitbreaker"
	"article-panel/internal/resilience/retry"
)

const openAISystemPrompt = "You summarize news articles for a reading panel."

// OpenAI summarizes with the chat completions API.
type OpenAI struct {
	client  *openai.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	config  Config
	metrics Recorder
}

// NewOpenAI creates an OpenAI summarizer.
func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("initialized openai summarizer",
		slog.Int("character_limit", cfg.CharacterLimit),
		slog.String("model", cfg.Model))

	return &OpenAI{
		client:  openai.NewClientWithConfig(clientCfg),
		breaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retry:   retry.AIAPIConfig(),
		config:  cfg,
		metrics: defaultRecorder(),
	}
}

// Summarize returns an English summary of text.
func (o *OpenAI) Summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	prompt := buildPrompt(o.config.CharacterLimit, prepareInput(ctx, "openai", text))
	return call(ctx, o.breaker, o.retry, func() (string, error) {
		return o.doSummarize(ctx, prompt)
	})
}

func (o *OpenAI) doSummarize(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openAISystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "openai summarization failed",
			slog.Duration("duration", duration),
			slog.Any("error", err))
		if status := openAIStatus(err); status != 0 {
			return "", fmt.Errorf("openai api error: %w",
				&retry.HTTPError{StatusCode: status, Message: "chat completion failed"})
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	observe(ctx, o.metrics, "openai", o.config.CharacterLimit, summary, duration)
	return summary, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
