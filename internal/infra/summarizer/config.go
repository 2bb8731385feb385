package summarizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	pkgconfig "article-panel/pkg/config"
)

// Type selects a summarizer implementation.
type Type string

const (
	TypeNoOp   Type = "noop"
	TypeClaude Type = "claude"
	TypeOpenAI Type = "openai"
)

const (
	// DefaultCharacterLimit is the summary length requested from the APIs.
	DefaultCharacterLimit = 900

	minCharLimit = 100
	maxCharLimit = 5000
)

// Config configures a summarizer.
type Config struct {
	Type Type

	// APIKey authenticates against the selected API. Unused by NoOp.
	APIKey string

	// CharacterLimit is the maximum summary length in characters, 100 to 5000.
	CharacterLimit int

	Model     string
	MaxTokens int

	// Timeout bounds one summarization, retries included.
	Timeout time.Duration

	// BaseURL overrides the API endpoint. Empty means the provider default.
	BaseURL string
}

// DefaultConfig returns the defaults for the given type.
func DefaultConfig(t Type) Config {
	cfg := Config{
		Type:           t,
		CharacterLimit: DefaultCharacterLimit,
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
	}
	switch t {
	case TypeClaude:
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	case TypeOpenAI:
		cfg.Model = openai.GPT4oMini
	}
	return cfg
}

// ValidateCharacterLimit checks that limit lies within 100 to 5000.
func ValidateCharacterLimit(limit int) error {
	if limit < minCharLimit {
		return fmt.Errorf("character limit %d is below minimum %d", limit, minCharLimit)
	}
	if limit > maxCharLimit {
		return fmt.Errorf("character limit %d exceeds maximum %d", limit, maxCharLimit)
	}
	return nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := ValidateCharacterLimit(c.CharacterLimit); err != nil {
		return fmt.Errorf("invalid character limit: %w", err)
	}
	switch c.Type {
	case TypeNoOp:
		return nil
	case TypeClaude, TypeOpenAI:
	default:
		return fmt.Errorf("unknown summarizer type %q (expected noop, claude or openai)", c.Type)
	}

	if c.APIKey == "" {
		return fmt.Errorf("%s summarizer requires an API key", c.Type)
	}
	if c.Model == "" {
		return errors.New("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.BaseURL != "" {
		if err := pkgconfig.ValidateHTTPURL(c.BaseURL); err != nil {
			return fmt.Errorf("invalid base url: %w", err)
		}
	}
	return nil
}

// LoadConfigFromEnv reads the summarizer configuration from the environment.
//
// Environment variables:
//   - SUMMARIZER_TYPE: noop, claude or openai (default: noop)
//   - ANTHROPIC_API_KEY / OPENAI_API_KEY: API key of the selected type
//   - SUMMARIZER_CHAR_LIMIT: summary length limit (default: 900, range: 100-5000)
//   - SUMMARIZER_MODEL, SUMMARIZER_MAX_TOKENS, SUMMARIZER_TIMEOUT, SUMMARIZER_BASE_URL
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig(Type(pkgconfig.GetEnvString("SUMMARIZER_TYPE", string(TypeNoOp))))

	switch cfg.Type {
	case TypeClaude:
		cfg.APIKey = pkgconfig.GetEnvString("ANTHROPIC_API_KEY", "")
	case TypeOpenAI:
		cfg.APIKey = pkgconfig.GetEnvString("OPENAI_API_KEY", "")
	}
	cfg.CharacterLimit = pkgconfig.GetEnvInt("SUMMARIZER_CHAR_LIMIT", cfg.CharacterLimit)
	cfg.Model = pkgconfig.GetEnvString("SUMMARIZER_MODEL", cfg.Model)
	cfg.MaxTokens = pkgconfig.GetEnvInt("SUMMARIZER_MAX_TOKENS", cfg.MaxTokens)
	cfg.Timeout = pkgconfig.GetEnvDuration("SUMMARIZER_TIMEOUT", cfg.Timeout)
	cfg.BaseURL = pkgconfig.GetEnvString("SUMMARIZER_BASE_URL", "")

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid summarizer configuration: %w", err)
	}
	return cfg, nil
}
