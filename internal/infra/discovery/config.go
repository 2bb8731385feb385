package discovery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	pkgconfig "article-panel/pkg/config"
)

// QueryPlaceholder marks where the escaped search query goes in FeedURL.
const QueryPlaceholder = "{query}"

// DefaultFeedURL is Google News' RSS search.
const DefaultFeedURL = "https://news.google.com/rss/search?q={query}&hl=en-US&gl=US&ceid=US:en"

// Config configures the RSS news search.
type Config struct {
	// Enabled turns discovery on. Disabled discovery is never constructed.
	Enabled bool

	// FeedURL is the search feed address with a {query} placeholder.
	FeedURL string

	// MaxResults caps the items taken from one feed.
	MaxResults int

	// Timeout bounds one search, retries included.
	Timeout time.Duration

	// RequestsPerSecond and Burst throttle requests to the feed host.
	RequestsPerSecond float64
	Burst             int

	UserAgent string
}

// DefaultConfig returns the default configuration with discovery disabled.
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		FeedURL:           DefaultFeedURL,
		MaxResults:        10,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 1,
		Burst:             3,
		UserAgent:         "ArticlePanelBot/1.0",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !strings.Contains(c.FeedURL, QueryPlaceholder) {
		return fmt.Errorf("feed url must contain %s", QueryPlaceholder)
	}
	if err := pkgconfig.ValidateHTTPURL(strings.ReplaceAll(c.FeedURL, QueryPlaceholder, "q")); err != nil {
		return fmt.Errorf("invalid feed url: %w", err)
	}
	if c.MaxResults < 1 || c.MaxResults > 100 {
		return fmt.Errorf("max results must be between 1 and 100, got %d", c.MaxResults)
	}
	if err := pkgconfig.ValidateDurationRange(c.Timeout, time.Second, time.Minute); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.RequestsPerSecond <= 0 {
		return errors.New("requests per second must be positive")
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	if c.UserAgent == "" {
		return errors.New("user agent cannot be empty")
	}
	return nil
}

// LoadConfigFromEnv reads DISCOVERY_ENABLED, DISCOVERY_FEED_URL,
// DISCOVERY_MAX_RESULTS, DISCOVERY_TIMEOUT, DISCOVERY_RPS and DISCOVERY_BURST.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Enabled = pkgconfig.GetEnvBool("DISCOVERY_ENABLED", cfg.Enabled)
	cfg.FeedURL = pkgconfig.GetEnvString("DISCOVERY_FEED_URL", cfg.FeedURL)
	cfg.MaxResults = pkgconfig.GetEnvInt("DISCOVERY_MAX_RESULTS", cfg.MaxResults)
	cfg.Timeout = pkgconfig.GetEnvDuration("DISCOVERY_TIMEOUT", cfg.Timeout)
	cfg.Burst = pkgconfig.GetEnvInt("DISCOVERY_BURST", cfg.Burst)
	if rps, ok := pkgconfig.LookupEnv("DISCOVERY_RPS"); ok {
		v, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DISCOVERY_RPS %q: %w", rps, err)
		}
		cfg.RequestsPerSecond = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid discovery configuration: %w", err)
	}
	return cfg, nil
}
