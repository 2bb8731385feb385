package fetcher

import (
	"fmt"
	"time"

	pkgconfig "article-panel/pkg/config"
)

// ContentFetchConfig controls how article pages are downloaded.
type ContentFetchConfig struct {
	// Timeout bounds a single HTTP request. Default: 15s.
	Timeout time.Duration

	// MaxBodySize rejects larger responses, counted while reading.
	// Default: 10MB.
	MaxBodySize int64

	// MaxRedirects is the number of redirects followed. Every target is
	// validated like the original URL. Default: 5.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs resolving to private addresses. Default: true.
	DenyPrivateIPs bool

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns the default configuration for content fetching.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Timeout:        15 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "ArticlePanelBot/1.0",
	}
}

// Validate checks configuration bounds.
func (c *ContentFetchConfig) Validate() error {
	if err := pkgconfig.ValidateDurationRange(c.Timeout, time.Second, 5*time.Minute); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent is required")
	}
	return nil
}

// LoadConfigFromEnv reads CONTENT_FETCH_TIMEOUT, CONTENT_FETCH_MAX_BODY_SIZE,
// CONTENT_FETCH_MAX_REDIRECTS, DENY_PRIVATE_URLS and CONTENT_FETCH_USER_AGENT
// over the defaults, then validates the result.
func LoadConfigFromEnv() (ContentFetchConfig, error) {
	cfg := DefaultConfig()
	cfg.Timeout = pkgconfig.GetEnvDuration("CONTENT_FETCH_TIMEOUT", cfg.Timeout)
	cfg.MaxBodySize = int64(pkgconfig.GetEnvInt("CONTENT_FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize)))
	cfg.MaxRedirects = pkgconfig.GetEnvInt("CONTENT_FETCH_MAX_REDIRECTS", cfg.MaxRedirects)
	cfg.DenyPrivateIPs = pkgconfig.GetEnvBool("DENY_PRIVATE_URLS", cfg.DenyPrivateIPs)
	cfg.UserAgent = pkgconfig.GetEnvString("CONTENT_FETCH_USER_AGENT", cfg.UserAgent)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
