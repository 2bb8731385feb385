package config

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "article-panel/pkg/config"
	"article-panel/pkg/ratelimit"
)

// APIConfig configures cmd/api, the article service.
type APIConfig struct {
	// ListenAddr defaults to ":8080".
	ListenAddr string

	// DatabaseURL selects PostgreSQL when it starts with postgres:// or postgresql://.
	DatabaseURL string

	// SQLitePath is used when DatabaseURL is empty. Default "articles.db".
	SQLitePath string

	// CORSAllowedOrigins may call the API from a browser.
	CORSAllowedOrigins []string

	// RequestTimeout bounds each request, including fetch and summary.
	RequestTimeout time.Duration

	// DenyPrivateURLs rejects submitted URLs resolving to private addresses.
	DenyPrivateURLs bool

	// SearchLimit caps the number of articles returned by a search.
	SearchLimit int

	// RateLimit bounds /process-url requests per client IP.
	RateLimit ratelimit.Config

	Version         string
	ShutdownTimeout time.Duration
}

// LoadAPIConfig reads the article service configuration from the environment:
//
//	API_ADDR, DATABASE_URL, SQLITE_PATH, CORS_ALLOWED_ORIGINS, API_REQUEST_TIMEOUT,
//	DENY_PRIVATE_URLS, SEARCH_LIMIT, RATE_LIMIT_ENABLED, RATE_LIMIT_REQUESTS,
//	RATE_LIMIT_WINDOW, VERSION, API_SHUTDOWN_TIMEOUT
func LoadAPIConfig() (*APIConfig, error) {
	cfg := &APIConfig{
		ListenAddr:         pkgconfig.GetEnvString("API_ADDR", ":8080"),
		DatabaseURL:        pkgconfig.GetEnvString("DATABASE_URL", ""),
		SQLitePath:         pkgconfig.GetEnvString("SQLITE_PATH", "articles.db"),
		CORSAllowedOrigins: pkgconfig.GetEnvStringList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081"}),
		RequestTimeout:     pkgconfig.GetEnvDuration("API_REQUEST_TIMEOUT", 90*time.Second),
		DenyPrivateURLs:    pkgconfig.GetEnvBool("DENY_PRIVATE_URLS", true),
		SearchLimit:        pkgconfig.GetEnvInt("SEARCH_LIMIT", 20),
		RateLimit: ratelimit.Config{
			Enabled: pkgconfig.GetEnvBool("RATE_LIMIT_ENABLED", true),
			Limit:   pkgconfig.GetEnvInt("RATE_LIMIT_REQUESTS", 30),
			Window:  pkgconfig.GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Version:         pkgconfig.GetEnvString("VERSION", "dev"),
		ShutdownTimeout: pkgconfig.GetEnvDuration("API_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid API configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c *APIConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("API_ADDR cannot be empty")
	}
	if c.DatabaseURL == "" && c.SQLitePath == "" {
		return errors.New("either DATABASE_URL or SQLITE_PATH is required")
	}
	if err := pkgconfig.ValidateDurationRange(c.RequestTimeout, time.Second, 10*time.Minute); err != nil {
		return fmt.Errorf("API_REQUEST_TIMEOUT: %w", err)
	}
	if c.SearchLimit < 1 || c.SearchLimit > 100 {
		return fmt.Errorf("SEARCH_LIMIT must be between 1 and 100, got %d", c.SearchLimit)
	}
	if c.RateLimit.Enabled {
		if err := c.RateLimit.Validate(); err != nil {
			return fmt.Errorf("RATE_LIMIT: %w", err)
		}
	}
	if err := pkgconfig.ValidatePositiveDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("API_SHUTDOWN_TIMEOUT: %w", err)
	}
	return nil
}
