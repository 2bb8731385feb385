// Package config loads the settings of the panel and the article service.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"article-panel/internal/panel"
	pkgconfig "article-panel/pkg/config"
)

// PanelConfig configures cmd/panel.
type PanelConfig struct {
	// ListenAddr is the address of the panel's web front. Default ":8081".
	ListenAddr string `yaml:"listen_addr"`

	// ExternalPageURL is opened by the "open external page" action.
	ExternalPageURL string `yaml:"external_page_url"`

	ArticleAPI ArticleAPIConfig `yaml:"article_api"`

	// ShutdownTimeout bounds graceful shutdown. Default 5s.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ArticleAPIConfig locates the article service.
type ArticleAPIConfig struct {
	// BaseURL of the article service. Default "http://localhost:8080".
	BaseURL string `yaml:"base_url"`

	// Timeout per request. Zero (the default) means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultPanelConfig returns the built-in defaults.
func DefaultPanelConfig() PanelConfig {
	return PanelConfig{
		ListenAddr:      ":8081",
		ExternalPageURL: panel.DefaultExternalPageURL,
		ArticleAPI: ArticleAPIConfig{
			BaseURL: "http://localhost:8080",
		},
		ShutdownTimeout: 5 * time.Second,
	}
}

// LoadPanelConfig builds the panel configuration from the defaults, then the
// YAML file at path (skipped when path is empty), then environment variables:
//
//	PANEL_ADDR, EXTERNAL_PAGE_URL, ARTICLE_API_URL, ARTICLE_API_TIMEOUT,
//	PANEL_SHUTDOWN_TIMEOUT
func LoadPanelConfig(path string) (*PanelConfig, error) {
	cfg := DefaultPanelConfig()

	if path != "" {
		// #nosec G304 -- path comes from PANEL_CONFIG, set by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ListenAddr = pkgconfig.GetEnvString("PANEL_ADDR", cfg.ListenAddr)
	cfg.ExternalPageURL = pkgconfig.GetEnvString("EXTERNAL_PAGE_URL", cfg.ExternalPageURL)
	cfg.ArticleAPI.BaseURL = pkgconfig.GetEnvString("ARTICLE_API_URL", cfg.ArticleAPI.BaseURL)
	cfg.ArticleAPI.Timeout = pkgconfig.GetEnvDuration("ARTICLE_API_TIMEOUT", cfg.ArticleAPI.Timeout)
	cfg.ShutdownTimeout = pkgconfig.GetEnvDuration("PANEL_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid panel configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration correctness.
func (c *PanelConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if err := pkgconfig.ValidateHTTPURL(c.ArticleAPI.BaseURL); err != nil {
		return fmt.Errorf("article_api.base_url: %w", err)
	}
	if err := pkgconfig.ValidateHTTPURL(c.ExternalPageURL); err != nil {
		return fmt.Errorf("external_page_url: %w", err)
	}
	if err := pkgconfig.ValidateNonNegativeDuration(c.ArticleAPI.Timeout); err != nil {
		return fmt.Errorf("article_api.timeout: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown_timeout: %w", err)
	}
	return nil
}
