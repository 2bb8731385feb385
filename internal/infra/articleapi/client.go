// Package articleapi is the HTTP client for the article service.
package articleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"article-panel/internal/panel"
)

const (
	processPath = "/process-url"
	searchPath  = "/search-articles"

	// maxResponseBytes bounds how much of a response body is decoded.
	maxResponseBytes = 4 << 20
)

// Config contains configuration for the article service client.
type Config struct {
	// BaseURL is the service root, e.g. "http://localhost:8080".
	BaseURL string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// Client implements panel.ArticleService over HTTP.
// Every failure it returns wraps panel.ErrRequestFailed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. A nil httpClient gets a default one honoring cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("articleapi: base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("articleapi: invalid base URL %q: %w", base, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: base, httpClient: httpClient}, nil
}

type searchResponse struct {
	Articles []panel.Article `json:"articles"`
}

// componentEscaper undoes the escapes url.QueryEscape applies to characters
// that encodeURIComponent leaves alone, and spells spaces as %20.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*",
)

// escapeComponent percent-encodes s like JavaScript's encodeURIComponent.
func escapeComponent(s string) string {
	return componentEscaper.Replace(url.QueryEscape(s))
}

// ProcessURL asks the service to process articleURL.
// The response body must be one JSON value; its content is not inspected.
func (c *Client) ProcessURL(ctx context.Context, articleURL string) error {
	var body json.RawMessage
	return c.get(ctx, processPath, "url", articleURL, &body)
}

// SearchArticles returns the articles matching query. A response without an
// articles field yields an empty result; a bare null is a failure.
func (c *Client) SearchArticles(ctx context.Context, query string) ([]panel.Article, error) {
	var resp *searchResponse
	if err := c.get(ctx, searchPath, "query", query, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: %s response is null", panel.ErrRequestFailed, searchPath)
	}
	return resp.Articles, nil
}

func (c *Client) get(ctx context.Context, path, param, value string, out any) error {
	endpoint := c.baseURL + path + "?" + param + "=" + escapeComponent(value)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", panel.ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", panel.ErrRequestFailed, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return fmt.Errorf("%w: GET %s: HTTP %d", panel.ErrRequestFailed, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", panel.ErrRequestFailed, path, err)
	}
	// Unmarshal rejects anything after the first value.
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", panel.ErrRequestFailed, path, err)
	}
	return nil
}
