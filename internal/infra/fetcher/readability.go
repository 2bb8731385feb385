package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"article-panel/internal/resilience/circuitbreaker"
	"article-panel/internal/resilience/retry"
)

// Content is the extracted text of an article page.
type Content struct {
	// URL is the final URL after redirects.
	URL   string
	Title string
	Text  string
	// Fallback is true when the text came from paragraph extraction rather
	// than readability.
	Fallback bool
}

// ReadabilityFetcher downloads a page and extracts its main text with the
// Mozilla Readability algorithm, falling back to joining the text of <p>,
// <article> and <div> elements when readability finds nothing.
//
// Requests go through a circuit breaker and are retried on transient errors.
// It is safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         ContentFetchConfig
}

// NewReadabilityFetcher creates a fetcher. Every redirect target is validated
// with the same rules as the original URL.
func NewReadabilityFetcher(config ContentFetchConfig) *ReadabilityFetcher {
	fetcher := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ArticleFetchConfig()),
		retryConfig:    retry.ArticleFetchConfig(),
		config:         config,
	}

	fetcher.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         newDialer(config.DenyPrivateIPs).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > fetcher.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), fetcher.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return fetcher
}

// CircuitBreaker exposes the breaker for health reporting.
func (f *ReadabilityFetcher) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return f.circuitBreaker
}

// FetchContent validates urlStr, downloads it and extracts the article.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (*Content, error) {
	if err := validateURL(ctx, urlStr, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	return retry.Do(ctx, f.retryConfig, func() (*Content, error) {
		return circuitbreaker.Do(f.circuitBreaker, func() (*Content, error) {
			return f.doFetch(ctx, urlStr)
		})
	})
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (*Content, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && (errors.Is(err, ErrTooManyRedirects) ||
			errors.Is(err, ErrPrivateIP) || errors.Is(err, ErrInvalidURL)) {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, retry.NewHTTPError(resp, "")
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	finalURL := resp.Request.URL
	return extract(htmlBytes, finalURL)
}

// extract runs readability over page and falls back to paragraph extraction.
func extract(page []byte, pageURL *url.URL) (*Content, error) {
	content := &Content{}
	if pageURL != nil {
		content.URL = pageURL.String()
	}

	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err == nil {
		content.Title = strings.TrimSpace(article.Title)
		content.Text = normalizeSpace(article.TextContent)
	} else {
		slog.Debug("readability failed, using paragraph extraction",
			slog.String("url", content.URL),
			slog.Any("error", err))
	}

	if content.Text == "" || content.Title == "" {
		title, text, ferr := extractParagraphs(bytes.NewReader(page))
		if ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoContent, ferr)
		}
		if content.Title == "" {
			content.Title = title
		}
		if content.Text == "" {
			content.Text = text
			content.Fallback = true
		}
	}

	if content.Text == "" {
		return nil, ErrNoContent
	}
	if content.Title == "" {
		content.Title = content.URL
	}
	return content, nil
}
