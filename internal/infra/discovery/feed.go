// Package discovery searches external news feeds for articles that are not
// yet in the store. The feed provider queries an RSS search endpoint with
// gofeed, throttled by a token bucket and guarded by a circuit breaker.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"article-panel/internal/domain/entity"
	"article-panel/internal/resilience/circuitbreaker"
	"article-panel/internal/resilience/retry"
	"article-panel/internal/utils/text"
)

// summaryWidth bounds the summary taken from a feed item description.
const summaryWidth = 400

// FeedProvider searches an RSS search feed.
type FeedProvider struct {
	cfg     Config
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	limiter *RateLimiter
}

// NewFeedProvider creates a provider. A nil client uses one with cfg.Timeout.
func NewFeedProvider(cfg Config, client *http.Client) *FeedProvider {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &FeedProvider{
		cfg:     cfg,
		client:  client,
		breaker: circuitbreaker.New(circuitbreaker.DiscoveryConfig()),
		retry:   retry.DiscoveryConfig(),
		limiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

// CircuitBreaker exposes the breaker for health checks.
func (p *FeedProvider) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return p.breaker
}

// Search returns up to MaxResults feed items matching keywords, in feed order.
// Items without a link are skipped.
func (p *FeedProvider) Search(ctx context.Context, keywords []string) ([]entity.Article, error) {
	if len(keywords) == 0 {
		return []entity.Article{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	feedURL := strings.ReplaceAll(p.cfg.FeedURL, QueryPlaceholder, url.QueryEscape(strings.Join(keywords, " ")))

	feed, err := retry.Do(ctx, p.retry, func() (*gofeed.Feed, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("discovery rate limit: %w", err)
		}
		return circuitbreaker.Do(p.breaker, func() (*gofeed.Feed, error) {
			return p.parse(ctx, feedURL)
		})
	})
	if err != nil {
		slog.WarnContext(ctx, "news discovery failed",
			slog.String("state", p.breaker.State().String()),
			slog.Any("error", err))
		return nil, fmt.Errorf("discovery search: %w", err)
	}

	articles := make([]entity.Article, 0, min(len(feed.Items), p.cfg.MaxResults))
	for _, item := range feed.Items {
		if len(articles) == p.cfg.MaxResults {
			break
		}
		if item.Link == "" {
			continue
		}
		articles = append(articles, toArticle(item))
	}
	return articles, nil
}

func (p *FeedProvider) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = p.cfg.UserAgent
	fp.Client = p.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
		}
		return nil, err
	}
	return feed, nil
}

func toArticle(item *gofeed.Item) entity.Article {
	published := time.Now().UTC()
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	}

	description := item.Description
	if description == "" {
		description = item.Content
	}
	return entity.Article{
		Title:     strings.TrimSpace(item.Title),
		URL:       item.Link,
		Summary:   text.TruncateWidth(plainText(description), summaryWidth, "..."),
		CreatedAt: published,
	}
}

// plainText strips markup from a feed description.
func plainText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
