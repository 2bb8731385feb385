package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"article-panel/internal/domain/entity"
	"article-panel/internal/domain/sentiment"
	"article-panel/internal/infra/fetcher"
	"article-panel/internal/observability/logging"
	"article-panel/internal/observability/tracing"
	"article-panel/internal/pkg/search"
	"article-panel/internal/repository"
)

// ContentFetcher downloads an article page and extracts its text.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (*fetcher.Content, error)
}

// Summarizer summarizes article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// DiscoveryProvider finds articles outside the store.
type DiscoveryProvider interface {
	Search(ctx context.Context, keywords []string) ([]entity.Article, error)
}

// Config tunes the service.
type Config struct {
	// DenyPrivateURLs rejects submitted URLs resolving to private addresses.
	DenyPrivateURLs bool
	// SearchLimit caps the articles returned by Search.
	SearchLimit int
	// MaxKeywords and MaxKeywordLength bound search queries.
	MaxKeywords      int
	MaxKeywordLength int
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		DenyPrivateURLs:  true,
		SearchLimit:      20,
		MaxKeywords:      search.DefaultMaxKeywordCount,
		MaxKeywordLength: search.DefaultMaxKeywordLength,
	}
}

// Service processes and searches articles.
type Service struct {
	repo       repository.ArticleRepository
	fetcher    ContentFetcher
	summarizer Summarizer
	discovery  DiscoveryProvider
	metrics    MetricsRecorder
	cfg        Config
}

// Option customizes a Service.
type Option func(*Service)

// WithDiscovery adds a discovery provider to searches.
func WithDiscovery(d DiscoveryProvider) Option {
	return func(s *Service) { s.discovery = d }
}

// WithMetrics sets the metrics recorder. The default records nothing.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service.
func NewService(repo repository.ArticleRepository, f ContentFetcher, sum Summarizer, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		fetcher:    f,
		summarizer: sum,
		metrics:    noopMetrics{},
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process fetches the page at rawURL, scores its sentiment and bias,
// summarizes it and stores it under rawURL. Processing a stored URL again
// refreshes the stored article.
//
// Errors match entity.ErrInvalidInput for a rejected URL, ErrFetchFailed when
// the page cannot be read, and ErrSummarizeFailed when summarization fails.
func (s *Service) Process(ctx context.Context, rawURL string) (_ *entity.Article, err error) {
	ctx, span := tracing.Start(ctx, "article.Process")
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	logger := logging.FromContext(ctx)
	rawURL = strings.TrimSpace(rawURL)
	span.SetAttributes(attribute.String("article.url", rawURL))

	if err := entity.ValidateURL(ctx, rawURL, s.cfg.DenyPrivateURLs); err != nil {
		s.metrics.RecordProcessed(OutcomeInvalid)
		return nil, err
	}

	content, err := s.fetcher.FetchContent(ctx, rawURL)
	if err != nil {
		if errors.Is(err, fetcher.ErrInvalidURL) || errors.Is(err, fetcher.ErrPrivateIP) {
			s.metrics.RecordProcessed(OutcomeInvalid)
			return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
		}
		s.metrics.RecordProcessed(OutcomeFetchFailed)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	assessment := sentiment.Assess(content.Text)

	summary, err := s.summarizer.Summarize(ctx, content.Text)
	if err != nil {
		s.metrics.RecordProcessed(OutcomeSummaryFailed)
		return nil, fmt.Errorf("%w: %w", ErrSummarizeFailed, err)
	}

	article := &entity.Article{
		Title:        content.Title,
		URL:          rawURL,
		Summary:      summary,
		Polarity:     assessment.Polarity,
		Subjectivity: assessment.Subjectivity,
		BiasRating:   assessment.Rating,
		BiasWords:    assessment.Words,
	}
	if err := s.repo.Upsert(ctx, article); err != nil {
		s.metrics.RecordProcessed(OutcomeStoreFailed)
		return nil, fmt.Errorf("store article: %w", err)
	}

	s.metrics.RecordProcessed(OutcomeSuccess)
	s.metrics.RecordBiasRating(article.BiasRating)
	span.SetAttributes(
		attribute.Int64("article.id", article.ID),
		attribute.Int("article.bias_rating", article.BiasRating))
	logger.InfoContext(ctx, "article processed",
		slog.Int64("id", article.ID),
		slog.String("url", article.URL),
		slog.Int("bias_rating", article.BiasRating),
		slog.Bool("fallback_extraction", content.Fallback))

	return article, nil
}

// Search returns the stored articles matching every keyword of query, newest
// first, followed by discovered articles that are not stored. An empty query
// returns the most recent articles. At most SearchLimit articles are returned.
func (s *Service) Search(ctx context.Context, query string) (_ []*entity.Article, err error) {
	ctx, span := tracing.Start(ctx, "article.Search")
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	keywords, err := search.ParseKeywords(query, s.cfg.MaxKeywords, s.cfg.MaxKeywordLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	span.SetAttributes(attribute.Int("search.keywords", len(keywords)))

	if len(keywords) == 0 {
		recent, err := s.repo.ListRecent(ctx, s.cfg.SearchLimit)
		if err != nil {
			return nil, fmt.Errorf("list recent articles: %w", err)
		}
		s.metrics.RecordSearchResults(SourceStore, len(recent))
		return recent, nil
	}

	var stored []*entity.Article
	var discovered []entity.Article

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.repo.Search(gctx, keywords, s.cfg.SearchLimit)
		if err != nil {
			return fmt.Errorf("search articles: %w", err)
		}
		stored = res
		return nil
	})
	if s.discovery != nil {
		g.Go(func() error {
			res, err := s.discovery.Search(gctx, keywords)
			if err != nil {
				// stored results are still worth returning
				logging.FromContext(ctx).WarnContext(ctx, "discovery search failed", slog.Any("error", err))
				return nil
			}
			discovered = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := merge(stored, discovered, s.cfg.SearchLimit)
	s.metrics.RecordSearchResults(SourceStore, len(stored))
	s.metrics.RecordSearchResults(SourceDiscovery, len(result)-min(len(stored), len(result)))
	return result, nil
}

// merge appends discovered articles whose URL is not already present and caps
// the result at limit. Discovered articles are scored from their title and
// summary.
func merge(stored []*entity.Article, discovered []entity.Article, limit int) []*entity.Article {
	result := make([]*entity.Article, 0, min(len(stored)+len(discovered), limit))
	seen := make(map[string]struct{}, len(stored)+len(discovered))
	for _, a := range stored {
		if len(result) == limit {
			return result
		}
		seen[a.URL] = struct{}{}
		result = append(result, a)
	}
	for i := range discovered {
		if len(result) == limit {
			break
		}
		a := &discovered[i]
		if _, dup := seen[a.URL]; dup {
			continue
		}
		seen[a.URL] = struct{}{}

		assessment := sentiment.Assess(a.Title + ". " + a.Summary)
		a.Polarity = assessment.Polarity
		a.Subjectivity = assessment.Subjectivity
		a.BiasRating = assessment.Rating
		a.BiasWords = assessment.Words
		result = append(result, a)
	}
	return result
}
