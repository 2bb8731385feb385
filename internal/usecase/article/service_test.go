package article

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"article-panel/internal/domain/entity"
	"article-panel/internal/domain/sentiment"
	"article-panel/internal/infra/fetcher"
)

type memRepo struct {
	mu       sync.Mutex
	byURL    map[string]*entity.Article
	nextID   int64
	clock    time.Time
	err      error
	searched [][]string
}

func newMemRepo() *memRepo {
	return &memRepo{byURL: map[string]*entity.Article{}, clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *memRepo) Upsert(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if old, ok := r.byURL[a.URL]; ok {
		a.ID, a.CreatedAt = old.ID, old.CreatedAt
	} else {
		r.nextID++
		r.clock = r.clock.Add(time.Minute)
		a.ID, a.CreatedAt = r.nextID, r.clock
	}
	cp := *a
	r.byURL[a.URL] = &cp
	return nil
}

func (r *memRepo) GetByURL(_ context.Context, url string) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byURL[url], r.err
}

func (r *memRepo) sorted() []*entity.Article {
	all := make([]*entity.Article, 0, len(r.byURL))
	for _, a := range r.byURL {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (r *memRepo) Search(_ context.Context, keywords []string, limit int) ([]*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searched = append(r.searched, keywords)
	if r.err != nil {
		return nil, r.err
	}
	out := []*entity.Article{}
	for _, a := range r.sorted() {
		text := strings.ToLower(a.Title + " " + a.Summary)
		match := true
		for _, k := range keywords {
			if !strings.Contains(text, strings.ToLower(k)) {
				match = false
			}
		}
		if match && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) ListRecent(_ context.Context, limit int) ([]*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	all := r.sorted()
	return all[:min(limit, len(all))], nil
}

type stubFetcher struct {
	content *fetcher.Content
	err     error
	calls   int
}

func (f *stubFetcher) FetchContent(_ context.Context, url string) (*fetcher.Content, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c := *f.content
	c.URL = url
	return &c, nil
}

type stubSummarizer struct {
	err error
}

func (s stubSummarizer) Summarize(_ context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "Summary: " + strings.Fields(text)[0], nil
}

type stubDiscovery struct {
	articles []entity.Article
	err      error
	keywords []string
}

func (d *stubDiscovery) Search(_ context.Context, keywords []string) ([]entity.Article, error) {
	d.keywords = keywords
	return d.articles, d.err
}

type recordingMetrics struct {
	mu        sync.Mutex
	processed []string
	ratings   []int
	results   map[string]int
}

func (m *recordingMetrics) RecordProcessed(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, outcome)
}

func (m *recordingMetrics) RecordBiasRating(r int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings = append(m.ratings, r)
}

func (m *recordingMetrics) RecordSearchResults(source string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = map[string]int{}
	}
	m.results[source] += n
}

const pageText = "Heat is terrible across Europe. Officials call the response shameful."

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DenyPrivateURLs = false
	cfg.SearchLimit = 5
	return cfg
}

func newTestService(repo *memRepo, f *stubFetcher, opts ...Option) *Service {
	if f == nil {
		f = &stubFetcher{content: &fetcher.Content{Title: "Heat wave", Text: pageText}}
	}
	return NewService(repo, f, stubSummarizer{}, testConfig(), opts...)
}

func TestService_Process(t *testing.T) {
	repo := newMemRepo()
	m := &recordingMetrics{}
	svc := newTestService(repo, nil, WithMetrics(m))

	got, err := svc.Process(context.Background(), "  https://news.example.com/heat  ")
	require.NoError(t, err)

	want := sentiment.Assess(pageText)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Heat wave", got.Title)
	assert.Equal(t, "https://news.example.com/heat", got.URL)
	assert.Equal(t, "Summary: Heat", got.Summary)
	assert.Equal(t, want.Polarity, got.Polarity)
	assert.Equal(t, want.Subjectivity, got.Subjectivity)
	assert.Equal(t, want.Rating, got.BiasRating)
	assert.Equal(t, []string{"terrible", "shameful"}, got.BiasWords)
	assert.False(t, got.CreatedAt.IsZero())

	stored, _ := repo.GetByURL(context.Background(), "https://news.example.com/heat")
	require.NotNil(t, stored)
	assert.Equal(t, got.Summary, stored.Summary)

	assert.Equal(t, []string{OutcomeSuccess}, m.processed)
	assert.Equal(t, []int{want.Rating}, m.ratings)
}

func TestService_Process_Resubmit(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)

	first, err := svc.Process(context.Background(), "https://news.example.com/heat")
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), "https://news.example.com/heat")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Len(t, repo.byURL, 1)
}

func TestService_Process_Errors(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		fetchErr    error
		sumErr      error
		repoErr     error
		wantIs      error
		wantOutcome string
	}{
		{name: "empty url", url: "", wantIs: entity.ErrInvalidInput, wantOutcome: OutcomeInvalid},
		{name: "bad scheme", url: "ftp://example.com/a", wantIs: entity.ErrInvalidInput, wantOutcome: OutcomeInvalid},
		{name: "fetcher rejects private ip", url: "https://news.example.com/a",
			fetchErr: fmt.Errorf("%w: 10.0.0.1", fetcher.ErrPrivateIP), wantIs: entity.ErrInvalidInput, wantOutcome: OutcomeInvalid},
		{name: "fetch fails", url: "https://news.example.com/a",
			fetchErr: fetcher.ErrTimeout, wantIs: ErrFetchFailed, wantOutcome: OutcomeFetchFailed},
		{name: "no content", url: "https://news.example.com/a",
			fetchErr: fetcher.ErrNoContent, wantIs: ErrFetchFailed, wantOutcome: OutcomeFetchFailed},
		{name: "summarizer fails", url: "https://news.example.com/a",
			sumErr: errors.New("quota"), wantIs: ErrSummarizeFailed, wantOutcome: OutcomeSummaryFailed},
		{name: "store fails", url: "https://news.example.com/a",
			repoErr: errors.New("disk full"), wantOutcome: OutcomeStoreFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			repo.err = tt.repoErr
			f := &stubFetcher{content: &fetcher.Content{Title: "t", Text: pageText}, err: tt.fetchErr}
			m := &recordingMetrics{}
			svc := NewService(repo, f, stubSummarizer{err: tt.sumErr}, testConfig(), WithMetrics(m))

			_, err := svc.Process(context.Background(), tt.url)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.fetchErr != nil {
				assert.ErrorIs(t, err, tt.fetchErr)
			}
			assert.Equal(t, []string{tt.wantOutcome}, m.processed)
			assert.Empty(t, m.ratings)
		})
	}
}

func TestService_Process_InvalidURLNotFetched(t *testing.T) {
	f := &stubFetcher{content: &fetcher.Content{}}
	svc := newTestService(newMemRepo(), f)

	_, err := svc.Process(context.Background(), "javascript:alert(1)")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
	assert.Zero(t, f.calls)
}

func seed(t *testing.T, repo *memRepo, articles ...entity.Article) {
	t.Helper()
	for i := range articles {
		require.NoError(t, repo.Upsert(context.Background(), &articles[i]))
	}
}

func TestService_Search(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo,
		entity.Article{Title: "Climate talks", URL: "https://a.example/1", Summary: "Leaders discuss change."},
		entity.Article{Title: "Sports", URL: "https://a.example/2", Summary: "A match."},
		entity.Article{Title: "Climate change report", URL: "https://a.example/3", Summary: "Scientists warn."},
	)
	svc := newTestService(repo, nil)

	got, err := svc.Search(context.Background(), "climate  CHANGE climate")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://a.example/3", got[0].URL)
	assert.Equal(t, "https://a.example/1", got[1].URL)
	assert.Equal(t, [][]string{{"climate", "CHANGE"}}, repo.searched)
}

func TestService_Search_EmptyQueryListsRecent(t *testing.T) {
	repo := newMemRepo()
	for i := range 7 {
		seed(t, repo, entity.Article{Title: fmt.Sprintf("a%d", i), URL: fmt.Sprintf("https://a.example/%d", i)})
	}
	svc := newTestService(repo, nil)

	got, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "a6", got[0].Title)
	assert.Empty(t, repo.searched)
}

func TestService_Search_TooManyKeywords(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)
	_, err := svc.Search(context.Background(), "a b c d e f g h i j k")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestService_Search_WithDiscovery(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, entity.Article{Title: "Climate talks", URL: "https://a.example/1", Summary: "Leaders meet."})

	d := &stubDiscovery{articles: []entity.Article{
		{Title: "Climate talks", URL: "https://a.example/1", Summary: "duplicate"},
		{Title: "Climate march", URL: "https://b.example/2", Summary: "A wonderful turnout."},
		{Title: "Climate fund", URL: "https://b.example/3", Summary: "Money pledged."},
	}}
	m := &recordingMetrics{}
	svc := newTestService(repo, nil, WithDiscovery(d), WithMetrics(m))

	got, err := svc.Search(context.Background(), "climate")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"climate"}, d.keywords)
	assert.Equal(t, "Leaders meet.", got[0].Summary)
	assert.Equal(t, "https://b.example/2", got[1].URL)
	assert.Equal(t, []string{"wonderful"}, got[1].BiasWords)
	assert.GreaterOrEqual(t, got[1].BiasRating, entity.MinBiasRating)
	assert.Equal(t, map[string]int{SourceStore: 1, SourceDiscovery: 2}, m.results)
}

func TestService_Search_DiscoveryCapped(t *testing.T) {
	repo := newMemRepo()
	var found []entity.Article
	for i := range 10 {
		found = append(found, entity.Article{Title: "x", URL: fmt.Sprintf("https://b.example/%d", i)})
	}
	svc := newTestService(repo, nil, WithDiscovery(&stubDiscovery{articles: found}))

	got, err := svc.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestService_Search_DiscoveryFailureIgnored(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, entity.Article{Title: "Climate", URL: "https://a.example/1"})
	svc := newTestService(repo, nil, WithDiscovery(&stubDiscovery{err: errors.New("feed down")}))

	got, err := svc.Search(context.Background(), "climate")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_Search_StoreFailure(t *testing.T) {
	repo := newMemRepo()
	repo.err = errors.New("db down")
	svc := newTestService(repo, nil, WithDiscovery(&stubDiscovery{}))

	_, err := svc.Search(context.Background(), "climate")
	assert.ErrorContains(t, err, "db down")
}

func TestService_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	f := &stubFetcher{err: fetcher.ErrTimeout}
	svc := newTestService(newMemRepo(), f)
	_, _ = svc.Process(context.Background(), "https://news.example.com/a")
	_, _ = svc.Search(context.Background(), "x")

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "article.Process", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "article.Search", spans[1].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
}
