package panel_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-panel/internal/panel"
)

/* ────────────────────────────  helpers  ──────────────────────────── */

type stubService struct {
	mu        sync.Mutex
	processed []string
	queries   []string

	processErr error
	articles   []panel.Article
	searchErr  error
}

func (s *stubService) ProcessURL(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = append(s.processed, url)
	return s.processErr
}

func (s *stubService) SearchArticles(_ context.Context, query string) ([]panel.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.articles, s.searchErr
}

// gatedService blocks each search until its gate is released, so tests can
// choose the order in which responses arrive.
type gatedService struct {
	stubService
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
	results map[string][]panel.Article
}

func newGatedService(queries ...string) *gatedService {
	g := &gatedService{
		gates:   make(map[string]chan struct{}),
		started: make(chan string, len(queries)),
		results: make(map[string][]panel.Article),
	}
	for _, q := range queries {
		g.gates[q] = make(chan struct{})
		g.results[q] = []panel.Article{{Title: q, Summary: "summary of " + q}}
	}
	return g
}

func (g *gatedService) SearchArticles(ctx context.Context, query string) ([]panel.Article, error) {
	g.mu.Lock()
	gate := g.gates[query]
	res := g.results[query]
	g.mu.Unlock()

	g.started <- query
	select {
	case <-gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return res, nil
}

type fakeMetrics struct {
	mu          sync.Mutex
	searches    []string
	submissions []string
}

func (m *fakeMetrics) RecordSearch(o string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, o)
}

func (m *fakeMetrics) RecordSubmission(o string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, o)
}

func newController(t *testing.T, svc panel.ArticleService) (*panel.Controller, *panel.Page, *fakeMetrics) {
	t.Helper()
	page := panel.NewPage()
	metrics := &fakeMetrics{}
	c, err := panel.NewController(panel.Deps{
		Dialog:   page,
		Results:  page,
		Notifier: page,
		Browser:  page,
		Service:  svc,
		Metrics:  metrics,
	}, panel.Config{ExternalPageURL: "https://external.example.com/app"})
	require.NoError(t, err)
	return c, page, metrics
}

/* ──────────────────────────── construction ──────────────────────────── */

func TestNewController_RequiresDeps(t *testing.T) {
	_, err := panel.NewController(panel.Deps{}, panel.Config{})
	assert.Error(t, err)
}

func TestNewController_DefaultExternalPage(t *testing.T) {
	page := panel.NewPage()
	c, err := panel.NewController(panel.Deps{
		Dialog: page, Results: page, Notifier: page, Browser: page, Service: &stubService{},
	}, panel.Config{})
	require.NoError(t, err)

	c.OpenExternalPage()
	assert.Equal(t, panel.DefaultExternalPageURL, page.Snapshot().ExternalURL)
}

/* ──────────────────────────── dialog ──────────────────────────── */

func TestController_DialogToggle(t *testing.T) {
	c, page, _ := newController(t, &stubService{})

	c.OpenDialog()
	assert.True(t, page.Snapshot().DialogVisible)

	c.CloseDialog()
	assert.False(t, page.Snapshot().DialogVisible)
}

func TestController_OpenExternalPage(t *testing.T) {
	c, page, _ := newController(t, &stubService{})

	c.OpenExternalPage()
	st := page.Snapshot()
	assert.Equal(t, "https://external.example.com/app", st.ExternalURL)
	assert.False(t, st.DialogVisible, "external page bypasses the dialog")
}

/* ──────────────────────────── submitUrl ──────────────────────────── */

func TestController_SubmitURL_Success(t *testing.T) {
	svc := &stubService{}
	c, page, metrics := newController(t, svc)
	c.OpenDialog()

	err := c.SubmitURL(context.Background(), "https://news.example.com/a?b=c d")
	require.NoError(t, err)

	st := page.Snapshot()
	assert.False(t, st.DialogVisible)
	assert.Equal(t, []string{panel.MsgURLProcessed}, st.Alerts)
	assert.Equal(t, []string{"https://news.example.com/a?b=c d"}, svc.processed)
	assert.Equal(t, []string{panel.OutcomeProcessed}, metrics.submissions)
}

func TestController_SubmitURL_Failure(t *testing.T) {
	svc := &stubService{processErr: fmt.Errorf("%w: connection refused", panel.ErrRequestFailed)}
	c, page, metrics := newController(t, svc)
	c.OpenDialog()

	err := c.SubmitURL(context.Background(), "https://news.example.com/a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, panel.ErrRequestFailed))

	st := page.Snapshot()
	assert.True(t, st.DialogVisible, "dialog stays open on failure")
	assert.Equal(t, []string{panel.MsgSubmitFailed}, st.Alerts)
	assert.Equal(t, []string{panel.OutcomeFailed}, metrics.submissions)
}

func TestController_SubmitURL_Empty(t *testing.T) {
	svc := &stubService{}
	c, page, _ := newController(t, svc)

	err := c.SubmitURL(context.Background(), "")
	assert.ErrorIs(t, err, panel.ErrEmptyURL)
	assert.Empty(t, svc.processed)
	assert.Empty(t, page.Snapshot().Alerts)
}

/* ──────────────────────────── searchArticles ──────────────────────────── */

func TestController_SearchArticles_RendersResults(t *testing.T) {
	svc := &stubService{articles: []panel.Article{{Title: "A", Summary: "B"}}}
	c, page, metrics := newController(t, svc)

	require.NoError(t, c.SearchArticles(context.Background(), "climate change"))

	assert.Equal(t, []string{"climate change"}, svc.queries)
	doc := parseResults(t, page.Snapshot())
	require.Equal(t, 1, doc.Find("div.article").Length())
	assert.Equal(t, "A", doc.Find("div.article h3").Text())
	assert.Equal(t, "B", doc.Find("div.article p").Text())
	assert.Empty(t, page.Snapshot().Alerts)
	assert.Equal(t, []string{panel.OutcomeRendered}, metrics.searches)
}

func TestController_SearchArticles_EmptyQueryClearsWithoutRequest(t *testing.T) {
	svc := &stubService{articles: []panel.Article{{Title: "A", Summary: "B"}}}
	c, page, metrics := newController(t, svc)
	require.NoError(t, c.SearchArticles(context.Background(), "go"))
	require.Len(t, page.Snapshot().Blocks, 1)

	require.NoError(t, c.SearchArticles(context.Background(), ""))

	assert.Equal(t, []string{"go"}, svc.queries, "empty query must not hit the service")
	assert.Empty(t, page.Snapshot().Blocks)
	assert.Equal(t, []string{panel.OutcomeRendered, panel.OutcomeCleared}, metrics.searches)
}

func TestController_SearchArticles_NilArticlesRendersNothing(t *testing.T) {
	svc := &stubService{articles: nil}
	c, page, _ := newController(t, svc)
	c.RenderArticles([]panel.Article{{Title: "old", Summary: "old"}})

	require.NoError(t, c.SearchArticles(context.Background(), "nothing"))
	assert.Empty(t, page.Snapshot().Blocks)
	assert.Empty(t, page.Snapshot().Alerts, "missing articles is not an error")
}

func TestController_SearchArticles_FailureKeepsPriorResults(t *testing.T) {
	svc := &stubService{articles: []panel.Article{{Title: "kept", Summary: "s"}}}
	c, page, metrics := newController(t, svc)
	require.NoError(t, c.SearchArticles(context.Background(), "first"))
	before := page.Snapshot().ResultsHTML()

	svc.searchErr = fmt.Errorf("%w: HTTP 500", panel.ErrRequestFailed)
	err := c.SearchArticles(context.Background(), "second")
	require.ErrorIs(t, err, panel.ErrRequestFailed)

	st := page.Snapshot()
	assert.Equal(t, before, st.ResultsHTML())
	assert.Equal(t, []string{panel.MsgSearchFailed}, st.Alerts)
	assert.Equal(t, []string{panel.OutcomeRendered, panel.OutcomeFailed}, metrics.searches)
}

func TestController_SearchArticles_FailureOnEmptyPage(t *testing.T) {
	svc := &stubService{searchErr: panel.ErrRequestFailed}
	c, page, _ := newController(t, svc)

	err := c.SearchArticles(context.Background(), "climate change")
	require.Error(t, err)

	st := page.Snapshot()
	assert.Empty(t, st.Blocks)
	assert.Equal(t, []string{panel.MsgSearchFailed}, st.Alerts)
}

func TestController_SearchArticles_StaleResponseDiscarded(t *testing.T) {
	svc := newGatedService("old", "new")
	c, page, metrics := newController(t, svc)
	ctx := context.Background()

	oldDone := make(chan error, 1)
	go func() { oldDone <- c.SearchArticles(ctx, "old") }()
	require.Equal(t, "old", <-svc.started)

	newDone := make(chan error, 1)
	go func() { newDone <- c.SearchArticles(ctx, "new") }()
	require.Equal(t, "new", <-svc.started)

	// The newer request answers first, the older one last.
	close(svc.gates["new"])
	require.NoError(t, <-newDone)
	close(svc.gates["old"])
	assert.ErrorIs(t, <-oldDone, panel.ErrSuperseded)

	doc := parseResults(t, page.Snapshot())
	require.Equal(t, 1, doc.Find("div.article").Length())
	assert.Equal(t, "new", doc.Find("h3").Text())
	assert.Contains(t, metrics.searches, panel.OutcomeSuperseded)
}

func TestController_SearchArticles_ClearSupersedesInFlight(t *testing.T) {
	svc := newGatedService("slow")
	c, page, _ := newController(t, svc)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.SearchArticles(ctx, "slow") }()
	require.Equal(t, "slow", <-svc.started)

	require.NoError(t, c.SearchArticles(ctx, ""))
	close(svc.gates["slow"])

	assert.ErrorIs(t, <-done, panel.ErrSuperseded)
	assert.Empty(t, page.Snapshot().Blocks)
}

/* ──────────────────────────── render / clear ──────────────────────────── */

func TestController_RenderArticles_Idempotent(t *testing.T) {
	c, page, _ := newController(t, &stubService{})
	articles := []panel.Article{{Title: "x", Summary: "1"}, {Title: "y", Summary: "2"}}

	c.RenderArticles(articles)
	once := page.Snapshot().ResultsHTML()
	c.RenderArticles(articles)
	twice := page.Snapshot().ResultsHTML()

	assert.Equal(t, once, twice)
	assert.Len(t, page.Snapshot().Blocks, 2)
}

func TestController_ClearArticles(t *testing.T) {
	c, page, _ := newController(t, &stubService{})
	c.RenderArticles([]panel.Article{{Title: "x", Summary: "1"}})

	c.ClearArticles()
	assert.Empty(t, page.Snapshot().Blocks)

	c.ClearArticles()
	assert.Empty(t, page.Snapshot().Blocks)
}
