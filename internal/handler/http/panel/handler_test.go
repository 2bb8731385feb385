package panel_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hhttp "article-panel/internal/handler/http"
	web "article-panel/internal/handler/http/panel"
	ctrl "article-panel/internal/panel"
	"article-panel/pkg/security/csp"
)

type stubService struct {
	mu        sync.Mutex
	processed []string
	queries   []string

	processErr error
	articles   []ctrl.Article
	searchErr  error
}

func (s *stubService) ProcessURL(_ context.Context, u string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = append(s.processed, u)
	return s.processErr
}

func (s *stubService) SearchArticles(_ context.Context, q string) ([]ctrl.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.articles, s.searchErr
}

func setup(t *testing.T, svc ctrl.ArticleService) (http.Handler, *ctrl.Page) {
	t.Helper()
	page := ctrl.NewPage()
	c, err := ctrl.NewController(ctrl.Deps{
		Dialog: page, Results: page, Notifier: page, Browser: page, Service: svc,
	}, ctrl.Config{ExternalPageURL: "https://analyzer.example.com/"})
	require.NoError(t, err)

	mux := http.NewServeMux()
	web.Register(mux, c, page, nil)
	return mux, page
}

func post(t *testing.T, h http.Handler, path string, form url.Values) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code, "POST %s", path)
	require.Equal(t, "/", rr.Header().Get("Location"))
}

func get(t *testing.T, h http.Handler, path string) *goquery.Document {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	return doc
}

func TestPage_InitialState(t *testing.T) {
	h, _ := setup(t, &stubService{})
	doc := get(t, h, "/")

	dialog := doc.Find("#" + web.IDDialog)
	require.Equal(t, 1, dialog.Length())
	style, _ := dialog.Attr("style")
	assert.Contains(t, style, "none")

	assert.Equal(t, 1, doc.Find("input#"+web.IDURL+"[name=url]").Length())
	assert.Equal(t, 1, doc.Find("label[for="+web.IDURL+"]").Length())
	assert.Equal(t, 1, doc.Find("input#"+web.IDSearch+"[name=query]").Length())
	assert.Equal(t, 1, doc.Find("#"+web.IDResults).Length())
	assert.Equal(t, 0, doc.Find("div.article").Length())
	assert.Equal(t, 0, doc.Find("dialog.alert").Length())
	assert.Equal(t, 0, doc.Find("script").Length())
}

func TestPage_UnknownPath(t *testing.T) {
	h, _ := setup(t, &stubService{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestActions_DialogOpenClose(t *testing.T) {
	h, _ := setup(t, &stubService{})

	post(t, h, "/dialog/open", nil)
	style, _ := get(t, h, "/").Find("#" + web.IDDialog).Attr("style")
	assert.Contains(t, style, "flex")

	post(t, h, "/dialog/close", nil)
	style, _ = get(t, h, "/").Find("#" + web.IDDialog).Attr("style")
	assert.Contains(t, style, "none")
}

func TestActions_SubmitURL(t *testing.T) {
	svc := &stubService{}
	h, _ := setup(t, svc)
	post(t, h, "/dialog/open", nil)

	post(t, h, "/submit-url", url.Values{"url": {"https://news.example.com/story"}})
	assert.Equal(t, []string{"https://news.example.com/story"}, svc.processed)

	doc := get(t, h, "/")
	assert.Equal(t, ctrl.MsgURLProcessed, doc.Find("dialog.alert p").Text())
	style, _ := doc.Find("#" + web.IDDialog).Attr("style")
	assert.Contains(t, style, "none")

	// alerts are shown once
	assert.Equal(t, 0, get(t, h, "/").Find("dialog.alert").Length())
}

func TestActions_SubmitURL_Empty(t *testing.T) {
	svc := &stubService{}
	h, _ := setup(t, svc)

	post(t, h, "/submit-url", url.Values{"url": {""}})
	assert.Empty(t, svc.processed)
	assert.Equal(t, 0, get(t, h, "/").Find("dialog.alert").Length())
}

func TestActions_SubmitURL_Failure(t *testing.T) {
	svc := &stubService{processErr: ctrl.ErrRequestFailed}
	h, _ := setup(t, svc)
	post(t, h, "/dialog/open", nil)

	post(t, h, "/submit-url", url.Values{"url": {"https://news.example.com/story"}})

	doc := get(t, h, "/")
	assert.Equal(t, ctrl.MsgSubmitFailed, doc.Find("dialog.alert p").Text())
	style, _ := doc.Find("#" + web.IDDialog).Attr("style")
	assert.Contains(t, style, "flex")
}

// The panel holds a single page: an alert is shown to the next page load,
// whichever client makes it, and only once.
func TestPage_SingleUserAlertShownOnce(t *testing.T) {
	h, _ := setup(t, &stubService{searchErr: ctrl.ErrRequestFailed})
	post(t, h, "/search", url.Values{"query": {"go"}})

	load := func(remote string) *goquery.Document {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		doc, err := goquery.NewDocumentFromReader(rr.Body)
		require.NoError(t, err)
		return doc
	}

	assert.Equal(t, ctrl.MsgSearchFailed, load("192.0.2.1:5000").Find("dialog.alert p").Text())
	assert.Equal(t, 0, load("192.0.2.2:5000").Find("dialog.alert").Length())
}

func TestActions_SearchAndClear(t *testing.T) {
	svc := &stubService{articles: []ctrl.Article{
		{Title: "Heat records", Summary: "A hot <b>summer</b>"},
		{Title: "Sea levels", Summary: "Rising"},
	}}
	h, _ := setup(t, svc)

	post(t, h, "/search", url.Values{"query": {"climate change"}})
	assert.Equal(t, []string{"climate change"}, svc.queries)

	doc := get(t, h, "/results")
	blocks := doc.Find("#" + web.IDResults + " div.article")
	require.Equal(t, 2, blocks.Length())
	assert.Equal(t, "Heat records", blocks.First().Find("h3").Text())
	assert.Equal(t, "A hot <b>summer</b>", blocks.First().Find("p").Text())
	assert.Equal(t, 0, doc.Find("b").Length())

	post(t, h, "/clear", nil)
	assert.Equal(t, 0, get(t, h, "/results").Find("div.article").Length())
}

func TestActions_SearchEmptyQueryClears(t *testing.T) {
	svc := &stubService{articles: []ctrl.Article{{Title: "t", Summary: "s"}}}
	h, _ := setup(t, svc)
	post(t, h, "/search", url.Values{"query": {"go"}})

	post(t, h, "/search", url.Values{"query": {""}})

	assert.Equal(t, []string{"go"}, svc.queries)
	assert.Equal(t, 0, get(t, h, "/").Find("div.article").Length())
}

func TestActions_SearchFailureAlerts(t *testing.T) {
	svc := &stubService{searchErr: ctrl.ErrRequestFailed}
	h, _ := setup(t, svc)

	post(t, h, "/search", url.Values{"query": {"x"}})
	assert.Equal(t, ctrl.MsgSearchFailed, get(t, h, "/").Find("dialog.alert p").Text())
}

func TestActions_External(t *testing.T) {
	h, _ := setup(t, &stubService{})

	post(t, h, "/external", nil)

	doc := get(t, h, "/")
	href, ok := doc.Find("#external-link").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://analyzer.example.com/", href)
	assert.Contains(t, doc.Find("script").Text(), "window.open")

	// opened once
	assert.Equal(t, 0, get(t, h, "/").Find("#external-link").Length())
}

func TestActions_ExternalScriptCarriesNonce(t *testing.T) {
	mux, _ := setup(t, &stubService{})
	h := hhttp.CSP(csp.PagePolicy)(mux)

	post(t, h, "/external", nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)

	nonce, ok := doc.Find("script").Attr("nonce")
	require.True(t, ok)
	require.NotEmpty(t, nonce)
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), csp.NonceSource(nonce))
}

func TestActions_WrongMethod(t *testing.T) {
	h, _ := setup(t, &stubService{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clear", nil))
	assert.NotEqual(t, http.StatusSeeOther, rr.Code)
}
