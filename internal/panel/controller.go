package panel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultExternalPageURL is opened by OpenExternalPage when no address is configured.
const DefaultExternalPageURL = "http://your-streamlit-url.com"

// Deps holds the collaborators a Controller mediates between.
type Deps struct {
	Dialog   Dialog
	Results  ResultsContainer
	Notifier Notifier
	Browser  Browser
	Service  ArticleService

	// Metrics is optional; nil disables recording.
	Metrics MetricsRecorder
	// Logger is optional; nil uses slog.Default().
	Logger *slog.Logger
}

// Config holds controller settings.
type Config struct {
	// ExternalPageURL is the fixed address opened by OpenExternalPage.
	ExternalPageURL string
}

// Controller mediates between UI events and the article service.
// It is constructed once per page and is safe for concurrent use.
//
// Searches are numbered from a monotonically increasing sequence. Only the
// response to the most recent search (or clear) may touch the results
// container; older responses are dropped.
type Controller struct {
	dialog   Dialog
	results  ResultsContainer
	notifier Notifier
	browser  Browser
	service  ArticleService
	metrics  MetricsRecorder
	logger   *slog.Logger
	cfg      Config

	seq atomic.Uint64
	// renderMu makes "is this still the latest search" and the container
	// update one step.
	renderMu sync.Mutex
}

// NewController wires a controller. All UI handles and the service are required.
func NewController(deps Deps, cfg Config) (*Controller, error) {
	if deps.Dialog == nil || deps.Results == nil || deps.Notifier == nil ||
		deps.Browser == nil || deps.Service == nil {
		return nil, errors.New("panel: dialog, results, notifier, browser and service are required")
	}
	if cfg.ExternalPageURL == "" {
		cfg.ExternalPageURL = DefaultExternalPageURL
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		dialog:   deps.Dialog,
		results:  deps.Results,
		notifier: deps.Notifier,
		browser:  deps.Browser,
		service:  deps.Service,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "panel")),
		cfg:      cfg,
	}, nil
}

// OpenDialog makes the URL-submission dialog visible.
func (c *Controller) OpenDialog() {
	c.dialog.Show()
}

// CloseDialog hides the URL-submission dialog.
func (c *Controller) CloseDialog() {
	c.dialog.Hide()
}

// OpenExternalPage opens the configured external address in a new browsing context.
func (c *Controller) OpenExternalPage() {
	c.browser.Open(c.cfg.ExternalPageURL)
}

// SubmitURL sends url to the article service for processing.
//
// An empty url returns ErrEmptyURL without any request. On success the user is
// told the article was processed and the dialog is closed. On failure a generic
// alert is shown, the dialog stays open and the error (wrapping ErrRequestFailed)
// is returned.
func (c *Controller) SubmitURL(ctx context.Context, url string) error {
	if url == "" {
		return ErrEmptyURL
	}

	if err := c.service.ProcessURL(ctx, url); err != nil {
		c.logger.ErrorContext(ctx, "url submission failed",
			slog.String("url", url),
			slog.Any("error", err))
		c.metrics.RecordSubmission(OutcomeFailed)
		c.notifier.Alert(MsgSubmitFailed)
		return err
	}

	c.metrics.RecordSubmission(OutcomeProcessed)
	c.notifier.Alert(MsgURLProcessed)
	c.CloseDialog()
	return nil
}

// SearchArticles searches the article service for query and renders the result.
//
// An empty query clears the results without a request. On failure a generic
// alert is shown and the rendered results stay as they were. If a newer search
// or clear started while this one was in flight, the response is dropped
// silently and ErrSuperseded is returned.
func (c *Controller) SearchArticles(ctx context.Context, query string) error {
	if query == "" {
		c.ClearArticles()
		c.metrics.RecordSearch(OutcomeCleared)
		return nil
	}

	seq := c.seq.Add(1)
	articles, err := c.service.SearchArticles(ctx, query)

	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	if c.seq.Load() != seq {
		c.logger.DebugContext(ctx, "discarding superseded search response",
			slog.String("query", query),
			slog.Uint64("seq", seq))
		c.metrics.RecordSearch(OutcomeSuperseded)
		return ErrSuperseded
	}

	if err != nil {
		c.logger.ErrorContext(ctx, "article search failed",
			slog.String("query", query),
			slog.Any("error", err))
		c.metrics.RecordSearch(OutcomeFailed)
		c.notifier.Alert(MsgSearchFailed)
		return err
	}

	c.renderLocked(articles)
	c.metrics.RecordSearch(OutcomeRendered)
	return nil
}

// RenderArticles replaces the results container with one block per article.
func (c *Controller) RenderArticles(articles []Article) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	c.renderLocked(articles)
}

// ClearArticles empties the results container. Any search still in flight is
// superseded.
func (c *Controller) ClearArticles() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	c.seq.Add(1)
	c.results.Clear()
}

func (c *Controller) renderLocked(articles []Article) {
	blocks, err := RenderBlocks(articles)
	if err != nil {
		c.logger.Error("render articles", slog.Any("error", err))
		return
	}
	c.results.Replace(blocks)
}
