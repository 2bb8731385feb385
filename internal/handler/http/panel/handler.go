package panel

import (
	"errors"
	"log/slog"
	"net/http"

	ctrl "article-panel/internal/panel"
	"article-panel/pkg/security/csp"
)

// PageHandler renders the whole page. Pending alerts and the pending external
// address are consumed by the render.
type PageHandler struct{ Page *ctrl.Page }

func (h PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	render(w, r, "page", h.Page.TakeFlash())
}

// ResultsHandler renders only the results container.
type ResultsHandler struct{ Page *ctrl.Page }

func (h ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render(w, r, "results", h.Page.Snapshot())
}

// view is the template data: the page state, the script nonce of the
// response's Content-Security-Policy and the element ids.
type view struct {
	ctrl.PageState
	Nonce string
	IDs   elementIDs
}

func render(w http.ResponseWriter, r *http.Request, name string, st ctrl.PageState) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	v := view{PageState: st, Nonce: csp.NonceFromContext(r.Context()), IDs: pageIDs}
	if err := pageTemplate.ExecuteTemplate(w, name, v); err != nil {
		slog.ErrorContext(r.Context(), "render page",
			slog.String("template", name),
			slog.Any("error", err))
	}
}

// ActionHandler runs one controller operation for a form post and redirects
// back to the page. The controller has already alerted the user about any
// failure, so errors only reach the log.
type ActionHandler struct {
	Action func(r *http.Request) error
	Logger *slog.Logger
}

func (h ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Action(r); err != nil && !expected(err) {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.DebugContext(r.Context(), "panel action failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func expected(err error) bool {
	return errors.Is(err, ctrl.ErrEmptyURL) || errors.Is(err, ctrl.ErrSuperseded)
}

func submitURL(c *ctrl.Controller) func(*http.Request) error {
	return func(r *http.Request) error {
		u := r.PostFormValue("url")
		if u == "" {
			return ctrl.ErrEmptyURL
		}
		return c.SubmitURL(r.Context(), u)
	}
}

func search(c *ctrl.Controller) func(*http.Request) error {
	return func(r *http.Request) error {
		return c.SearchArticles(r.Context(), r.PostFormValue("query"))
	}
}

func do(f func()) func(*http.Request) error {
	return func(*http.Request) error {
		f()
		return nil
	}
}
