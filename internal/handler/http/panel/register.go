package panel

import (
	"log/slog"
	"net/http"

	ctrl "article-panel/internal/panel"
)

// Routes lists the page routes, for metrics labels.
var Routes = []string{
	"/", "/results",
	"/dialog/open", "/dialog/close",
	"/submit-url", "/search", "/clear", "/external",
}

// Register registers the page and its form actions with the given mux.
func Register(mux *http.ServeMux, c *ctrl.Controller, page *ctrl.Page, logger *slog.Logger) {
	mux.Handle("GET /", PageHandler{page})
	mux.Handle("GET /results", ResultsHandler{page})

	mux.Handle("POST /dialog/open", ActionHandler{Action: do(c.OpenDialog), Logger: logger})
	mux.Handle("POST /dialog/close", ActionHandler{Action: do(c.CloseDialog), Logger: logger})
	mux.Handle("POST /submit-url", ActionHandler{Action: submitURL(c), Logger: logger})
	mux.Handle("POST /search", ActionHandler{Action: search(c), Logger: logger})
	mux.Handle("POST /clear", ActionHandler{Action: do(c.ClearArticles), Logger: logger})
	mux.Handle("POST /external", ActionHandler{Action: do(c.OpenExternalPage), Logger: logger})
}
