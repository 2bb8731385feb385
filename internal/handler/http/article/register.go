package article

import "net/http"

// Service is the article service used by the handlers.
type Service interface {
	Processor
	Searcher
}

// Routes lists the article routes, for metrics labels.
var Routes = []string{"/process-url", "/search-articles"}

// Register registers the article endpoints with the given mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /process-url", ProcessHandler{svc})
	mux.Handle("GET /search-articles", SearchHandler{svc})
}
