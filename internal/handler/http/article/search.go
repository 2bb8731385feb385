package article

import (
	"context"
	"errors"
	"net/http"

	"article-panel/internal/domain/entity"
	"article-panel/internal/handler/http/respond"
)

// Searcher searches articles.
type Searcher interface {
	Search(ctx context.Context, query string) ([]*entity.Article, error)
}

// SearchHandler handles GET /search-articles?query=. A missing query returns
// the most recent articles.
type SearchHandler struct{ Svc Searcher }

// ServeHTTP searches stored and discovered articles.
// @Summary      Search articles
// @Description  Space-separated keywords are ANDed over title and summary. An empty query returns recent articles.
// @Tags         articles
// @Produce      json
// @Param        query query string false "Search keywords (space separated)"
// @Success      200 {object} SearchResponse
// @Failure      400 {object} respond.ErrorBody "Too many or too long keywords"
// @Failure      500 {object} respond.ErrorBody "Server error"
// @Router       /search-articles [get]
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		if errors.Is(err, entity.ErrInvalidInput) {
			respond.SafeError(w, r, http.StatusBadRequest,
				respond.NewAppError(http.StatusBadRequest, "invalid query: too many or too long keywords", nil))
			return
		}
		respond.SafeError(w, r, http.StatusInternalServerError, err)
		return
	}

	out := SearchResponse{Articles: make([]DTO, 0, len(list))}
	for _, a := range list {
		out.Articles = append(out.Articles, toDTO(a))
	}
	respond.JSON(w, http.StatusOK, out)
}
