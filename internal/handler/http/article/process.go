package article

import (
	"context"
	"errors"
	"net/http"

	"article-panel/internal/domain/entity"
	"article-panel/internal/handler/http/respond"
	artUC "article-panel/internal/usecase/article"
)

// Processor processes submitted article URLs.
type Processor interface {
	Process(ctx context.Context, rawURL string) (*entity.Article, error)
}

// ProcessHandler handles GET /process-url?url=.
type ProcessHandler struct{ Svc Processor }

// ServeHTTP processes one article URL.
// @Summary      Process article URL
// @Description  Fetches the page, scores sentiment and bias, summarizes it and stores the article.
// @Tags         articles
// @Produce      json
// @Param        url query string true "Article URL (http or https)"
// @Success      200 {object} ProcessResponse
// @Failure      400 {object} respond.ErrorBody "Invalid URL"
// @Failure      429 {object} respond.ErrorBody "Too many requests" headers(X-RateLimit-Limit=integer,X-RateLimit-Remaining=integer,X-RateLimit-Reset=integer,Retry-After=integer)
// @Failure      502 {object} respond.ErrorBody "Article could not be fetched"
// @Failure      500 {object} respond.ErrorBody "Server error"
// @Router       /process-url [get]
func (h ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.Process(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		respond.SafeError(w, r, http.StatusInternalServerError, processError(err))
		return
	}
	respond.JSON(w, http.StatusOK, ProcessResponse{Status: "processed", Article: toDTO(a)})
}

func processError(err error) error {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		return respond.NewAppError(http.StatusBadRequest, "invalid url: "+ve.Message, nil)
	case errors.Is(err, entity.ErrInvalidInput):
		return respond.NewAppError(http.StatusBadRequest, "invalid url", nil)
	case errors.Is(err, artUC.ErrFetchFailed):
		return respond.NewAppError(http.StatusBadGateway, "failed to fetch article", err)
	}
	return err
}
