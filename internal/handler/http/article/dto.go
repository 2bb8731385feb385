// Package article serves the article service endpoints that the panel calls:
// GET /process-url and GET /search-articles.
package article

import (
	"time"

	"article-panel/internal/domain/entity"
	"article-panel/internal/domain/sentiment"
)

// DTO is the JSON form of an article. The panel reads only title and summary.
type DTO struct {
	ID             int64     `json:"id,omitempty"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Summary        string    `json:"summary"`
	Polarity       float64   `json:"polarity"`
	Subjectivity   float64   `json:"subjectivity"`
	BiasRating     int       `json:"bias_rating"`
	BiasPercentage float64   `json:"bias_percentage"`
	Explanation    string    `json:"explanation"`
	BiasWords      []string  `json:"bias_words"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProcessResponse is the body of a successful /process-url call.
type ProcessResponse struct {
	Status  string `json:"status"`
	Article DTO    `json:"article"`
}

// SearchResponse is the body of a successful /search-articles call.
// Articles is never null.
type SearchResponse struct {
	Articles []DTO `json:"articles"`
}

func toDTO(a *entity.Article) DTO {
	words := a.BiasWords
	if words == nil {
		words = []string{}
	}
	return DTO{
		ID:             a.ID,
		Title:          a.Title,
		URL:            a.URL,
		Summary:        a.Summary,
		Polarity:       a.Polarity,
		Subjectivity:   a.Subjectivity,
		BiasRating:     a.BiasRating,
		BiasPercentage: a.BiasPercentage(),
		Explanation:    sentiment.Explanation(a.BiasRating),
		BiasWords:      words,
		CreatedAt:      a.CreatedAt,
	}
}
