// Package entity defines the core domain entities and validation logic for the article service.
// It contains the Article entity with its sentiment and bias scores, along with the
// validation rules and domain-specific errors.
package entity

import "time"

// Article represents a processed news article.
// Title and Summary are what the panel renders; the remaining fields are kept by
// the article service for search and display.
type Article struct {
	ID           int64
	Title        string
	URL          string
	Summary      string
	Polarity     float64
	Subjectivity float64
	BiasRating   int
	// BiasWords are the words that pushed the bias rating up, in order of appearance.
	BiasWords []string
	CreatedAt time.Time
}

// Bias rating bounds. A rating of 1 is neutral and objective, 5 is highly biased.
const (
	MinBiasRating = 1
	MaxBiasRating = 5
)

// BiasPercentage converts a bias rating into a percentage of the maximum rating.
func (a *Article) BiasPercentage() float64 {
	return float64(a.BiasRating) / MaxBiasRating * 100
}
