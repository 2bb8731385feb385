// Package panel implements the article panel controller: it turns UI events into
// calls against the article service and renders the results.
//
// The controller owns explicit handles to its UI collaborators (the URL dialog,
// the results container, an alert channel and a browser) instead of looking
// them up globally. Page is an in-memory implementation of all of them.
package panel

import (
	"context"
	"html/template"
)

// Article is a title/summary pair returned by the search endpoint.
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Dialog is the URL-submission dialog.
type Dialog interface {
	Show()
	Hide()
}

// ResultsContainer holds the rendered article blocks.
// Replace swaps out all current content; it never merges.
type ResultsContainer interface {
	Replace(blocks []template.HTML)
	Clear()
}

// Notifier shows a blocking acknowledgment to the user.
type Notifier interface {
	Alert(msg string)
}

// Browser opens an address in a new browsing context.
type Browser interface {
	Open(url string)
}

// ArticleService is the remote article backend.
type ArticleService interface {
	// ProcessURL asks the backend to process an article URL.
	ProcessURL(ctx context.Context, url string) error
	// SearchArticles returns the articles matching query.
	SearchArticles(ctx context.Context, query string) ([]Article, error)
}
