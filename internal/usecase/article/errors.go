// Package article implements the article service use cases: processing a
// submitted article URL into a scored and summarized article, and searching
// the stored articles together with optional news discovery.
package article

import "errors"

var (
	// ErrFetchFailed indicates that the submitted page could not be downloaded
	// or had no readable content.
	ErrFetchFailed = errors.New("fetch article failed")

	// ErrSummarizeFailed indicates that the summarizer returned an error.
	ErrSummarizeFailed = errors.New("summarize article failed")
)
