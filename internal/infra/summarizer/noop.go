package summarizer

import (
	"context"
	"strings"

	"article-panel/internal/utils/text"
)

// NoOp summarizes by truncating the text to its character limit. It is the
// default when no API key is configured.
type NoOp struct {
	limit int
}

// NewNoOp creates a NoOp summarizer that keeps at most limit display cells.
func NewNoOp(limit int) *NoOp {
	if limit <= 0 {
		limit = DefaultCharacterLimit
	}
	return &NoOp{limit: limit}
}

// Summarize returns the whitespace-normalized text, cut to the limit.
func (n *NoOp) Summarize(_ context.Context, body string) (string, error) {
	return text.TruncateWidth(strings.Join(strings.Fields(body), " "), n.limit, "..."), nil
}
