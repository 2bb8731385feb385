// Package search parses article search queries and escapes them for SQL LIKE patterns.
package search

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Limits applied by ParseKeywords and the repositories.
const (
	DefaultMaxKeywordCount  = 10
	DefaultMaxKeywordLength = 100
	DefaultSearchTimeout    = 5 * time.Second
)

// ErrTooManyKeywords is returned when a query has more keywords than allowed.
var ErrTooManyKeywords = errors.New("too many keywords")

// ParseKeywords splits a query on whitespace. Duplicate keywords (ignoring case)
// are dropped. An empty query yields no keywords and no error.
func ParseKeywords(query string, maxCount, maxLength int) ([]string, error) {
	fields := strings.Fields(query)
	seen := make(map[string]struct{}, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > maxLength {
			return nil, fmt.Errorf("keyword too long: max %d characters", maxLength)
		}
		key := strings.ToLower(f)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, f)
	}
	if len(keywords) > maxCount {
		return nil, fmt.Errorf("%w: max %d", ErrTooManyKeywords, maxCount)
	}
	return keywords, nil
}

// EscapeLike escapes the LIKE wildcards in keyword and wraps it in % for a
// substring match. The result must be used with ESCAPE '\'.
func EscapeLike(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}
