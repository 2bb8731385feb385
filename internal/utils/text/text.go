// Package text holds small helpers for measuring and cutting article text.
// Lengths are counted in runes or in terminal display cells, never in bytes,
// so multi-byte text is never split in the middle of a character.
package text

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// CountRunes counts the Unicode characters in s.
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}

// TruncateRunes keeps the first n runes of s and appends tail when s was cut.
// It reports whether s was cut.
func TruncateRunes(s string, n int, tail string) (string, bool) {
	if n < 0 {
		n = 0
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + tail, true
		}
		i++
	}
	return s, false
}

// TruncateWidth cuts s so that it occupies at most width display cells,
// tail included. Wide characters such as CJK count as two cells.
func TruncateWidth(s string, width int, tail string) string {
	return runewidth.Truncate(s, width, tail)
}

// Width returns the number of display cells s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}
