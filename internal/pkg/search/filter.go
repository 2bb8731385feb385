package search

import (
	"strconv"
	"strings"
)

// Dialect is how a database spells placeholders and substring matches.
type Dialect struct {
	// Numbered placeholders ($1, $2, ...) can repeat an argument, so each
	// keyword is bound once. Otherwise "?" is bound once per column.
	Numbered bool

	// Like is the matching operator, e.g. ILIKE.
	Like string

	// Escape follows each pattern, e.g. ESCAPE '\'.
	Escape string
}

var (
	// Postgres matches case-insensitively with ILIKE, whose default escape
	// character is already a backslash.
	Postgres = Dialect{Numbered: true, Like: "ILIKE"}

	// SQLite's LIKE folds ASCII case only.
	SQLite = Dialect{Like: "LIKE", Escape: `ESCAPE '\'`}
)

// WhereAll builds a WHERE clause requiring every keyword to match at least
// one of columns, with arguments escaped by EscapeLike. Placeholders are
// numbered from first. The clause is empty when there are no keywords.
func (d Dialect) WhereAll(keywords []string, first int, columns ...string) (string, []any) {
	if len(keywords) == 0 || len(columns) == 0 {
		return "", nil
	}

	var args []any
	conds := make([]string, 0, len(keywords))
	n := first
	for _, kw := range keywords {
		pattern := EscapeLike(kw)
		matches := make([]string, 0, len(columns))
		for i, col := range columns {
			ph := "?"
			if d.Numbered {
				ph = "$" + strconv.Itoa(n)
			}
			if !d.Numbered || i == 0 {
				args = append(args, pattern)
			}
			if !d.Numbered {
				n++
			}
			m := col + " " + d.Like + " " + ph
			if d.Escape != "" {
				m += " " + d.Escape
			}
			matches = append(matches, m)
		}
		if d.Numbered {
			n++
		}
		conds = append(conds, "("+strings.Join(matches, " OR ")+")")
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
