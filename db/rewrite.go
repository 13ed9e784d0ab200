package db

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Matches a single LIMIT/OFFSET clause anchored at the end of the
	// statement. Clauses inside subqueries are intentionally left alone.
	trailingLimitOffsetRe = regexp.MustCompile(`(?i)\s+(?:LIMIT\s+\d+|OFFSET\s+\d+)\s*$`)

	limitTokenRe = regexp.MustCompile(`(?i)\bLIMIT\b`)
)

// stripTerminator trims surrounding whitespace and a single trailing semicolon.
func stripTerminator(query string) string {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	return strings.TrimSpace(q)
}

// StripTrailingLimitOffset removes a trailing LIMIT/OFFSET window from a
// SELECT so a caller-supplied window can be injected deterministically.
// SQL permits either ordering (LIMIT n OFFSET m or OFFSET m LIMIT n), so at
// most two trailing clauses are removed.
func StripTrailingLimitOffset(query string) string {
	q := stripTerminator(query)
	for i := 0; i < 2; i++ {
		loc := trailingLimitOffsetRe.FindStringIndex(q)
		if loc == nil {
			break
		}
		q = strings.TrimRight(q[:loc[0]], " \t\r\n")
	}
	return q
}

// ApplyDefaultLimit appends LIMIT maxResults to a SELECT that carries no
// LIMIT token anywhere in its text. This is the safety cap for the
// non-paginated execution path.
func ApplyDefaultLimit(query string, maxResults int) string {
	if limitTokenRe.MatchString(query) {
		return query
	}
	return fmt.Sprintf("%s LIMIT %d", stripTerminator(query), maxResults)
}
