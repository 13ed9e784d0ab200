package db

import (
	"regexp"
	"strings"
)

// StatementCode categorizes SQL statements for execution routing and write
// gating. Classification is keyword pattern matching, not parsing - it is
// deliberately conservative and isolated behind Classify so a real parser
// could replace it without touching callers.
type StatementCode int

const (
	StatementOther StatementCode = iota // Executed directly, never paginated
	StatementSelect
	StatementInsert
	StatementReplace
	StatementUpdate
	StatementDelete
	StatementCreate
	StatementDrop
	StatementAlter
	StatementTruncate
)

// writePatterns are matched anywhere in the statement, not only as a prefix,
// so a SELECT smuggling a write keyword via subquery still classifies as a
// mutation. False positives (keywords in comments or string literals) are
// accepted: blocking an ambiguous write beats executing it silently.
var writePatterns = []struct {
	code StatementCode
	re   *regexp.Regexp
}{
	{StatementInsert, regexp.MustCompile(`(?i)\bINSERT\s+INTO\b`)},
	{StatementReplace, regexp.MustCompile(`(?i)\bREPLACE\s+INTO\b`)},
	{StatementUpdate, regexp.MustCompile(`(?i)\bUPDATE\b`)},
	{StatementDelete, regexp.MustCompile(`(?i)\bDELETE\s+FROM\b`)},
	{StatementCreate, regexp.MustCompile(`(?i)\bCREATE\b`)},
	{StatementDrop, regexp.MustCompile(`(?i)\bDROP\b`)},
	{StatementAlter, regexp.MustCompile(`(?i)\bALTER\b`)},
	{StatementTruncate, regexp.MustCompile(`(?i)\bTRUNCATE\b`)},
}

// Classify determines the statement code for raw query text. Write patterns
// take precedence over the SELECT prefix check.
func Classify(query string) StatementCode {
	for _, p := range writePatterns {
		if p.re.MatchString(query) {
			return p.code
		}
	}
	trimmed := strings.TrimSpace(query)
	if len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "SELECT") {
		return StatementSelect
	}
	return StatementOther
}

// IsMutation returns true if the statement code is a write or DDL operation.
func (c StatementCode) IsMutation() bool {
	switch c {
	case StatementInsert, StatementReplace, StatementUpdate, StatementDelete,
		StatementCreate, StatementDrop, StatementAlter, StatementTruncate:
		return true
	}
	return false
}

func (c StatementCode) String() string {
	switch c {
	case StatementSelect:
		return "select"
	case StatementInsert:
		return "insert"
	case StatementReplace:
		return "replace"
	case StatementUpdate:
		return "update"
	case StatementDelete:
		return "delete"
	case StatementCreate:
		return "create"
	case StatementDrop:
		return "drop"
	case StatementAlter:
		return "alter"
	case StatementTruncate:
		return "truncate"
	}
	return "other"
}
