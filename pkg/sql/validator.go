// Package sql provides SQL validation utilities for the read-only query tools.
package sql

import (
	"errors"
	"strings"
)

// ErrMultipleStatements indicates the query contains more than one SQL
// statement. Stacked statements are rejected outright rather than split.
var ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

// readOnlyPrefixes are the statement keywords a query may start with.
// Anything else is rejected before touching the datasource.
var readOnlyPrefixes = []string{"select", "show", "describe", "explain", "desc"}

// ValidationResult carries the normalized statement or the validation failure.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateAndNormalize trims the query, strips one trailing semicolon, and
// rejects anything that still contains a statement separator outside string
// literals.
func ValidateAndNormalize(sqlQuery string) ValidationResult {
	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return ValidationResult{}
	}

	normalized := strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(normalized, ";") {
		normalized = strings.TrimRight(strings.TrimSuffix(normalized, ";"), " \t\n\r")
	}

	if containsStatementSeparator(normalized) {
		return ValidationResult{Error: ErrMultipleStatements}
	}

	return ValidationResult{NormalizedSQL: normalized}
}

// IsReadOnly reports whether the statement starts with one of the allowed
// read-only keywords, case-insensitively. The keyword must end at a word
// boundary, so identifiers like "selection" never pass while forms such as
// "select(1)" and "select*from t" do.
func IsReadOnly(sqlQuery string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(sqlQuery))
	for _, prefix := range readOnlyPrefixes {
		if trimmed == prefix {
			return true
		}
		if strings.HasPrefix(trimmed, prefix) && !isIdentByte(trimmed[len(prefix)]) {
			return true
		}
	}
	return false
}

// isIdentByte reports whether b can continue a lower-cased SQL identifier.
func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// containsStatementSeparator reports whether the SQL has a semicolon outside
// of string literals. Both backslash escapes (\') and SQL standard doubled
// quotes ('') are tolerated: a doubled quote exits and immediately re-enters
// the literal on the next quote, which keeps the scan inside the string.
func containsStatementSeparator(sqlQuery string) bool {
	var inSingle, inDouble bool
	var prev rune

	for _, ch := range sqlQuery {
		switch {
		case inSingle:
			if ch == '\'' && prev != '\\' {
				inSingle = false
			}
		case inDouble:
			if ch == '"' && prev != '\\' {
				inDouble = false
			}
		default:
			switch ch {
			case ';':
				return true
			case '\'':
				inSingle = true
			case '"':
				inDouble = true
			}
		}
		prev = ch
	}

	return false
}
