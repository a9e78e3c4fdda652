package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength caps how much of a SQL statement gets logged.
	MaxQueryLogLength = 100
	// RedactedText replaces sensitive values in log output.
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host credentials embedded in a connection URL.
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)
)

// redactCredentials strips password key-value pairs and URL-embedded
// credentials from s.
func redactCredentials(s string) string {
	s = passwordPattern.ReplaceAllString(s, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(s, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeConnectionString removes credentials from a DSN before logging.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	return redactCredentials(connStr)
}

// SanitizeError redacts error messages that may echo DSN credentials. Call
// it before logging any error from datasource operations.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return redactCredentials(err.Error())
}

// SanitizeQuery redacts password literals in a SQL statement and truncates
// it to MaxQueryLogLength for logging.
func SanitizeQuery(query string) string {
	sanitized := passwordPattern.ReplaceAllString(query, "${1}="+RedactedText)
	if len(sanitized) > MaxQueryLogLength {
		return sanitized[:MaxQueryLogLength] + "..."
	}
	return sanitized
}
