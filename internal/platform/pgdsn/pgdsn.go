// Package pgdsn holds the Postgres connection-string handling shared by the
// API process and the migration command.
package pgdsn

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	binaryResultParam = "disable_prepared_binary_result"

	// MaxTracedQuery bounds the statement text attached to a span.
	MaxTracedQuery = 512
)

var runsOfSpace = regexp.MustCompile(`\s+`)

// Normalize adds disable_prepared_binary_result=yes to URL-style DSNs when
// asked to, unless the caller already set the parameter. Key/value DSNs and
// unparsable input come back unchanged.
func Normalize(dsn string, disableBinaryResult bool) string {
	if !disableBinaryResult {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	q := u.Query()
	if q.Has(binaryResultParam) {
		return dsn
	}
	q.Set(binaryResultParam, "yes")
	u.RawQuery = q.Encode()
	return u.String()
}

// DatabaseName extracts the database from either DSN style, or "" when
// none is named.
func DatabaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		if name := strings.Trim(u.Path, "/ "); name != "" {
			return name
		}
	}
	for _, field := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(field, "dbname="); ok {
			if name = strings.Trim(name, `"'`); name != "" {
				return name
			}
		}
	}
	return ""
}

// TraceQuery collapses whitespace and truncates long statements for spans.
func TraceQuery(query string) string {
	query = runsOfSpace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(query) > MaxTracedQuery {
		return query[:MaxTracedQuery] + "..."
	}
	return query
}
