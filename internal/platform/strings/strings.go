// Package strings provides string and slice helpers
package strings

import (
	std "strings"
	"unicode/utf8"
)

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// Dedupe returns in without repeated entries, keeping first occurrences in order.
// eq decides equality so callers can compare case-insensitively
func Dedupe(in []string, eq func(a, b string) bool) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		seen := false
		for _, o := range out {
			if eq(o, s) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, s)
		}
	}
	return out
}

// EqualFold is strings.EqualFold, handy as a Dedupe comparator
func EqualFold(a, b string) bool { return std.EqualFold(a, b) }

// Truncate returns s cut to at most max bytes, backing up to a rune boundary
// and appending an ellipsis when anything was cut. Used to keep offending values in log lines short
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	i := max
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	if i <= 0 {
		i = max
	}
	return s[:i] + "..."
}

