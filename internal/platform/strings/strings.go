// Package strings provides string and string slice helpers
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

// MustString returns s if it has non whitespace content otherwise panics
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes and asserts a root path like /meta or /api/v1
// ensures a single leading slash and no trailing slash except for the root itself
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = std.TrimSpace(s)
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Ellipsis is appended by Ellipsize when it cuts
const Ellipsis = "…"

// RuneLen returns the number of runes in s
func RuneLen(s string) int { return utf8.RuneCountInString(s) }

// Ellipsize returns s unchanged if it fits in limit runes, otherwise the first
// limit-1 runes followed by Ellipsis. limit <= 0 yields ""
func Ellipsize(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + Ellipsis
}
