package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s for case-insensitive matching.
// A Caser is stateful, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// HasText reports whether an optional text attribute carries anything besides whitespace.
func HasText(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}

// Deref returns the pointed-to string or "" for nil.
func Deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
