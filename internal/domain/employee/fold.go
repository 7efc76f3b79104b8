package employee

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the caseless, NFC-normalized form of s used for every
// case-insensitive comparison on records.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// EqualFold reports whether a and b are equal under Fold.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ContainsFold reports whether needle occurs in haystack under Fold.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
