// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s for caseless comparison.
// A new Caser is built per call since Casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// NormalizeCode trims surrounding whitespace and upper-cases a module code or prefix.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Tokenize splits text into case-folded alphanumeric words.
//
// Example:
//
//	Tokenize("CS1010: Programming Methodology") returns ["cs1010", "programming", "methodology"]
func Tokenize(text string) []string {
	return strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
