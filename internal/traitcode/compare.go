package traitcode

import "slices"

// Equals reports whether two non-empty codes are identical.
func Equals(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b
}

// ArePermutations reports whether two non-empty codes contain the same
// characters in any order.
func ArePermutations(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	slices.Sort(ra)
	slices.Sort(rb)
	return slices.Equal(ra, rb)
}

// MatchShortCode reports whether every character of short appears in the
// first len(short) characters of long. Only that leading window is searched:
// MatchShortCode("R", "RIA") is true but MatchShortCode("A", "RIA") is false.
func MatchShortCode(short, long string) bool {
	if short == "" || long == "" {
		return false
	}
	rs, rl := []rune(short), []rune(long)
	if len(rs) > len(rl) {
		return false
	}
	window := rl[:len(rs)]
	for _, r := range rs {
		if !slices.Contains(window, r) {
			return false
		}
	}
	return true
}
