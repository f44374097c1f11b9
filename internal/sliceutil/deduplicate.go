// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes duplicate items from a slice while preserving order.
// The keyFunc extracts a unique key from each item for comparison.
// Only the first occurrence of each key is kept.
//
// Example:
//
//	majors := []string{"Computer Science at NUS", "Economics at SMU", "Computer Science at NUS"}
//	unique := sliceutil.Deduplicate(majors, func(m string) string { return m })
//	// Result: ["Computer Science at NUS", "Economics at SMU"]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}

	return result
}

// Unique removes repeated values, keeping the first occurrence of each.
func Unique[T comparable](items []T) []T {
	return Deduplicate(items, func(v T) T { return v })
}

// Take returns at most n leading items. A non-positive n yields an empty slice.
func Take[T any](items []T, n int) []T {
	if n <= 0 {
		return items[:0]
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}
