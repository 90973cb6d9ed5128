package listing

import (
	"strings"

	"golang.org/x/text/cases"
)

// Query is everything the Filter needs besides the collection itself.
// The zero Query matches every item.
type Query[T any] struct {
	// Search is matched as a case-insensitive substring
	Search string

	// Fields returns the strings Search is matched against; any match wins
	Fields func(T) []string

	// Predicates must all hold for an item to be kept
	Predicates []Predicate[T]
}

// Apply returns the subsequence of full that satisfies q, preserving order.
// It never mutates full and always returns a fresh slice.
func Apply[T any](full []T, q Query[T]) []T {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(q.Search))

	out := make([]T, 0, len(full))
	for _, item := range full {
		if needle != "" && !matchesSearch(folder, item, needle, q.Fields) {
			continue
		}
		if !matchesAll(item, q.Predicates) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesSearch[T any](folder cases.Caser, item T, needle string, fields func(T) []string) bool {
	if fields == nil {
		return false
	}
	for _, f := range fields(item) {
		if strings.Contains(folder.String(f), needle) {
			return true
		}
	}
	return false
}

func matchesAll[T any](item T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p.Match != nil && !p.Match(item) {
			return false
		}
	}
	return true
}
