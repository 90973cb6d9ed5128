package listing

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vnma/vaxtui/internal/domain"
)

// ByText orders items by a string field using locale-aware collation,
// ignoring case.
func ByText[T any](get func(T) string) func(a, b T) int {
	var mu sync.Mutex // collate.Collator is not safe for concurrent use
	c := collate.New(language.Und, collate.IgnoreCase)
	return func(a, b T) int {
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(get(a), get(b))
	}
}

// ByDate orders items chronologically; zero dates sort first
func ByDate[T any](get func(T) domain.Date) func(a, b T) int {
	return func(a, b T) int {
		return get(a).Compare(get(b).Time)
	}
}

// Desc reverses an ordering
func Desc[T any](cmp func(a, b T) int) func(a, b T) int {
	return func(a, b T) int { return cmp(b, a) }
}

func equalFold(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	folder := cases.Fold()
	return folder.String(a) == folder.String(b)
}
