package listing

import (
	"fmt"
	"time"

	"github.com/vnma/vaxtui/internal/domain"
)

// MinYear is the earliest year accepted by month/year filters
const MinYear = 1900

// Predicate is a named structured filter condition. Setting a predicate with
// a name that is already active replaces it.
type Predicate[T any] struct {
	Name  string
	Label string // human readable, shown in the filter bar
	Match func(T) bool
}

// Equals keeps items whose attribute equals want, ignoring case.
// An empty want yields a wildcard.
func Equals[T any](name string, get func(T) string, want string) Predicate[T] {
	p := Predicate[T]{Name: name, Label: want}
	if want == "" {
		return p
	}
	p.Match = func(item T) bool {
		return equalFold(get(item), want)
	}
	return p
}

// Flag keeps items whose boolean attribute equals want
func Flag[T any](name, label string, get func(T) bool, want bool) Predicate[T] {
	return Predicate[T]{
		Name:  name,
		Label: label,
		Match: func(item T) bool { return get(item) == want },
	}
}

// DateRange keeps items whose date is in [from, to). A zero bound is open.
func DateRange[T any](name, label string, get func(T) domain.Date, from, to domain.Date) Predicate[T] {
	return Predicate[T]{
		Name:  name,
		Label: label,
		Match: func(item T) bool {
			d := get(item)
			if d.IsZero() {
				return false
			}
			if !from.IsZero() && d.Before(from) {
				return false
			}
			if !to.IsZero() && !d.Before(to) {
				return false
			}
			return true
		},
	}
}

// OnOrAfter keeps items dated on or after day
func OnOrAfter[T any](name, label string, get func(T) domain.Date, day domain.Date) Predicate[T] {
	return DateRange(name, label, get, day, domain.Date{})
}

// Before keeps items dated strictly before day
func Before[T any](name, label string, get func(T) domain.Date, day domain.Date) Predicate[T] {
	return DateRange(name, label, get, domain.Date{}, day)
}

// ValidateMonthYear checks a month/year filter. Zero means "any" for either
// part; a set month must be 1-12 and a set year must be MinYear..now's year.
func ValidateMonthYear(month, year int, now time.Time) error {
	if month != 0 && (month < 1 || month > 12) {
		return domain.Invalid("month", "Month must be between 1 and 12")
	}
	if year != 0 && (year < MinYear || year > now.Year()) {
		return domain.Invalid("year", fmt.Sprintf("Year must be between %d and %d", MinYear, now.Year()))
	}
	return nil
}

// MonthYear keeps items whose date falls in the given month and/or year.
// It returns a validation error, and no predicate, for out of range input.
func MonthYear[T any](name string, get func(T) domain.Date, month, year int, now time.Time) (Predicate[T], error) {
	if err := ValidateMonthYear(month, year, now); err != nil {
		return Predicate[T]{}, err
	}
	p := Predicate[T]{Name: name, Label: monthYearLabel(month, year)}
	if month == 0 && year == 0 {
		return p, nil
	}
	p.Match = func(item T) bool {
		d := get(item)
		if d.IsZero() {
			return false
		}
		if month != 0 && int(d.Month()) != month {
			return false
		}
		if year != 0 && d.Year() != year {
			return false
		}
		return true
	}
	return p, nil
}

func monthYearLabel(month, year int) string {
	switch {
	case month != 0 && year != 0:
		return fmt.Sprintf("%02d/%d", month, year)
	case month != 0:
		return fmt.Sprintf("month %02d", month)
	case year != 0:
		return fmt.Sprintf("%d", year)
	}
	return ""
}
