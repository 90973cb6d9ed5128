// Package screens wires every list screen of the client: its fetch source,
// sort, search fields, filters, page size and actions.
package screens

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vnma/vaxtui/internal/certificate"
	"github.com/vnma/vaxtui/internal/chat"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
)

// Opener shows a downloaded file to the user
type Opener interface {
	Open(path string) error
}

// Deps is everything the screens talk to
type Deps struct {
	Auth         domain.AuthRepository
	Accounts     domain.AccountRepository
	Vaccines     domain.VaccineRepository
	Sites        domain.SiteRepository
	Schedules    domain.ScheduleRepository
	Appointments domain.AppointmentRepository
	Records      domain.RecordRepository
	Assistant    domain.AssistantRepository
	Stats        domain.StatsRepository

	// Chat is the realtime database; nil disables support chat
	Chat chat.Database

	Certificates *certificate.Downloader
	Opener       Opener

	User     domain.User
	PageSize int // overrides every screen's page size when positive
	Logger   *slog.Logger
	Now      func() time.Time
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) today() domain.Date {
	n := d.now()
	return domain.NewDate(n.Year(), n.Month(), n.Day())
}

func (d Deps) pageSize(screenDefault int) int {
	if d.PageSize > 0 {
		return d.PageSize
	}
	return screenDefault
}

// Page sizes per screen
const (
	largePage = 10
	smallPage = 4
)

// periodFilter splits a dated list into upcoming (today or later) and past
func periodFilter[T domain.Item](l *List[T], d Deps, get func(T) domain.Date) {
	l.filters = append(l.filters, filterDef[T]{
		group:   FilterGroup{Name: "period", Label: "Period"},
		choices: fixed("Upcoming", "Past"),
		build: func(choice string, _ map[string]string) (listing.Predicate[T], error) {
			if choice == "Past" {
				return listing.Before("period", "Past", get, d.today()), nil
			}
			return listing.OnOrAfter("period", "Upcoming", get, d.today()), nil
		},
	})
}

// flagFilter keeps items whose flag is Yes or No
func flagFilter[T domain.Item](l *List[T], name, label string, get func(T) bool) {
	l.filters = append(l.filters, filterDef[T]{
		group:   FilterGroup{Name: name, Label: label},
		choices: fixed("Yes", "No"),
		build: func(choice string, _ map[string]string) (listing.Predicate[T], error) {
			want := choice == "Yes"
			return listing.Flag(name, label+": "+choice, get, want), nil
		},
	})
}

// monthYearFilter asks for a month and/or a year. Blank means any.
func monthYearFilter[T domain.Item](l *List[T], d Deps, get func(T) domain.Date) {
	l.filters = append(l.filters, filterDef[T]{
		group: FilterGroup{
			Name:  "month_year",
			Label: "Month / year",
			Fields: []Field{
				{Key: "month", Label: "Month (1-12)"},
				{Key: "year", Label: "Year"},
			},
		},
		build: func(_ string, values map[string]string) (listing.Predicate[T], error) {
			month, err := intField(values, "month", "Month")
			if err != nil {
				return listing.Predicate[T]{}, err
			}
			year, err := intField(values, "year", "Year")
			if err != nil {
				return listing.Predicate[T]{}, err
			}
			return listing.MonthYear("month_year", get, month, year, d.now())
		},
	})
}

// intField reads an optional integer form value; blank is 0
func intField(values map[string]string, key, label string) (int, error) {
	raw := strings.TrimSpace(values[key])
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(key, label+" must be a number")
	}
	return n, nil
}

func idField(values map[string]string, key, label string) (int64, error) {
	raw := strings.TrimSpace(values[key])
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Invalid(key, label+" must be a number")
	}
	return n, nil
}

func text(values map[string]string, key string) string {
	return strings.TrimSpace(values[key])
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

var yesNoOptions = []Option{{Label: "Yes", Value: "Yes"}, {Label: "No", Value: "No"}}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
