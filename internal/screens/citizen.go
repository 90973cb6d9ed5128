package screens

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
)

func scheduleDate(s domain.Schedule) domain.Date { return s.Date }

// InjectionSearch lets a citizen find an upcoming session and book it
func InjectionSearch(d Deps) *List[domain.Schedule] {
	var showAll, newestFirst atomic.Bool
	ascending := listing.ByDate(scheduleDate)

	ctrl := listing.New(listing.Config[domain.Schedule]{
		Name: "injection search",
		Fetch: func(ctx context.Context) ([]domain.Schedule, error) {
			return d.Schedules.ListSchedules(ctx, !showAll.Load())
		},
		Compare: ascending,
		Search: func(s domain.Schedule) []string {
			return []string{s.VaccineName, s.VaccineTypeName}
		},
		PageSize: d.pageSize(smallPage),
		Logger:   d.logger(),
	})
	l := newList("Find an injection", ctrl, scheduleColumns, scheduleCells)
	l.searchable = true

	siteName := func(s domain.Schedule) string { return s.SiteName }
	l.choiceFilter("site", "Site", l.distinct(siteName), siteName)
	monthYearFilter(l, d, scheduleDate)

	l.actions = []Action{
		{
			Key:      "b",
			Label:    "book",
			NeedsRow: true,
			Confirm: func(id int64) string {
				s, ok := ctrl.Find(id)
				if !ok {
					return "Book this appointment?"
				}
				return fmt.Sprintf("Book %s on %s at %s?", s.VaccineName, s.Date, s.SiteName)
			},
			Run: func(ctx context.Context, id int64, _ map[string]string) (Result, error) {
				err := ctrl.Mutate(ctx, listing.Mutation[domain.Schedule]{
					Name: "book appointment",
					Check: func() error {
						if s, ok := ctrl.Find(id); ok && s.SlotCount <= 0 {
							return domain.Invalid("slot_count", "This session is fully booked")
						}
						return nil
					},
					Do: func(ctx context.Context) error {
						_, err := d.Appointments.Book(ctx, id)
						return err
					},
				})
				return Result{Notice: "Appointment booked. It will show as confirmed once staff approve it."}, err
			},
		},
		{
			Key:   "o",
			Label: "sort order",
			Run: func(context.Context, int64, map[string]string) (Result, error) {
				desc := !newestFirst.Load()
				newestFirst.Store(desc)
				if desc {
					ctrl.SetCompare(listing.Desc(ascending))
					return Result{Notice: "Latest dates first"}, nil
				}
				ctrl.SetCompare(ascending)
				return Result{Notice: "Earliest dates first"}, nil
			},
		},
		{
			Key:   "a",
			Label: "upcoming / all",
			Run: func(ctx context.Context, _ int64, _ map[string]string) (Result, error) {
				all := !showAll.Load()
				showAll.Store(all)
				if err := ctrl.Fetch(ctx); err != nil {
					return Result{}, err
				}
				if all {
					return Result{Notice: "Showing all sessions"}, nil
				}
				return Result{Notice: "Showing upcoming sessions"}, nil
			},
		},
	}
	return l
}

func appointmentDate(a domain.Appointment) domain.Date { return a.Schedule.Date }

func appointmentStatus(a domain.Appointment) string {
	switch {
	case a.IsInoculated:
		return "Inoculated"
	case a.IsConfirmed:
		return "Confirmed"
	}
	return "Pending"
}

// MyAppointments lists the citizen's bookings, newest first
func MyAppointments(d Deps) *List[domain.Appointment] {
	ctrl := listing.New(listing.Config[domain.Appointment]{
		Name:     "my appointments",
		Fetch:    d.Appointments.MyAppointments,
		Compare:  listing.Desc(listing.ByDate(appointmentDate)),
		Search:   func(a domain.Appointment) []string { return []string{a.Schedule.VaccineName} },
		PageSize: d.pageSize(smallPage),
		Logger:   d.logger(),
	})
	l := newList("My appointments", ctrl,
		[]Column{{Title: "Date", Width: 10}, {Title: "Vaccine"}, {Title: "Site"}, {Title: "Status", Width: 10}, {Title: "Reminder", Width: 8}},
		func(a domain.Appointment) []string {
			return []string{a.Schedule.Date.String(), a.Schedule.VaccineName, a.Schedule.SiteName, appointmentStatus(a), onOff(a.ReminderEnabled)}
		})
	l.searchable = true
	periodFilter(l, d, appointmentDate)
	return l
}

// Reminders lists confirmed upcoming appointments and toggles their reminders
func Reminders(d Deps) *List[domain.Appointment] {
	ctrl := listing.New(listing.Config[domain.Appointment]{
		Name: "reminders",
		Fetch: func(ctx context.Context) ([]domain.Appointment, error) {
			all, err := d.Appointments.MyAppointments(ctx)
			if err != nil {
				return nil, err
			}
			// Only confirmed appointments still ahead can be reminded of
			today := d.today()
			var out []domain.Appointment
			for _, a := range all {
				if a.IsConfirmed && !a.Schedule.Date.IsZero() && !a.Schedule.Date.Before(today) {
					out = append(out, a)
				}
			}
			return out, nil
		},
		Compare:  listing.ByDate(appointmentDate),
		Search:   func(a domain.Appointment) []string { return []string{a.Schedule.VaccineName} },
		PageSize: d.pageSize(smallPage),
		Logger:   d.logger(),
	})
	l := newList("Reminders", ctrl,
		[]Column{{Title: "Date", Width: 10}, {Title: "Vaccine"}, {Title: "Site"}, {Title: "Reminder", Width: 8}},
		func(a domain.Appointment) []string {
			return []string{a.Schedule.Date.String(), a.Schedule.VaccineName, a.Schedule.SiteName, onOff(a.ReminderEnabled)}
		})
	l.searchable = true

	l.actions = []Action{{
		Key:      "t",
		Label:    "toggle reminder",
		NeedsRow: true,
		Run: func(ctx context.Context, id int64, _ map[string]string) (Result, error) {
			cur, ok := ctrl.Find(id)
			if !ok {
				return Result{}, domain.ErrNotFound
			}
			want := !cur.ReminderEnabled
			err := ctrl.Mutate(ctx, listing.Mutation[domain.Appointment]{
				Name: "toggle reminder",
				Apply: func(ctx context.Context) (domain.Appointment, error) {
					got, err := d.Appointments.SetReminder(ctx, id, want)
					if err != nil {
						return domain.Appointment{}, err
					}
					// The reminder endpoint may answer with only the changed flag
					if got == nil || got.ID == 0 {
						next := cur
						next.ReminderEnabled = want
						return next, nil
					}
					return *got, nil
				},
			})
			return Result{Notice: "Reminder " + onOff(want)}, err
		},
	}}
	return l
}

func recordDate(r domain.Record) domain.Date { return r.InjectionDate }

func recordList(d Deps, name, title string) *List[domain.Record] {
	ctrl := listing.New(listing.Config[domain.Record]{
		Name:     name,
		Fetch:    d.Records.MyRecords,
		Compare:  listing.Desc(listing.ByDate(recordDate)),
		Search:   func(r domain.Record) []string { return []string{r.VaccineName, r.VaccineTypeName} },
		PageSize: d.pageSize(smallPage),
		Logger:   d.logger(),
	})
	l := newList(title, ctrl,
		[]Column{{Title: "Date", Width: 10}, {Title: "Vaccine"}, {Title: "Type", Width: 14}, {Title: "Dose", Width: 4}, {Title: "Health note"}},
		func(r domain.Record) []string {
			return []string{r.InjectionDate.String(), r.VaccineName, r.VaccineTypeName, fmt.Sprint(r.DoseNumber), r.HealthNote}
		})
	l.searchable = true
	monthYearFilter(l, d, recordDate)
	return l
}

// History lists the citizen's administered doses
func History(d Deps) *List[domain.Record] {
	return recordList(d, "history", "Vaccination history")
}

// Certificates lists the citizen's records and downloads their certificates
func Certificates(d Deps) *List[domain.Record] {
	l := recordList(d, "certificates", "Certificates")
	l.actions = []Action{{
		Key:      "enter",
		Label:    "download & open",
		NeedsRow: true,
		Run: func(ctx context.Context, id int64, _ map[string]string) (Result, error) {
			path, reused, err := d.Certificates.Download(ctx, id)
			if err != nil {
				return Result{}, err
			}
			notice := "Certificate saved to " + path
			if reused {
				notice = "Certificate already downloaded: " + path
			}
			if d.Opener != nil {
				if err := d.Opener.Open(path); err != nil {
					d.logger().Warn("failed to open certificate", "path", path, "error", err)
					notice += " (no PDF viewer found)"
				}
			}
			return Result{Notice: notice}, nil
		},
	}}
	return l
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
