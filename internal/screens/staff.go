package screens

import (
	"cmp"
	"context"
	"time"

	"github.com/vnma/vaxtui/internal/chat"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
	"github.com/vnma/vaxtui/internal/realtime"
)

func patientFirst(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.FirstName
}

func patientLast(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.LastName
}

// AppointmentStatusCheck enforces that only confirmed appointments can be
// inoculated, and that inoculated ones stay confirmed.
func AppointmentStatusCheck(next domain.AppointmentStatus) error {
	if next.IsInoculated && !next.IsConfirmed {
		return domain.Invalid("is_inoculated", "Confirm the appointment before marking it inoculated")
	}
	return nil
}

// AppointmentManagement lets staff confirm appointments and mark inoculations
func AppointmentManagement(d Deps) *List[domain.Appointment] {
	ctrl := listing.New(listing.Config[domain.Appointment]{
		Name:    "appointment management",
		Fetch:   d.Appointments.AllAppointments,
		Compare: listing.ByDate(appointmentDate),
		Search: func(a domain.Appointment) []string {
			return []string{itoa(a.ID), patientFirst(a.User), patientLast(a.User)}
		},
		PageSize: d.pageSize(largePage),
		Logger:   d.logger(),
	})
	l := newList("Appointments", ctrl,
		[]Column{{Title: "ID", Width: 6}, {Title: "Patient"}, {Title: "Vaccine"}, {Title: "Date", Width: 10}, {Title: "Confirmed", Width: 9}, {Title: "Inoculated", Width: 10}},
		func(a domain.Appointment) []string {
			return []string{itoa(a.ID), a.PatientName(), a.Schedule.VaccineName, a.Schedule.Date.String(), yesNo(a.IsConfirmed), yesNo(a.IsInoculated)}
		})
	l.searchable = true
	flagFilter(l, "confirmed", "Confirmed", func(a domain.Appointment) bool { return a.IsConfirmed })
	flagFilter(l, "inoculated", "Inoculated", func(a domain.Appointment) bool { return a.IsInoculated })

	toggle := func(name string, flip func(*domain.AppointmentStatus)) func(context.Context, int64, map[string]string) (Result, error) {
		return func(ctx context.Context, id int64, _ map[string]string) (Result, error) {
			cur, ok := ctrl.Find(id)
			if !ok {
				return Result{}, domain.ErrNotFound
			}
			next := domain.AppointmentStatus{IsConfirmed: cur.IsConfirmed, IsInoculated: cur.IsInoculated}
			flip(&next)
			err := ctrl.Mutate(ctx, listing.Mutation[domain.Appointment]{
				Name:  name,
				Check: func() error { return AppointmentStatusCheck(next) },
				Apply: func(ctx context.Context) (domain.Appointment, error) {
					got, err := d.Appointments.SetStatus(ctx, id, next)
					if err != nil {
						return domain.Appointment{}, err
					}
					if got == nil || got.ID == 0 {
						patched := cur
						patched.IsConfirmed, patched.IsInoculated = next.IsConfirmed, next.IsInoculated
						return patched, nil
					}
					return *got, nil
				},
			})
			return Result{Notice: "Appointment #" + itoa(id) + " updated"}, err
		}
	}

	l.actions = []Action{
		{
			Key:      "c",
			Label:    "toggle confirmed",
			NeedsRow: true,
			Run:      toggle("toggle confirmed", func(s *domain.AppointmentStatus) { s.IsConfirmed = !s.IsConfirmed }),
		},
		{
			Key:      "i",
			Label:    "toggle inoculated",
			NeedsRow: true,
			Run:      toggle("toggle inoculated", func(s *domain.AppointmentStatus) { s.IsInoculated = !s.IsInoculated }),
		},
	}
	return l
}

// HealthNotes lets staff record post-injection observations
func HealthNotes(d Deps) *List[domain.Record] {
	ctrl := listing.New(listing.Config[domain.Record]{
		Name:    "health notes",
		Fetch:   d.Records.AllRecords,
		Compare: listing.Desc(listing.ByDate(recordDate)),
		Search: func(r domain.Record) []string {
			return []string{itoa(r.ID), r.Username, patientFirst(r.User), patientLast(r.User)}
		},
		PageSize: d.pageSize(smallPage),
		Logger:   d.logger(),
	})
	l := newList("Health notes", ctrl,
		[]Column{{Title: "ID", Width: 6}, {Title: "Patient", Width: 20}, {Title: "Vaccine", Width: 18}, {Title: "Date", Width: 10}, {Title: "Health note"}},
		func(r domain.Record) []string {
			return []string{itoa(r.ID), r.PatientName(), r.VaccineName, r.InjectionDate.String(), r.HealthNote}
		})
	l.searchable = true

	l.actions = []Action{{
		Key:      "e",
		Label:    "edit note",
		NeedsRow: true,
		Form: func(_ context.Context, id int64) (Form, error) {
			r, ok := ctrl.Find(id)
			if !ok {
				return Form{}, domain.ErrNotFound
			}
			return Form{Title: "Health note for " + r.PatientName(), Fields: []Field{
				{Key: "health_note", Label: "Note", Value: r.HealthNote},
			}}, nil
		},
		Confirm: func(id int64) string {
			return "Save the health note for record #" + itoa(id) + "?"
		},
		Run: func(ctx context.Context, id int64, v map[string]string) (Result, error) {
			in := domain.HealthNoteInput{HealthNote: text(v, "health_note")}
			err := ctrl.Mutate(ctx, listing.Mutation[domain.Record]{
				Name:  "update health note",
				Input: in,
				Do: func(ctx context.Context) error {
					_, err := d.Records.UpdateHealthNote(ctx, id, in)
					return err
				},
			})
			return Result{Notice: "Health note saved"}, err
		},
	}}
	return l
}

// Inbox lists support conversations for staff, most recent first
func Inbox(d Deps) *List[domain.ChatSummary] {
	inbox := chat.NewInbox(d.Chat, d.logger())
	ctrl := listing.New(listing.Config[domain.ChatSummary]{
		Name:  "support inbox",
		Fetch: inbox.Fetch,
		Compare: func(a, b domain.ChatSummary) int {
			return cmp.Compare(b.Timestamp, a.Timestamp)
		},
		Search:   func(c domain.ChatSummary) []string { return []string{c.UserName} },
		PageSize: d.pageSize(largePage),
		Logger:   d.logger(),
	})
	l := newList("Support inbox", ctrl,
		[]Column{{Title: "User", Width: 18}, {Title: "Last message"}, {Title: "When", Width: 16}},
		func(c domain.ChatSummary) []string {
			when := ""
			if c.Timestamp > 0 {
				when = time.UnixMilli(c.Timestamp).Format("2006-01-02 15:04")
			}
			return []string{c.UserName, c.LastMessage, when}
		})
	l.searchable = true
	l.watch = func(ctx context.Context, notify func()) (realtime.Unsubscribe, error) {
		return inbox.Open(ctx, notify)
	}

	l.actions = []Action{{
		Key:      "enter",
		Label:    "open chat",
		NeedsRow: true,
		Run: func(_ context.Context, id int64, _ map[string]string) (Result, error) {
			c, ok := ctrl.Find(id)
			if !ok {
				return Result{}, domain.ErrNotFound
			}
			return Result{Chat: &chat.Participant{UserID: c.UserID, UserName: c.UserName, Staff: true}}, nil
		},
	}}
	return l
}
