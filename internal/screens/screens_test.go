package screens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnma/vaxtui/internal/certificate"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
	"github.com/vnma/vaxtui/internal/realtime"
	"github.com/vnma/vaxtui/internal/store"
)

// backend is an in-memory stand-in for every repository
type backend struct {
	mu sync.Mutex

	users        []domain.User
	schedules    []domain.Schedule
	appointments []domain.Appointment
	records      []domain.Record
	calls        map[string]int
	lastUpcoming bool

	reminderPartial bool
	check           domain.QuestionCheck
}

func newBackend() *backend { return &backend{calls: map[string]int{}} }

func (b *backend) hit(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
}

func (b *backend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *backend) Login(context.Context, string, string) (*domain.Token, error) { return nil, nil }
func (b *backend) CurrentUser(context.Context) (*domain.User, error) {
	return &domain.User{ID: 1, Username: "lan"}, nil
}
func (b *backend) UpdateProfile(_ context.Context, in domain.ProfileInput) (*domain.User, error) {
	b.hit("UpdateProfile")
	return &domain.User{ID: 1, Username: "lan", FirstName: in.FirstName}, nil
}
func (b *backend) Register(context.Context, domain.AccountInput) (*domain.User, error) { return nil, nil }

func (b *backend) ListUsers(context.Context) ([]domain.User, error) {
	b.hit("ListUsers")
	return b.users, nil
}
func (b *backend) CreateUser(context.Context, domain.AccountInput) (*domain.User, error) {
	b.hit("CreateUser")
	return &domain.User{}, nil
}
func (b *backend) UpdateUser(context.Context, int64, domain.AccountUpdate) (*domain.User, error) {
	return &domain.User{}, nil
}
func (b *backend) DeleteUser(context.Context, int64) error { return nil }

func (b *backend) ListVaccines(context.Context) ([]domain.Vaccine, error) { return nil, nil }
func (b *backend) CreateVaccine(context.Context, domain.VaccineInput) (*domain.Vaccine, error) {
	return nil, nil
}
func (b *backend) UpdateVaccine(context.Context, int64, domain.VaccineInput) (*domain.Vaccine, error) {
	return nil, nil
}
func (b *backend) DeleteVaccine(context.Context, int64) error { return nil }
func (b *backend) ListVaccineTypes(context.Context) ([]domain.VaccineType, error) {
	return nil, nil
}
func (b *backend) CreateVaccineType(context.Context, domain.VaccineTypeInput) (*domain.VaccineType, error) {
	return nil, nil
}
func (b *backend) UpdateVaccineType(context.Context, int64, domain.VaccineTypeInput) (*domain.VaccineType, error) {
	return nil, nil
}
func (b *backend) DeleteVaccineType(context.Context, int64) error { return nil }

func (b *backend) ListSites(context.Context) ([]domain.InjectionSite, error) { return nil, nil }
func (b *backend) CreateSite(context.Context, domain.SiteInput) (*domain.InjectionSite, error) {
	return nil, nil
}
func (b *backend) UpdateSite(context.Context, int64, domain.SiteInput) (*domain.InjectionSite, error) {
	return nil, nil
}
func (b *backend) DeleteSite(context.Context, int64) error { return nil }

func (b *backend) ListSchedules(_ context.Context, upcoming bool) ([]domain.Schedule, error) {
	b.hit("ListSchedules")
	b.mu.Lock()
	b.lastUpcoming = upcoming
	b.mu.Unlock()
	return b.schedules, nil
}
func (b *backend) CreateSchedule(context.Context, domain.ScheduleInput) (*domain.Schedule, error) {
	b.hit("CreateSchedule")
	return nil, nil
}
func (b *backend) UpdateSchedule(context.Context, int64, domain.ScheduleInput) (*domain.Schedule, error) {
	return nil, nil
}
func (b *backend) DeleteSchedule(context.Context, int64) error { return nil }

func (b *backend) MyAppointments(context.Context) ([]domain.Appointment, error) {
	b.hit("MyAppointments")
	return b.appointments, nil
}
func (b *backend) AllAppointments(context.Context) ([]domain.Appointment, error) {
	b.hit("AllAppointments")
	return b.appointments, nil
}
func (b *backend) Book(context.Context, int64) (*domain.Appointment, error) {
	b.hit("Book")
	return &domain.Appointment{ID: 99}, nil
}
func (b *backend) SetReminder(_ context.Context, id int64, enabled bool) (*domain.Appointment, error) {
	b.hit("SetReminder")
	if b.reminderPartial {
		return &domain.Appointment{ReminderEnabled: enabled}, nil
	}
	return &domain.Appointment{ID: id, ReminderEnabled: enabled, IsConfirmed: true}, nil
}
func (b *backend) SetStatus(_ context.Context, id int64, s domain.AppointmentStatus) (*domain.Appointment, error) {
	b.hit("SetStatus")
	return &domain.Appointment{ID: id, IsConfirmed: s.IsConfirmed, IsInoculated: s.IsInoculated}, nil
}

func (b *backend) MyRecords(context.Context) ([]domain.Record, error) {
	b.hit("MyRecords")
	return b.records, nil
}
func (b *backend) AllRecords(context.Context) ([]domain.Record, error) { return b.records, nil }
func (b *backend) UpdateHealthNote(context.Context, int64, domain.HealthNoteInput) (*domain.Record, error) {
	b.hit("UpdateHealthNote")
	return &domain.Record{}, nil
}
func (b *backend) Certificate(context.Context, int64) ([]byte, error) {
	b.hit("Certificate")
	return []byte("%PDF-1.4\n"), nil
}

func (b *backend) Messages(context.Context) ([]domain.AIMessage, error) {
	return []domain.AIMessage{
		{ID: 2, Text: "answer", Timestamp: "2026-01-01T10:00:01Z"},
		{ID: 1, Text: "question", IsUser: true, Timestamp: "2026-01-01T10:00:00Z"},
	}, nil
}
func (b *backend) CheckQuestion(context.Context, string) (*domain.QuestionCheck, error) {
	b.hit("CheckQuestion")
	return &b.check, nil
}
func (b *backend) Ask(_ context.Context, msg string) (*domain.AIExchange, error) {
	b.hit("Ask")
	return &domain.AIExchange{
		UserMessage: domain.AIMessage{ID: 10, Text: msg, IsUser: true},
		AIResponse:  domain.AIMessage{ID: 11, Text: "Yes"},
	}, nil
}

func (b *backend) Stats(context.Context) (*domain.Stats, error) {
	return &domain.Stats{PopularVaccines: []domain.VaccineCount{{Name: "A", Count: 1}, {Name: "B", Count: 5}}}, nil
}

type recordingOpener struct{ paths []string }

func (o *recordingOpener) Open(path string) error {
	o.paths = append(o.paths, path)
	return nil
}

var now = time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

func deps(b *backend) Deps {
	return Deps{
		Auth: b, Accounts: b, Vaccines: b, Sites: b, Schedules: b,
		Appointments: b, Records: b, Assistant: b, Stats: b,
		Now: func() time.Time { return now },
	}
}

func day(y int, m time.Month, d int) domain.Date { return domain.NewDate(y, m, d) }

func actionByKey(t *testing.T, v View, key string) Action {
	t.Helper()
	for _, a := range v.Actions() {
		if a.Key == key {
			return a
		}
	}
	t.Fatalf("no action %q", key)
	return Action{}
}

func TestMenu(t *testing.T) {
	ids := func(entries []Entry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.ID
		}
		return out
	}

	t.Run("Should give each role its own screens", func(t *testing.T) {
		admin := ids(Menu(domain.RoleAdmin, true))
		assert.Contains(t, admin, "accounts")
		assert.Contains(t, admin, "stats")
		assert.NotContains(t, admin, "search")

		staff := ids(Menu(domain.RoleStaff, true))
		assert.Contains(t, staff, "appointments")
		assert.Contains(t, staff, "inbox")

		citizen := ids(Menu(domain.RoleCitizen, true))
		assert.Contains(t, citizen, "search")
		assert.Contains(t, citizen, "contact")
		assert.Contains(t, citizen, "assistant")

		for _, m := range [][]string{admin, staff, citizen} {
			assert.Equal(t, "profile", m[len(m)-1])
		}
	})

	t.Run("Should hide chat without a realtime database", func(t *testing.T) {
		assert.NotContains(t, ids(Menu(domain.RoleStaff, false)), "inbox")
		assert.NotContains(t, ids(Menu(domain.RoleCitizen, false)), "contact")
	})

	t.Run("Should build every list entry", func(t *testing.T) {
		d := deps(newBackend())
		for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleStaff, domain.RoleCitizen} {
			for _, e := range Menu(role, false) {
				if e.Kind == KindList {
					assert.NotEmpty(t, e.List(d).Title(), e.ID)
				}
			}
		}
	})
}

func TestInjectionSearch(t *testing.T) {
	ctx := context.Background()
	sched := func(id int64, d domain.Date, site string, slots int) domain.Schedule {
		return domain.Schedule{ID: id, VaccineName: "Flu", VaccineTypeName: "Influenza", SiteName: site, Date: d, SlotCount: slots}
	}

	t.Run("Should list upcoming sessions by date with derived site choices", func(t *testing.T) {
		b := newBackend()
		b.schedules = []domain.Schedule{
			sched(1, day(2026, 7, 2), "North", 5),
			sched(2, day(2026, 6, 20), "South", 5),
			sched(3, day(2026, 8, 1), "North", 5),
		}
		v := InjectionSearch(deps(b))
		require.NoError(t, v.Fetch(ctx))

		assert.True(t, b.lastUpcoming)
		rows := v.Rows()
		require.Len(t, rows, 3)
		assert.Equal(t, []int64{2, 1, 3}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})
		assert.Equal(t, []string{AnyChoice, "North", "South"}, v.Filters()[0].Choices)

		require.NoError(t, v.ApplyFilter("site", "North", nil))
		assert.Len(t, v.Rows(), 2)
		assert.Equal(t, []string{"Site: North"}, v.ActiveFilters())

		require.NoError(t, v.ApplyFilter("site", AnyChoice, nil))
		assert.Len(t, v.Rows(), 3)
	})

	t.Run("Should reject an out of range month", func(t *testing.T) {
		b := newBackend()
		v := InjectionSearch(deps(b))
		require.NoError(t, v.Fetch(ctx))

		err := v.ApplyFilter("month_year", "", map[string]string{"month": "13"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		err = v.ApplyFilter("month_year", "", map[string]string{"month": "x"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, v.ActiveFilters())
	})

	t.Run("Should filter by month and year", func(t *testing.T) {
		b := newBackend()
		b.schedules = []domain.Schedule{
			sched(1, day(2026, 7, 2), "North", 5),
			sched(2, day(2026, 6, 20), "South", 5),
		}
		v := InjectionSearch(deps(b))
		require.NoError(t, v.Fetch(ctx))

		require.NoError(t, v.ApplyFilter("month_year", "", map[string]string{"month": "7", "year": "2026"}))
		rows := v.Rows()
		require.Len(t, rows, 1)
		assert.Equal(t, int64(1), rows[0].ID)
	})

	t.Run("Should book then refetch, and refuse a full session", func(t *testing.T) {
		b := newBackend()
		b.schedules = []domain.Schedule{sched(1, day(2026, 7, 2), "North", 5), sched(2, day(2026, 7, 3), "North", 0)}
		v := InjectionSearch(deps(b))
		require.NoError(t, v.Fetch(ctx))
		book := actionByKey(t, v, "b")

		assert.Contains(t, book.Confirm(1), "Book Flu on 2026-07-02 at North?")
		_, err := book.Run(ctx, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, b.count("Book"))
		assert.Equal(t, 2, b.count("ListSchedules"))

		_, err = book.Run(ctx, 2, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 1, b.count("Book"))
	})

	t.Run("Should flip sort order and source", func(t *testing.T) {
		b := newBackend()
		b.schedules = []domain.Schedule{sched(1, day(2026, 7, 2), "N", 1), sched(2, day(2026, 7, 9), "N", 1)}
		v := InjectionSearch(deps(b))
		require.NoError(t, v.Fetch(ctx))

		_, err := actionByKey(t, v, "o").Run(ctx, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v.Rows()[0].ID)

		_, err = actionByKey(t, v, "a").Run(ctx, 0, nil)
		require.NoError(t, err)
		assert.False(t, b.lastUpcoming)
	})
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	appt := func(id int64, d domain.Date, confirmed bool) domain.Appointment {
		return domain.Appointment{ID: id, IsConfirmed: confirmed, Schedule: domain.Schedule{VaccineName: "Flu", Date: d}}
	}

	t.Run("Should only list confirmed upcoming appointments", func(t *testing.T) {
		b := newBackend()
		b.appointments = []domain.Appointment{
			appt(1, day(2026, 7, 1), true),
			appt(2, day(2026, 7, 1), false),
			appt(3, day(2026, 5, 1), true),
			appt(4, day(2026, 6, 15), true),
		}
		v := Reminders(deps(b))
		require.NoError(t, v.Fetch(ctx))
		rows := v.Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, int64(4), rows[0].ID)
		assert.Equal(t, int64(1), rows[1].ID)
	})

	t.Run("Should patch a partial reminder response without refetching", func(t *testing.T) {
		b := newBackend()
		b.reminderPartial = true
		b.appointments = []domain.Appointment{appt(1, day(2026, 7, 1), true)}
		v := Reminders(deps(b))
		require.NoError(t, v.Fetch(ctx))

		res, err := actionByKey(t, v, "t").Run(ctx, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, "Reminder on", res.Notice)
		assert.Equal(t, 1, b.count("MyAppointments"))
		assert.Equal(t, "on", v.Rows()[0].Cells[3])
		assert.Equal(t, "Flu", v.Rows()[0].Cells[1])
	})
}

func TestAppointmentManagement(t *testing.T) {
	ctx := context.Background()

	t.Run("Should not inoculate before confirming", func(t *testing.T) {
		b := newBackend()
		b.appointments = []domain.Appointment{{ID: 1, User: &domain.User{FirstName: "An", LastName: "Le"}}}
		v := AppointmentManagement(deps(b))
		require.NoError(t, v.Fetch(ctx))

		_, err := actionByKey(t, v, "i").Run(ctx, 1, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, b.count("SetStatus"))

		_, err = actionByKey(t, v, "c").Run(ctx, 1, nil)
		require.NoError(t, err)
		_, err = actionByKey(t, v, "i").Run(ctx, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, b.count("SetStatus"))
		assert.Equal(t, []string{"Yes", "Yes"}, v.Rows()[0].Cells[4:])
	})

	t.Run("Should search by id and patient name", func(t *testing.T) {
		b := newBackend()
		b.appointments = []domain.Appointment{
			{ID: 17, User: &domain.User{FirstName: "An"}},
			{ID: 2, User: &domain.User{FirstName: "Binh"}},
		}
		v := AppointmentManagement(deps(b))
		require.NoError(t, v.Fetch(ctx))

		v.SetSearch("17")
		assert.Len(t, v.Rows(), 1)
		v.SetSearch("binh")
		assert.Len(t, v.Rows(), 1)
	})

	t.Run("Should reject the inconsistent status", func(t *testing.T) {
		assert.Error(t, AppointmentStatusCheck(domain.AppointmentStatus{IsInoculated: true}))
		assert.NoError(t, AppointmentStatusCheck(domain.AppointmentStatus{IsConfirmed: true, IsInoculated: true}))
	})
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("Should block a create with mismatched passwords", func(t *testing.T) {
		b := newBackend()
		v := Accounts(deps(b))
		require.NoError(t, v.Fetch(ctx))

		_, err := actionByKey(t, v, "n").Run(ctx, 0, map[string]string{
			"username": "newuser", "email": "a@b.co", "password": "secret1", "confirm": "secret2",
			"first_name": "A", "last_name": "B", "role": "citizen",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Passwords do not match", err.Error())
		assert.Zero(t, b.count("CreateUser"))
	})

	t.Run("Should filter by role", func(t *testing.T) {
		b := newBackend()
		b.users = []domain.User{
			{ID: 1, Username: "root", IsStaff: true, IsSuperuser: true},
			{ID: 2, Username: "nurse", IsStaff: true},
			{ID: 3, Username: "lan"},
		}
		v := Accounts(deps(b))
		require.NoError(t, v.Fetch(ctx))

		require.NoError(t, v.ApplyFilter("role", "Staff", nil))
		rows := v.Rows()
		require.Len(t, rows, 1)
		assert.Equal(t, "nurse", rows[0].Cells[0])
	})

	t.Run("Should name the item in the delete prompt", func(t *testing.T) {
		b := newBackend()
		b.users = []domain.User{{ID: 3, Username: "lan"}}
		v := Accounts(deps(b))
		require.NoError(t, v.Fetch(ctx))
		assert.Equal(t, `Delete account "lan"? This cannot be undone.`, actionByKey(t, v, "d").Confirm(3))
	})
}

func TestSchedulesForm(t *testing.T) {
	t.Run("Should reject a non numeric slot count before sending", func(t *testing.T) {
		b := newBackend()
		v := Schedules(deps(b))
		_, err := actionByKey(t, v, "n").Run(context.Background(), 0, map[string]string{
			"vaccine_id": "1", "site_id": "2", "date": "2026-07-01", "slot_count": "many",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, b.count("CreateSchedule"))
	})

	t.Run("Should reject a malformed date", func(t *testing.T) {
		b := newBackend()
		v := Schedules(deps(b))
		_, err := actionByKey(t, v, "n").Run(context.Background(), 0, map[string]string{
			"vaccine_id": "1", "site_id": "2", "date": "01/07/2026", "slot_count": "3",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, b.count("CreateSchedule"))
	})
}

func TestCertificates(t *testing.T) {
	t.Run("Should download once and open the file each time", func(t *testing.T) {
		b := newBackend()
		b.records = []domain.Record{{ID: 4, VaccineName: "Flu", InjectionDate: day(2026, 1, 2)}}
		idx, err := store.NewSessionStore("", "")
		require.NoError(t, err)
		opener := &recordingOpener{}
		d := deps(b)
		d.Certificates = certificate.NewDownloader(b, idx, t.TempDir(), nil)
		d.Opener = opener

		v := Certificates(d)
		require.NoError(t, v.Fetch(context.Background()))
		open := actionByKey(t, v, "enter")

		res, err := open.Run(context.Background(), 4, nil)
		require.NoError(t, err)
		assert.Contains(t, res.Notice, "vaccination_certificate_4.pdf")
		res, err = open.Run(context.Background(), 4, nil)
		require.NoError(t, err)
		assert.Contains(t, res.Notice, "already downloaded")

		assert.Equal(t, 1, b.count("Certificate"))
		assert.Len(t, opener.paths, 2)
	})
}

func TestAssistant(t *testing.T) {
	ctx := context.Background()

	t.Run("Should order history and answer in-scope questions", func(t *testing.T) {
		b := newBackend()
		b.check = domain.QuestionCheck{Allowed: true}
		a := NewAssistant(deps(b))
		require.NoError(t, a.Load(ctx))
		assert.Equal(t, "question", a.Messages()[0].Text)

		require.NoError(t, a.Ask(ctx, " Is it safe? "))
		msgs := a.Messages()
		require.Len(t, msgs, 4)
		assert.Equal(t, "Is it safe?", msgs[2].Text)
		assert.Equal(t, "Yes", msgs[3].Text)
	})

	t.Run("Should answer off-topic questions locally", func(t *testing.T) {
		b := newBackend()
		b.check = domain.QuestionCheck{Allowed: false}
		a := NewAssistant(deps(b))

		require.NoError(t, a.Ask(ctx, "Who won the match?"))
		msgs := a.Messages()
		require.Len(t, msgs, 2)
		assert.True(t, msgs[0].IsUser)
		assert.Equal(t, defaultOffTopic, msgs[1].Text)
		assert.Negative(t, msgs[1].ID)
		assert.Zero(t, b.count("Ask"))
	})

	t.Run("Should refuse a blank question", func(t *testing.T) {
		a := NewAssistant(deps(newBackend()))
		assert.ErrorIs(t, a.Ask(ctx, "  "), domain.ErrValidation)
	})
}

func TestProfile(t *testing.T) {
	t.Run("Should validate before updating", func(t *testing.T) {
		b := newBackend()
		p := NewProfile(deps(b))

		err := p.Save(context.Background(), map[string]string{"email": "not-an-email"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, b.count("UpdateProfile"))

		require.NoError(t, p.Save(context.Background(), map[string]string{"first_name": "Lan"}))
		assert.Equal(t, "Lan", p.User().FirstName)
	})
}

func TestStats(t *testing.T) {
	t.Run("Should rank vaccines by count", func(t *testing.T) {
		s, err := Stats(context.Background(), deps(newBackend()))
		require.NoError(t, err)
		assert.Equal(t, "B", s.PopularVaccines[0].Name)
	})
}

// staticDB serves a fixed inbox
type staticDB struct{ raw string }

func (s staticDB) Subscribe(_ context.Context, path string, fn func(realtime.Snapshot)) (realtime.Unsubscribe, error) {
	fn(realtime.Snapshot{Path: path, Raw: []byte(s.raw)})
	return func() {}, nil
}
func (staticDB) Get(context.Context, string, any) error { return nil }
func (staticDB) Push(context.Context, string, any) (string, error) {
	return "", errors.New("read only")
}
func (staticDB) Update(context.Context, string, map[string]any) error { return errors.New("read only") }

func TestInbox(t *testing.T) {
	t.Run("Should list conversations newest first and open one", func(t *testing.T) {
		d := deps(newBackend())
		d.Chat = staticDB{raw: `{
			"-a": {"user_id": 1, "user_name": "an", "last_message": "hi", "timestamp": 100},
			"-b": {"user_id": 2, "user_name": "binh", "last_message": "hello", "timestamp": 200}
		}`}
		v := Inbox(d)

		notified := 0
		_, err := v.Watch(context.Background(), func() { notified++ })
		require.NoError(t, err)
		require.NoError(t, v.Fetch(context.Background()))
		assert.Equal(t, 1, notified)

		rows := v.Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, "binh", rows[0].Cells[0])

		res, err := actionByKey(t, v, "enter").Run(context.Background(), 1, nil)
		require.NoError(t, err)
		require.NotNil(t, res.Chat)
		assert.Equal(t, "an", res.Chat.UserName)
		assert.True(t, res.Chat.Staff)
	})
}

func TestListState(t *testing.T) {
	t.Run("Should surface fetch failures", func(t *testing.T) {
		d := deps(newBackend())
		d.Accounts = failingAccounts{}
		v := Accounts(d)
		assert.Error(t, v.Fetch(context.Background()))
		assert.Equal(t, listing.StateError, v.State())
		assert.Empty(t, v.Rows())
	})
}

type failingAccounts struct{ domain.AccountRepository }

func (failingAccounts) ListUsers(context.Context) ([]domain.User, error) {
	return nil, &domain.APIError{Kind: domain.ErrNetwork}
}
