package domain

import (
	"context"
)

// AuthRepository signs users in and manages their own account
type AuthRepository interface {
	// Login exchanges credentials for a token via the OAuth2 password grant
	Login(ctx context.Context, username, password string) (*Token, error)

	// CurrentUser returns the signed-in account
	CurrentUser(ctx context.Context) (*User, error)

	// UpdateProfile edits the signed-in account
	UpdateProfile(ctx context.Context, in ProfileInput) (*User, error)

	// Register creates a citizen account without a token
	Register(ctx context.Context, in AccountInput) (*User, error)
}

// AccountRepository is the admin view of all accounts
type AccountRepository interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, in AccountInput) (*User, error)
	UpdateUser(ctx context.Context, id int64, in AccountUpdate) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// VaccineRepository manages vaccines and their types
type VaccineRepository interface {
	ListVaccines(ctx context.Context) ([]Vaccine, error)
	CreateVaccine(ctx context.Context, in VaccineInput) (*Vaccine, error)
	UpdateVaccine(ctx context.Context, id int64, in VaccineInput) (*Vaccine, error)
	DeleteVaccine(ctx context.Context, id int64) error

	ListVaccineTypes(ctx context.Context) ([]VaccineType, error)
	CreateVaccineType(ctx context.Context, in VaccineTypeInput) (*VaccineType, error)
	UpdateVaccineType(ctx context.Context, id int64, in VaccineTypeInput) (*VaccineType, error)
	DeleteVaccineType(ctx context.Context, id int64) error
}

// SiteRepository manages injection sites
type SiteRepository interface {
	ListSites(ctx context.Context) ([]InjectionSite, error)
	CreateSite(ctx context.Context, in SiteInput) (*InjectionSite, error)
	UpdateSite(ctx context.Context, id int64, in SiteInput) (*InjectionSite, error)
	DeleteSite(ctx context.Context, id int64) error
}

// ScheduleRepository manages vaccination schedules
type ScheduleRepository interface {
	// ListSchedules returns every schedule, or only future ones when upcoming is set
	ListSchedules(ctx context.Context, upcoming bool) ([]Schedule, error)
	CreateSchedule(ctx context.Context, in ScheduleInput) (*Schedule, error)
	UpdateSchedule(ctx context.Context, id int64, in ScheduleInput) (*Schedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
}

// AppointmentRepository covers citizen bookings and staff processing
type AppointmentRepository interface {
	// MyAppointments returns the signed-in citizen's appointments
	MyAppointments(ctx context.Context) ([]Appointment, error)

	// AllAppointments returns every appointment (staff only)
	AllAppointments(ctx context.Context) ([]Appointment, error)

	// Book reserves a slot on a schedule
	Book(ctx context.Context, scheduleID int64) (*Appointment, error)

	// SetReminder enables or disables the reminder on an appointment
	SetReminder(ctx context.Context, id int64, enabled bool) (*Appointment, error)

	// SetStatus updates the confirmed/inoculated flags (staff only)
	SetStatus(ctx context.Context, id int64, status AppointmentStatus) (*Appointment, error)
}

// RecordRepository covers vaccination history and certificates
type RecordRepository interface {
	// MyRecords returns the signed-in citizen's records
	MyRecords(ctx context.Context) ([]Record, error)

	// AllRecords returns every record (staff only)
	AllRecords(ctx context.Context) ([]Record, error)

	// UpdateHealthNote edits a record's health note (staff only)
	UpdateHealthNote(ctx context.Context, id int64, in HealthNoteInput) (*Record, error)

	// Certificate returns the PDF certificate bytes for a record
	Certificate(ctx context.Context, id int64) ([]byte, error)
}

// AssistantRepository talks to the server-side AI assistant
type AssistantRepository interface {
	Messages(ctx context.Context) ([]AIMessage, error)
	CheckQuestion(ctx context.Context, question string) (*QuestionCheck, error)
	Ask(ctx context.Context, message string) (*AIExchange, error)
}

// StatsRepository returns the admin dashboard numbers
type StatsRepository interface {
	Stats(ctx context.Context) (*Stats, error)
}
