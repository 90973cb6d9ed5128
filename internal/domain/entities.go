package domain

import (
	"fmt"
	"strings"
)

// Role determines which home menu and which screens a user can reach
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Gender codes accepted by the backend
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// User is an account on the vaccination service
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CitizenID   string `json:"citizen_id,omitempty"`
	BirthDate   Date   `json:"birth_date,omitempty"`
	Gender      string `json:"gender,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    bool   `json:"is_active"`
}

func (u User) GetID() int64 { return u.ID }

func (u User) GetTitle() string { return u.Username }

// Role derives the client role from the account flags
func (u User) Role() Role {
	switch {
	case u.IsSuperuser:
		return RoleAdmin
	case u.IsStaff:
		return RoleStaff
	default:
		return RoleCitizen
	}
}

// FullName joins first and last name, falling back to the username
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// VaccineType groups vaccines (e.g. "Influenza", "COVID-19")
type VaccineType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (t VaccineType) GetID() int64     { return t.ID }
func (t VaccineType) GetTitle() string { return t.Name }

// VaccineStatus is the approval state of a vaccine
type VaccineStatus string

const (
	VaccineActive          VaccineStatus = "Active"
	VaccineDiscontinued    VaccineStatus = "Discontinued"
	VaccinePendingApproval VaccineStatus = "Pending Approval"
	VaccineExpired         VaccineStatus = "Expired"
)

// VaccineStatuses lists every status in display order
var VaccineStatuses = []VaccineStatus{VaccineActive, VaccinePendingApproval, VaccineDiscontinued, VaccineExpired}

// Vaccine is a vaccine product offered by the service
type Vaccine struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type,omitempty"`
	Manufacturer string        `json:"manufacturer,omitempty"`
	DoseCount    int           `json:"dose_count,omitempty"`
	DoseInterval int           `json:"dose_interval,omitempty"` // days between doses
	AgeGroup     string        `json:"age_group,omitempty"`
	Description  string        `json:"description,omitempty"`
	ApprovedDate Date          `json:"approved_date,omitempty"`
	Status       VaccineStatus `json:"status,omitempty"`
}

func (v Vaccine) GetID() int64     { return v.ID }
func (v Vaccine) GetTitle() string { return v.Name }

// InjectionSite is a physical location where doses are administered
type InjectionSite struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (s InjectionSite) GetID() int64     { return s.ID }
func (s InjectionSite) GetTitle() string { return s.Name }

// Schedule is a vaccination session: one vaccine, one site, one day, N slots
type Schedule struct {
	ID              int64  `json:"id"`
	VaccineID       int64  `json:"vaccine_id,omitempty"`
	VaccineName     string `json:"vaccine_name"`
	VaccineTypeName string `json:"vaccine_type_name"`
	SiteID          int64  `json:"site_id,omitempty"`
	SiteName        string `json:"site_name"`
	Date            Date   `json:"date"`
	SlotCount       int    `json:"slot_count"`
}

func (s Schedule) GetID() int64 { return s.ID }

func (s Schedule) GetTitle() string {
	return fmt.Sprintf("%s @ %s", s.VaccineName, s.SiteName)
}

// Appointment is a citizen's booking for a schedule
type Appointment struct {
	ID              int64    `json:"id"`
	User            *User    `json:"user,omitempty"`
	Schedule        Schedule `json:"schedule"`
	ReminderEnabled bool     `json:"reminder_enabled"`
	IsConfirmed     bool     `json:"is_confirmed"`
	IsInoculated    bool     `json:"is_inoculated"`
}

func (a Appointment) GetID() int64     { return a.ID }
func (a Appointment) GetTitle() string { return a.Schedule.VaccineName }

// PatientName returns the booked user's display name, if the user was embedded
func (a Appointment) PatientName() string {
	if a.User == nil {
		return ""
	}
	return a.User.FullName()
}

// Record is an administered dose
type Record struct {
	ID              int64  `json:"id"`
	Username        string `json:"username,omitempty"`
	User            *User  `json:"user,omitempty"`
	VaccineName     string `json:"vaccine_name"`
	VaccineTypeName string `json:"vaccine_type_name"`
	DoseNumber      int    `json:"dose_number"`
	InjectionDate   Date   `json:"injection_date"`
	SiteName        string `json:"site_name,omitempty"`
	HealthNote      string `json:"health_note"`
}

func (r Record) GetID() int64     { return r.ID }
func (r Record) GetTitle() string { return r.VaccineName }

// PatientName returns the vaccinated user's display name
func (r Record) PatientName() string {
	if r.User != nil {
		return r.User.FullName()
	}
	return r.Username
}

// AIMessage is one line of the assistant conversation
type AIMessage struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsUser    bool   `json:"is_user"`
	Timestamp string `json:"timestamp"`
}

func (m AIMessage) GetID() int64     { return m.ID }
func (m AIMessage) GetTitle() string { return m.Text }

// QuestionCheck is the assistant's verdict on whether a question is in scope
type QuestionCheck struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message"`
}

// AIExchange is a question and its answer, both persisted server side
type AIExchange struct {
	UserMessage AIMessage `json:"user_message"`
	AIResponse  AIMessage `json:"ai_response"`
}

// VaccineCount is a vaccine with its administered dose count
type VaccineCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats is the admin dashboard summary
type Stats struct {
	TotalVaccinated int            `json:"total_vaccinated"`
	CompletionRate  float64        `json:"completion_rate"`
	PopularVaccines []VaccineCount `json:"popular_vaccines"`
}

// ChatMessage is a message in a realtime support conversation
type ChatMessage struct {
	Key       string `json:"-"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	IsUser    bool   `json:"is_user"`
}

// ChatSummary is the staff inbox entry for one conversation
type ChatSummary struct {
	ChatID      string `json:"-"`
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	LastMessage string `json:"last_message"`
	Timestamp   int64  `json:"timestamp"`
}

// GetID keys inbox entries by the chatting user
func (c ChatSummary) GetID() int64     { return c.UserID }
func (c ChatSummary) GetTitle() string { return c.UserName }
