package screens

import "github.com/vnma/vaxtui/internal/domain"

// Kind selects how the UI presents a menu entry
type Kind int

const (
	KindList Kind = iota
	KindChat
	KindAssistant
	KindStats
	KindProfile
)

// Entry is one item of a role's home menu
type Entry struct {
	ID          string
	Title       string
	Description string
	Kind        Kind
	List        func(Deps) View // set for KindList
}

func listEntry[T domain.Item](id, title, desc string, build func(Deps) *List[T]) Entry {
	return Entry{
		ID:          id,
		Title:       title,
		Description: desc,
		Kind:        KindList,
		List:        func(d Deps) View { return build(d) },
	}
}

var profileEntry = Entry{ID: "profile", Title: "Profile", Description: "Your account details and password", Kind: KindProfile}

// Menu returns the home menu for role. Support chat entries are left out
// when withChat is false.
func Menu(role domain.Role, withChat bool) []Entry {
	var entries []Entry
	switch role {
	case domain.RoleAdmin:
		entries = []Entry{
			listEntry("accounts", "Accounts", "Create, edit and remove user accounts", Accounts),
			listEntry("vaccines", "Vaccines", "The vaccine catalogue", Vaccines),
			listEntry("vaccine-types", "Vaccine types", "Vaccine categories", VaccineTypes),
			listEntry("sites", "Injection sites", "Where doses are given", Sites),
			listEntry("schedules", "Schedules", "Plan vaccination sessions", Schedules),
			{ID: "stats", Title: "Statistics", Description: "Vaccination coverage at a glance", Kind: KindStats},
		}
	case domain.RoleStaff:
		entries = []Entry{
			listEntry("appointments", "Appointments", "Confirm appointments and record inoculations", AppointmentManagement),
			listEntry("health-notes", "Health notes", "Post-injection observations", HealthNotes),
		}
		if withChat {
			entries = append(entries, listEntry("inbox", "Support inbox", "Conversations with citizens", Inbox))
		}
	default:
		entries = []Entry{
			listEntry("search", "Find an injection", "Browse sessions and book an appointment", InjectionSearch),
			listEntry("my-appointments", "My appointments", "Bookings and their status", MyAppointments),
			listEntry("reminders", "Reminders", "Turn appointment reminders on or off", Reminders),
			listEntry("history", "Vaccination history", "Doses you have received", History),
			listEntry("certificates", "Certificates", "Download vaccination certificates", Certificates),
		}
		if withChat {
			entries = append(entries, Entry{ID: "contact", Title: "Contact staff", Description: "Chat with the vaccination team", Kind: KindChat})
		}
		entries = append(entries, Entry{ID: "assistant", Title: "AI assistant", Description: "Ask questions about vaccines", Kind: KindAssistant})
	}
	return append(entries, profileEntry)
}
