package api

import "fmt"

const (
	pathToken         = "/o/token/"
	pathUsers         = "/users/"
	pathAllUsers      = "/users/all/"
	pathCurrentUser   = "/users/current-user/"
	pathVaccines      = "/vaccines/"
	pathVaccineTypes  = "/vaccine-types/"
	pathSites         = "/injection-sites/"
	pathSchedules     = "/schedules/"
	pathUpcoming      = "/schedules/upcoming/"
	pathAppointments  = "/appointments/"
	pathAllAppts      = "/appointments/all/"
	pathRecords       = "/records/"
	pathAllRecords    = "/records/all/"
	pathChatMessages  = "/chat/messages/"
	pathCheckQuestion = "/chat/check-question/"
	pathAsk           = "/chat/ask/"
	pathStats         = "/stats/"
)

// item builds "/collection/{id}/"
func item(collection string, id int64) string {
	return fmt.Sprintf("%s%d/", collection, id)
}

func reminderPath(id int64) string {
	return item(pathAppointments, id) + "reminder/"
}

func certificatePath(id int64) string {
	return item(pathRecords, id) + "certificate/"
}
