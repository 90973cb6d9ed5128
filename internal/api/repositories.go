package api

import "github.com/vnma/vaxtui/internal/domain"

// Compile-time checks that Client satisfies every repository
var (
	_ domain.AuthRepository        = (*Client)(nil)
	_ domain.AccountRepository     = (*Client)(nil)
	_ domain.VaccineRepository     = (*Client)(nil)
	_ domain.SiteRepository        = (*Client)(nil)
	_ domain.ScheduleRepository    = (*Client)(nil)
	_ domain.AppointmentRepository = (*Client)(nil)
	_ domain.RecordRepository      = (*Client)(nil)
	_ domain.AssistantRepository   = (*Client)(nil)
	_ domain.StatsRepository       = (*Client)(nil)
)
