package api

import (
	"context"
	"net/http"

	"github.com/vnma/vaxtui/internal/domain"
)

// === Vaccines ===

func (c *Client) ListVaccines(ctx context.Context) ([]domain.Vaccine, error) {
	return listAll[domain.Vaccine](ctx, c, pathVaccines)
}

func (c *Client) CreateVaccine(ctx context.Context, in domain.VaccineInput) (*domain.Vaccine, error) {
	var v domain.Vaccine
	if err := c.sendJSON(ctx, http.MethodPost, pathVaccines, in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) UpdateVaccine(ctx context.Context, id int64, in domain.VaccineInput) (*domain.Vaccine, error) {
	var v domain.Vaccine
	if err := c.sendJSON(ctx, http.MethodPatch, item(pathVaccines, id), in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) DeleteVaccine(ctx context.Context, id int64) error {
	return c.delete(ctx, item(pathVaccines, id))
}

// === Vaccine types ===

func (c *Client) ListVaccineTypes(ctx context.Context) ([]domain.VaccineType, error) {
	return listAll[domain.VaccineType](ctx, c, pathVaccineTypes)
}

func (c *Client) CreateVaccineType(ctx context.Context, in domain.VaccineTypeInput) (*domain.VaccineType, error) {
	var t domain.VaccineType
	if err := c.sendJSON(ctx, http.MethodPost, pathVaccineTypes, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateVaccineType replaces a type with PUT; a type has no other fields
func (c *Client) UpdateVaccineType(ctx context.Context, id int64, in domain.VaccineTypeInput) (*domain.VaccineType, error) {
	var t domain.VaccineType
	if err := c.sendJSON(ctx, http.MethodPut, item(pathVaccineTypes, id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteVaccineType(ctx context.Context, id int64) error {
	return c.delete(ctx, item(pathVaccineTypes, id))
}

// === Injection sites ===

func (c *Client) ListSites(ctx context.Context) ([]domain.InjectionSite, error) {
	return listAll[domain.InjectionSite](ctx, c, pathSites)
}

func (c *Client) CreateSite(ctx context.Context, in domain.SiteInput) (*domain.InjectionSite, error) {
	var s domain.InjectionSite
	if err := c.sendJSON(ctx, http.MethodPost, pathSites, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateSite(ctx context.Context, id int64, in domain.SiteInput) (*domain.InjectionSite, error) {
	var s domain.InjectionSite
	if err := c.sendJSON(ctx, http.MethodPatch, item(pathSites, id), in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteSite(ctx context.Context, id int64) error {
	return c.delete(ctx, item(pathSites, id))
}

// === Schedules ===

func (c *Client) ListSchedules(ctx context.Context, upcoming bool) ([]domain.Schedule, error) {
	path := pathSchedules
	if upcoming {
		path = pathUpcoming
	}
	return listAll[domain.Schedule](ctx, c, path)
}

func (c *Client) CreateSchedule(ctx context.Context, in domain.ScheduleInput) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := c.sendJSON(ctx, http.MethodPost, pathSchedules, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, id int64, in domain.ScheduleInput) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := c.sendJSON(ctx, http.MethodPut, item(pathSchedules, id), in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	return c.delete(ctx, item(pathSchedules, id))
}
