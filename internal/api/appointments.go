package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vnma/vaxtui/internal/domain"
)

// === Appointments ===

func (c *Client) MyAppointments(ctx context.Context) ([]domain.Appointment, error) {
	return listAll[domain.Appointment](ctx, c, pathAppointments)
}

func (c *Client) AllAppointments(ctx context.Context) ([]domain.Appointment, error) {
	return listAll[domain.Appointment](ctx, c, pathAllAppts)
}

// Book reserves a slot; the server decrements the schedule's slot count
func (c *Client) Book(ctx context.Context, scheduleID int64) (*domain.Appointment, error) {
	var a domain.Appointment
	body := map[string]int64{"schedule_id": scheduleID}
	if err := c.sendJSON(ctx, http.MethodPost, pathAppointments, body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetReminder returns the updated appointment. Servers that answer with
// only the changed flag yield an appointment with a zero ID.
func (c *Client) SetReminder(ctx context.Context, id int64, enabled bool) (*domain.Appointment, error) {
	var a domain.Appointment
	body := map[string]bool{"reminder_enabled": enabled}
	if err := c.sendJSON(ctx, http.MethodPatch, reminderPath(id), body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := c.sendJSON(ctx, http.MethodPatch, item(pathAppointments, id), status, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// === Records ===

func (c *Client) MyRecords(ctx context.Context) ([]domain.Record, error) {
	return listAll[domain.Record](ctx, c, pathRecords)
}

func (c *Client) AllRecords(ctx context.Context) ([]domain.Record, error) {
	return listAll[domain.Record](ctx, c, pathAllRecords)
}

func (c *Client) UpdateHealthNote(ctx context.Context, id int64, in domain.HealthNoteInput) (*domain.Record, error) {
	var r domain.Record
	if err := c.sendJSON(ctx, http.MethodPatch, item(pathRecords, id), in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Certificate downloads the PDF certificate for a record
func (c *Client) Certificate(ctx context.Context, id int64) ([]byte, error) {
	req := c.rc.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf")
	body, err := c.execute(req, http.MethodGet, certificatePath(id))
	if err != nil {
		return nil, err
	}
	if mtype := mimetype.Detect(body); !mtype.Is("application/pdf") {
		return nil, fmt.Errorf("certificate is %s, not a PDF: %w", mtype.String(), domain.ErrMalformed)
	}
	return body, nil
}

// === Assistant ===

func (c *Client) Messages(ctx context.Context) ([]domain.AIMessage, error) {
	return listAll[domain.AIMessage](ctx, c, pathChatMessages)
}

func (c *Client) CheckQuestion(ctx context.Context, question string) (*domain.QuestionCheck, error) {
	var res domain.QuestionCheck
	body := map[string]string{"question": question}
	if err := c.sendJSON(ctx, http.MethodPost, pathCheckQuestion, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Ask(ctx context.Context, message string) (*domain.AIExchange, error) {
	var res domain.AIExchange
	body := map[string]string{"message": message}
	if err := c.sendJSON(ctx, http.MethodPost, pathAsk, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// === Stats ===

func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	var s domain.Stats
	if err := c.getJSON(ctx, pathStats, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
