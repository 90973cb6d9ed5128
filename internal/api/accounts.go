package api

import (
	"context"
	"net/http"

	"github.com/vnma/vaxtui/internal/domain"
)

// ListUsers returns every account (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return listAll[domain.User](ctx, c, pathAllUsers)
}

// CreateUser creates an account as multipart form data so an avatar can ride along
func (c *Client) CreateUser(ctx context.Context, in domain.AccountInput) (*domain.User, error) {
	fields := map[string]string{
		"username":     in.Username,
		"email":        in.Email,
		"password":     in.Password,
		"is_staff":     boolField(in.IsStaff),
		"is_superuser": boolField(in.IsSuperuser),
	}
	setIf(fields, "first_name", in.FirstName)
	setIf(fields, "last_name", in.LastName)
	setIf(fields, "citizen_id", in.CitizenID)
	setIf(fields, "birth_date", in.BirthDate)
	setIf(fields, "gender", in.Gender)
	setIf(fields, "phone_number", in.PhoneNumber)

	var u domain.User
	if err := c.sendForm(ctx, http.MethodPost, pathUsers, fields, in.AvatarPath, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser patches an account (admin only)
func (c *Client) UpdateUser(ctx context.Context, id int64, in domain.AccountUpdate) (*domain.User, error) {
	var u domain.User
	if err := c.sendJSON(ctx, http.MethodPatch, item(pathUsers, id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes an account (admin only)
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.delete(ctx, item(pathUsers, id))
}
