package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vnma/vaxtui/internal/domain"
)

// Login runs the OAuth2 password grant against the token endpoint. On
// success the client starts sending the new token.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	if username == "" || password == "" {
		return nil, domain.Invalid("username", "Username and password are required")
	}

	req := c.rc.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "password",
			"username":      username,
			"password":      password,
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
		})
	body, err := c.execute(req, http.MethodPost, pathToken)
	if err != nil {
		// the token endpoint answers bad credentials with 400 invalid_grant
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			return nil, &domain.APIError{
				Status:  apiErr.Status,
				Message: "Invalid username or password",
				Kind:    domain.ErrUnauthenticated,
			}
		}
		return nil, err
	}

	var tok domain.Token
	if err := decodeObject(body, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token response without access_token: %w", domain.ErrMalformed)
	}

	c.SetToken(tok.AccessToken)
	c.logger.Info("signed in", "username", username)
	return &tok, nil
}

// CurrentUser returns the signed-in account
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.getJSON(ctx, pathCurrentUser, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile patches the signed-in account, uploading a new avatar when
// one is given.
func (c *Client) UpdateProfile(ctx context.Context, in domain.ProfileInput) (*domain.User, error) {
	fields := map[string]string{}
	setIf(fields, "first_name", in.FirstName)
	setIf(fields, "last_name", in.LastName)
	setIf(fields, "email", in.Email)
	setIf(fields, "phone_number", in.PhoneNumber)
	setIf(fields, "password", in.Password)

	var u domain.User
	if err := c.sendForm(ctx, http.MethodPatch, pathCurrentUser, fields, in.AvatarPath, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates a citizen account. It works without a token.
func (c *Client) Register(ctx context.Context, in domain.AccountInput) (*domain.User, error) {
	in.IsStaff = false
	in.IsSuperuser = false
	return c.CreateUser(ctx, in)
}

// Ping checks that the service answers at all. Any HTTP status counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/", nil)
	if errors.Is(err, domain.ErrNetwork) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
