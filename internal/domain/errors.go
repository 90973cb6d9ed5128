package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Sentinel errors for remote operations. Every failure surfaced to a screen
// matches exactly one of these through errors.Is.
var (
	// ErrNetwork indicates the service could not be reached at all
	ErrNetwork = errors.New("service is unreachable")

	// ErrUnauthenticated indicates the token is missing or expired
	ErrUnauthenticated = errors.New("not signed in or session expired")

	// ErrForbidden indicates the account lacks permission for the action
	ErrForbidden = errors.New("permission denied")

	// ErrValidation indicates rejected input, either locally or by the server
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrServer indicates a 5xx response
	ErrServer = errors.New("server error")

	// ErrMalformed indicates a response body that could not be decoded
	ErrMalformed = errors.New("malformed response")
)

// APIError carries the HTTP status and the server's human readable message
// while still matching one of the sentinel errors.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() error { return e.Kind }

// StatusKind maps an HTTP status to the error taxonomy
func StatusKind(status int) error {
	switch {
	case status == 401:
		return ErrUnauthenticated
	case status == 403:
		return ErrForbidden
	case status == 404:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	case status >= 400:
		return ErrValidation
	}
	return ErrMalformed
}

// ValidationError reports caller-side input problems per field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	if len(keys) == 0 {
		return ErrValidation.Error()
	}
	return e.Fields[keys[0]]
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for a single field
func Invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// UserMessage picks the text shown in an error notice. Server supplied
// messages win; otherwise each category gets a fixed wording.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, ErrNetwork):
		return "Cannot reach the server. Check your connection and try again."
	case errors.Is(err, ErrUnauthenticated):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrForbidden):
		return "You do not have permission to do that."
	case errors.Is(err, ErrNotFound):
		return "The requested item was not found."
	case errors.Is(err, ErrServer):
		return "The server hit an error. Try again later."
	case errors.Is(err, ErrMalformed):
		return "The server sent an unexpected response."
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
