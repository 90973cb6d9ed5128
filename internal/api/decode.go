package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vnma/vaxtui/internal/domain"
)

// page is the {"results": [...]} wrapper some endpoints return
type page[T any] struct {
	Results *[]T    `json:"results"`
	Next    *string `json:"next"`
}

// decodeList accepts either a bare JSON array or a results wrapper and
// returns the items plus the next page URL, if any.
func decodeList[T any](body []byte) ([]T, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, "", fmt.Errorf("empty body: %w", domain.ErrMalformed)
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", fmt.Errorf("decode array: %v: %w", err, domain.ErrMalformed)
		}
		return items, "", nil
	case '{':
		var p page[T]
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, "", fmt.Errorf("decode page: %v: %w", err, domain.ErrMalformed)
		}
		if p.Results == nil {
			return nil, "", fmt.Errorf("object without results: %w", domain.ErrMalformed)
		}
		next := ""
		if p.Next != nil {
			next = *p.Next
		}
		return *p.Results, next, nil
	}
	return nil, "", fmt.Errorf("unexpected %q: %w", trimmed[0], domain.ErrMalformed)
}

func decodeObject(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, domain.ErrMalformed)
	}
	return nil
}

// parseAPIError extracts the server's message from an error body. DRF
// replies use "detail", "non_field_errors" or a map of field -> messages;
// the token endpoint uses "error_description".
func parseAPIError(status int, body []byte) *domain.APIError {
	apiErr := &domain.APIError{Status: status, Kind: domain.StatusKind(status)}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}

	for _, key := range []string{"detail", "message", "error_description", "error"} {
		if msg := firstString(raw[key]); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	if msg := firstString(raw["non_field_errors"]); msg != "" {
		apiErr.Message = msg
		return apiErr
	}

	fields := make(map[string][]string)
	for key, val := range raw {
		if msgs := stringList(val); len(msgs) > 0 {
			fields[key] = msgs
		}
	}
	if len(fields) == 0 {
		return apiErr
	}
	apiErr.Fields = fields
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	apiErr.Message = fmt.Sprintf("%s: %s", keys[0], strings.Join(fields[keys[0]], " "))
	return apiErr
}

func firstString(raw json.RawMessage) string {
	msgs := stringList(raw)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	return nil
}
