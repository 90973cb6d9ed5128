package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/vnma/vaxtui/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "vaxtui/1.0"

	// maxPages bounds how many "next" links a list fetch will follow
	maxPages = 200
)

// Options configures a Client
type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Token        string
	Timeout      time.Duration
	Logger       *slog.Logger
}

// Client implements every domain repository against the REST service
type Client struct {
	rc           *resty.Client
	clientID     string
	clientSecret string
	logger       *slog.Logger

	mu    sync.RWMutex
	token string
}

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

// NewClient creates a REST client. Requests are never retried.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		logger:       logger,
		token:        opts.Token,
	}

	c.rc = resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetRetryCount(0)

	c.rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		if tok := c.Token(); tok != "" && r.Header.Get("Authorization") == "" {
			r.SetAuthToken(tok)
		}
		return nil
	})
	c.rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug("api response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"request_id", resp.Request.Header.Get("X-Request-ID"),
			"elapsed", resp.Time(),
		)
		return nil
	})

	return c
}

// SetToken replaces the bearer token used for subsequent requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the service root the client talks to
func (c *Client) BaseURL() string {
	return c.rc.BaseURL
}

// doRequest performs a request and returns the body of a 2xx response.
// A non-nil body is sent as JSON.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.execute(req, method, path)
}

func (c *Client) execute(req *resty.Request, method, path string) ([]byte, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Error("api request failed", "method", method, "path", path, "error", err)
		return nil, &domain.APIError{Kind: domain.ErrNetwork}
	}

	if resp.StatusCode() >= http.StatusMultipleChoices {
		apiErr := parseAPIError(resp.StatusCode(), resp.Body())
		c.logger.Error("api request error",
			"method", method,
			"path", path,
			"status", resp.StatusCode(),
			"message", apiErr.Message,
		)
		return nil, apiErr
	}
	return resp.Body(), nil
}

// getJSON fetches path and decodes a single JSON object into out
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeObject(body, out)
}

// sendJSON sends in with method and decodes the response object into out.
// out may be nil when the response body is irrelevant.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := c.doRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return decodeObject(body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	return err
}

// listAll fetches every item of a collection endpoint, following "next"
// links when the server paginates.
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	next := path
	for page := 0; next != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("%s: more than %d pages: %w", path, maxPages, domain.ErrMalformed)
		}
		body, err := c.doRequest(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		items, nextURL, err := decodeList[T](body)
		if err != nil {
			c.logger.Error("failed to decode list", "path", next, "error", err, "bodyLen", len(body))
			return nil, err
		}
		all = append(all, items...)
		next = nextURL
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}
