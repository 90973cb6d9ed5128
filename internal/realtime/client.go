package realtime

import (
	"bytes"
	"context"
	"encoding/json"
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
	defaultTimeout      = 15 * time.Second
	defaultPollInterval = 2 * time.Second
)

// Options configures a Client
type Options struct {
	DatabaseURL  string
	Auth         string // database secret or ID token, sent as ?auth=
	PollInterval time.Duration
	Timeout      time.Duration
	Logger       *slog.Logger
}

// Client talks to a realtime database over its REST protocol, where every
// node of the document tree is addressed as {databaseURL}/{path}.json.
type Client struct {
	rc       *resty.Client
	auth     string
	interval time.Duration
	logger   *slog.Logger
}

// Snapshot is the value of a path at one point in time
type Snapshot struct {
	Path string
	Raw  json.RawMessage
	ETag string
}

// Exists reports whether the path held a value
func (s Snapshot) Exists() bool {
	trimmed := bytes.TrimSpace(s.Raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals the snapshot into dest
func (s Snapshot) Decode(dest any) error {
	if !s.Exists() {
		return nil
	}
	if err := json.Unmarshal(s.Raw, dest); err != nil {
		return fmt.Errorf("decode %s: %v: %w", s.Path, err, domain.ErrMalformed)
	}
	return nil
}

// Unsubscribe stops a subscription and waits for its poller to exit
type Unsubscribe func()

// NewClient creates a realtime client
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	c := &Client{
		auth:     opts.Auth,
		interval: interval,
		logger:   logger,
	}
	c.rc = resty.New().
		SetBaseURL(strings.TrimRight(opts.DatabaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	c.rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})
	return c
}

func nodeURL(path string) string {
	return "/" + strings.Trim(path, "/") + ".json"
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.rc.R().SetContext(ctx)
	if c.auth != "" {
		req.SetQueryParam("auth", c.auth)
	}
	return req
}

func (c *Client) execute(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, nodeURL(path))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &domain.APIError{Kind: domain.ErrNetwork}
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		// Error bodies look like {"error": "Permission denied"}
		var body struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(resp.Body(), &body)
		return nil, &domain.APIError{
			Status:  resp.StatusCode(),
			Message: body.Error,
			Kind:    domain.StatusKind(resp.StatusCode()),
		}
	}
	return resp, nil
}

// Get decodes the value at path into dest. A missing path leaves dest untouched.
func (c *Client) Get(ctx context.Context, path string, dest any) error {
	snap, err := c.snapshot(ctx, path)
	if err != nil {
		return err
	}
	return snap.Decode(dest)
}

// Push appends value under path with a server generated, time ordered key
// and returns that key.
func (c *Client) Push(ctx context.Context, path string, value any) (string, error) {
	req := c.request(ctx).SetHeader("Content-Type", "application/json").SetBody(value)
	resp, err := c.execute(req, http.MethodPost, path)
	if err != nil {
		c.logger.Error("realtime push failed", "path", path, "error", err)
		return "", err
	}
	var out struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.Name == "" {
		return "", fmt.Errorf("push %s: %w", path, domain.ErrMalformed)
	}
	return out.Name, nil
}

// Update merges fields into the node at path, creating it if needed
func (c *Client) Update(ctx context.Context, path string, fields map[string]any) error {
	req := c.request(ctx).SetHeader("Content-Type", "application/json").SetBody(fields)
	if _, err := c.execute(req, http.MethodPatch, path); err != nil {
		c.logger.Error("realtime update failed", "path", path, "error", err)
		return err
	}
	return nil
}

func (c *Client) snapshot(ctx context.Context, path string) (Snapshot, error) {
	req := c.request(ctx).SetHeader("X-Firebase-ETag", "true")
	resp, err := c.execute(req, http.MethodGet, path)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Path: path, Raw: resp.Body(), ETag: resp.Header().Get("ETag")}, nil
}

// changed reports whether next differs from prev. ETags are compared when
// both sides carry one, bodies otherwise.
func changed(prev, next Snapshot) bool {
	if prev.ETag != "" && next.ETag != "" {
		return prev.ETag != next.ETag
	}
	return !bytes.Equal(prev.Raw, next.Raw)
}

// Subscribe delivers the current value of path to onChange, then polls and
// delivers again each time the value changes. onChange runs on the poller
// goroutine after the initial call. The subscription ends when ctx is
// cancelled or the returned Unsubscribe is called.
func (c *Client) Subscribe(ctx context.Context, path string, onChange func(Snapshot)) (Unsubscribe, error) {
	first, err := c.snapshot(ctx, path)
	if err != nil {
		return nil, err
	}
	onChange(first)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		last := first
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			next, err := c.snapshot(ctx, path)
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Warn("realtime poll failed", "path", path, "error", err)
				}
				continue
			}
			if changed(last, next) {
				last = next
				onChange(next)
			}
		}
	}()

	c.logger.Debug("realtime subscribed", "path", path, "interval", c.interval)
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
			c.logger.Debug("realtime unsubscribed", "path", path)
		})
	}, nil
}
