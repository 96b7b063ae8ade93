package snipeit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fleet-sync/core/failure"

	"golang.org/x/time/rate"
)

// Client talks to the Snipe-IT REST API.
// The bearer token is attached to every request and never refreshed.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithLimiter sets a token bucket shared by every request this client makes.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient builds a Snipe-IT client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	c := &Client{
		baseURL:    sanitizeBaseURL(cfg.BaseURL),
		token:      cfg.APIToken,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping verifies connectivity and credentials with a minimal model search.
func (c *Client) Ping(ctx context.Context) error {
	const op = "ping target"
	status, body, err := c.do(ctx, op, http.MethodGet, "/models", url.Values{"limit": {"1"}, "offset": {"0"}}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return failure.NewTransport(op, status, string(body))
	}
	return nil
}

// Exists reports whether the referenced record is present.
func (c *Client) Exists(ctx context.Context, kind ReferenceKind, id int) (bool, error) {
	op := fmt.Sprintf("find %s %d", kind, id)
	var rec struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	}
	found, err := c.get(ctx, op, fmt.Sprintf("/%s/%d", kind, id), nil, &rec)
	if err != nil || !found {
		return false, err
	}
	return rec.Status != "error" && rec.ID == id, nil
}

// do performs a request and returns the status code and raw body.
// Only network-level problems are returned as errors.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) (int, []byte, error) {
	if c.baseURL == "" {
		return 0, nil, fmt.Errorf("%s: snipe-it base url not configured", op)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, failure.WrapTransport(op, err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: failed to encode payload: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, failure.WrapTransport(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, failure.WrapTransport(op, err)
	}
	return resp.StatusCode, body, nil
}

// get performs a lookup. A 404 is reported as found=false without error.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) (bool, error) {
	status, body, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, failure.NewTransport(op, status, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, &failure.TransportError{Op: op, StatusCode: status, Body: string(body), Err: err}
	}
	return true, nil
}

// mutate performs a write and decodes the response payload into out.
// A status of "error" inside a 2xx response is a logical failure.
func (c *Client) mutate(ctx context.Context, op, method, path string, payload, out any) error {
	status, body, err := c.do(ctx, op, method, path, nil, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return failure.NewTransport(op, status, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &failure.TransportError{Op: op, StatusCode: status, Body: string(body), Err: err}
	}
	if env.Status == "error" {
		return failure.NewLogical(op, flattenMessages(env.Messages)...)
	}

	if out != nil && len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, out); err != nil {
			return &failure.TransportError{Op: op, StatusCode: status, Body: string(body), Err: err}
		}
	}
	return nil
}

func sanitizeBaseURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	return strings.TrimRight(trimmed, "/")
}
