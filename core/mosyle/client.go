package mosyle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"fleet-sync/core/failure"
)

// ErrNotAuthenticated is returned when a call is made before a successful Login.
var ErrNotAuthenticated = errors.New("mosyle session not established")

// Client talks to the Mosyle Business API.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client

	mu  sync.Mutex
	jwt string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// NewClient builds a Mosyle client. Call Login before listing devices.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges the configured credentials for a JWT, which is then sent
// with every subsequent request. The token is not refreshed during a run.
func (c *Client) Login(ctx context.Context) error {
	const op = "mosyle login"
	if c.cfg.AccessToken == "" || c.cfg.Email == "" {
		return fmt.Errorf("%s: access token and email are required", op)
	}

	payload := map[string]string{
		"email":    c.cfg.Email,
		"password": c.cfg.Password,
	}
	resp, body, err := c.post(ctx, op, "/login", payload, "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return failure.NewTransport(op, resp.StatusCode, string(body))
	}

	jwt := strings.TrimSpace(resp.Header.Get("Authorization"))
	if jwt == "" {
		return fmt.Errorf("%s: response carried no JWT, check credentials", op)
	}
	if !strings.HasPrefix(strings.ToLower(jwt), "bearer ") {
		jwt = "Bearer " + jwt
	}

	c.mu.Lock()
	c.jwt = jwt
	c.mu.Unlock()
	return nil
}

func (c *Client) session() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jwt == "" {
		return "", ErrNotAuthenticated
	}
	return c.jwt, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload any, jwt string) (*http.Response, []byte, error) {
	if c.baseURL == "" {
		return nil, nil, fmt.Errorf("%s: mosyle base url not configured", op)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to encode payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accessToken", c.cfg.AccessToken)
	if jwt != "" {
		req.Header.Set("Authorization", jwt)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, failure.WrapTransport(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, failure.WrapTransport(op, err)
	}
	return resp, body, nil
}
