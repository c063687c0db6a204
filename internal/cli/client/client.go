package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/conduit-dev/conduit/internal/conduit"
)

// TokenSource supplies the bearer token attached to authenticated requests
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc adapts a plain function to TokenSource
type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) {
	return f()
}

// Client represents an HTTP client for the Conduit users API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenSource sets where the bearer token is read from before each request
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// New creates a new API client for the server at baseURL (e.g. https://api.example.com)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

type userEnvelope[T any] struct {
	User T `json:"user"`
}

// Register creates a new account and returns the user with a fresh token
func (c *Client) Register(ctx context.Context, input conduit.RegisterInput) (*conduit.User, error) {
	var resp userEnvelope[conduit.User]
	if err := c.do(ctx, http.MethodPost, "/api/users", false, userEnvelope[conduit.RegisterInput]{User: input}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates the user and returns the user with a fresh token
func (c *Client) Login(ctx context.Context, input conduit.LoginInput) (*conduit.User, error) {
	var resp userEnvelope[conduit.User]
	if err := c.do(ctx, http.MethodPost, "/api/users/login", false, userEnvelope[conduit.LoginInput]{User: input}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// GetCurrentUser returns the user the stored token belongs to
func (c *Client) GetCurrentUser(ctx context.Context) (*conduit.User, error) {
	var resp userEnvelope[conduit.User]
	if err := c.do(ctx, http.MethodGet, "/api/user", true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateCurrentUser applies a profile update and returns the updated user
func (c *Client) UpdateCurrentUser(ctx context.Context, input conduit.UpdateUserInput) (*conduit.User, error) {
	var resp userEnvelope[conduit.User]
	if err := c.do(ctx, http.MethodPut, "/api/user", true, userEnvelope[conduit.UpdateUserInput]{User: input}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, authenticated bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated && c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("failed to load token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// decodeError turns a rejected request (400/422 with an {"errors": {...}} body)
// into a ValidationError and anything else into a StatusError
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest {
		var payload struct {
			Errors map[string][]string `json:"errors"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
			return &conduit.ValidationError{StatusCode: resp.StatusCode, Errors: payload.Errors}
		}
	}

	return &conduit.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
