// Package identity creates users in the hosted auth provider.
package identity

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

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrUserExists  = errors.New("user already registered")
	ErrInvalidUser = errors.New("invalid email or password")
)

// Provider creates confirmed users.
type Provider interface {
	CreateUser(ctx context.Context, email, password string) (uuid.UUID, error)
}

// Config configures the admin API client.
type Config struct {
	// URL is the auth API base, e.g. https://project.supabase.co/auth/v1
	URL string

	// ServiceKey is the service role key sent as apikey and bearer token.
	ServiceKey string

	// Timeout bounds each request.
	// Default: 10s
	Timeout time.Duration
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("auth URL is required")
	}
	if c.ServiceKey == "" {
		return fmt.Errorf("service key is required")
	}
	return nil
}

// Client calls the admin users endpoint of a GoTrue compatible auth server.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates an admin API client.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: httpClient,
	}, nil
}

type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.ErrorCode} {
		if s != "" {
			return s
		}
	}
	return ""
}

// CreateUser creates a user with a confirmed email address and returns its id.
func (c *Client) CreateUser(ctx context.Context, email, password string) (uuid.UUID, error) {
	body, err := json.Marshal(createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/users", bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to call auth server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(data, &apiErr)
		msg := apiErr.text()
		if msg == "" {
			msg = resp.Status
		}

		switch {
		case resp.StatusCode == http.StatusUnprocessableEntity && apiErr.ErrorCode == "email_exists",
			strings.Contains(strings.ToLower(msg), "already been registered"):
			return uuid.Nil, fmt.Errorf("%w: %s", ErrUserExists, msg)
		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
			return uuid.Nil, fmt.Errorf("%w: %s", ErrInvalidUser, msg)
		}
		return uuid.Nil, fmt.Errorf("auth server returned %d: %s", resp.StatusCode, msg)
	}

	var user userResponse
	if err := json.Unmarshal(data, &user); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode user: %w", err)
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth server returned invalid user id %q: %w", user.ID, err)
	}

	log.Debug().Str("user_id", id.String()).Str("email", user.Email).Msg("Created auth user")

	return id, nil
}

// MemoryProvider is an in-process Provider for development and tests.
type MemoryProvider struct {
	mu    sync.Mutex
	users map[string]uuid.UUID // lower-cased email -> id
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{users: make(map[string]uuid.UUID)}
}

// CreateUser implements Provider.
func (p *MemoryProvider) CreateUser(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") || len(password) < 6 {
		return uuid.Nil, ErrInvalidUser
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[email]; exists {
		return uuid.Nil, ErrUserExists
	}

	id := uuid.Must(uuid.NewV7())
	p.users[email] = id
	return id, nil
}
