// Package client is a thin Go client for the Listo API. It caches the bearer
// token and user profile in a SessionStore and attaches the token to every
// task request.
package client

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

	"listo/models"
)

// ErrNotLoggedIn is returned by task calls made without a cached session.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("listo api: %d %s", e.Status, e.Message)
}

type RegisterParams struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type TaskParams struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// TaskUpdate sends only the fields that are set.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore

	mu      sync.RWMutex
	session *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for baseURL (for example http://localhost:8080/api)
// and restores any session cached in store.
func New(baseURL string, store SessionStore, opts ...Option) (*Client, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		store:      store,
	}
	for _, opt := range opts {
		opt(c)
	}

	session, err := store.Load()
	if err != nil {
		return nil, err
	}
	c.session = session
	return c, nil
}

// CurrentUser returns the cached user, if logged in.
func (c *Client) CurrentUser() (models.PublicUser, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return models.PublicUser{}, false
	}
	return c.session.User, true
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

type authResponse struct {
	models.PublicUser
	Token string `json:"token"`
}

func (c *Client) Register(ctx context.Context, params RegisterParams) (models.PublicUser, error) {
	return c.authenticate(ctx, "/auth/register", params)
}

func (c *Client) Login(ctx context.Context, email, password string) (models.PublicUser, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (models.PublicUser, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, false, body, &resp); err != nil {
		return models.PublicUser{}, err
	}

	session := &Session{Token: resp.Token, User: resp.PublicUser}
	if err := c.store.Save(session); err != nil {
		return models.PublicUser{}, err
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return resp.PublicUser, nil
}

// Logout forgets the cached token and user. The token itself stays valid
// until it expires.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	return c.store.Clear()
}

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", true, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id.String(), true, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, params TaskParams) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", true, params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id.String(), true, update, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), true, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
