package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lazypower/lifelog/internal/models"
)

const (
	defaultServerURL = "http://127.0.0.1:8000"
	httpTimeout      = 5 * time.Second
)

// Client talks to a running lifelog server.
type Client struct {
	http      *http.Client
	serverURL string
	token     string
}

// New creates a client for serverURL. An empty URL falls back to
// LIFELOG_URL, then http://127.0.0.1:8000. LIFELOG_TOKEN, when set,
// authenticates requests without a login.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("LIFELOG_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: strings.TrimSuffix(serverURL, "/"),
		token:     os.Getenv("LIFELOG_TOKEN"),
	}
}

// Token returns the bearer token in use, if any.
func (c *Client) Token() string {
	return c.token
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.serverURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(email, password string) (*models.User, error) {
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := c.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// Logout revokes the current token.
func (c *Client) Logout() error {
	if err := c.do(http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Events lists every event with when it was last stamped.
func (c *Client) Events() ([]models.EventStamp, error) {
	var resp struct {
		Events []models.EventStamp `json:"events"`
	}
	if err := c.do(http.MethodGet, "/logs/events/easy/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Stamp records an occurrence of the named event. A nil at means now.
func (c *Client) Stamp(event string, at *time.Time) (*models.Timestamp, error) {
	req := map[string]any{"event": event}
	if at != nil {
		req["at"] = at
	}
	var ts models.Timestamp
	if err := c.do(http.MethodPost, "/logs/timestamps/by_name/", req, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}
