// Package apiclient talks to the upstream analysis backend over HTTP JSON.
// Payloads are returned as raw JSON because the backend ships several report
// shapes; decoding is the report mapper's job.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// API paths. Submission and retrieval live on different backend versions.
const (
	submitPath   = "/api/v1/competitors/analyze"
	sessionsPath = "/api/v3/competitors/"
)

// Client calls the backend competitive-analysis endpoints.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	sessionCookie string
}

// Config holds backend client configuration.
type Config struct {
	BaseURL       string // e.g. https://api.geolens.ai
	SessionCookie string // raw Cookie header value, optional
	Timeout       time.Duration
}

// NewClient creates a backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		sessionCookie: cfg.SessionCookie,
	}, nil
}

// SubmitRequest starts a new competitive analysis.
type SubmitRequest struct {
	URL         string  `json:"url"`
	MinScore    float64 `json:"min_score"`
	MinMentions int     `json:"min_mentions"`
}

// APIError is a non-2xx backend response. The upstream message is preserved
// so callers can surface it verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error: status %d: %s", e.StatusCode, e.Message)
}

// errorBody is the backend's error envelope. Plain-text bodies are used
// as-is when this shape does not decode.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// SubmitAnalysis submits url for analysis and returns the backend's session
// payload as raw JSON.
func (c *Client) SubmitAnalysis(ctx context.Context, req SubmitRequest) (json.RawMessage, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, submitPath, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// ListSessions returns every analysis session the backend holds for the
// current user, newest first as the backend orders them.
func (c *Client) ListSessions(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, sessionsPath, nil)
	if err != nil {
		return nil, err
	}

	var sessions []json.RawMessage
	if err := json.Unmarshal(body, &sessions); err == nil {
		return sessions, nil
	}

	// Some backend builds wrap the list in an envelope.
	var envelope struct {
		Sessions []json.RawMessage `json:"sessions"`
		Results  []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal sessions: %w", err)
	}
	if envelope.Sessions != nil {
		return envelope.Sessions, nil
	}
	return envelope.Results, nil
}

// GetSession fetches a single session by backend identifier. The endpoint
// returns either a bare object or a one-element array depending on backend
// version; both decode to the object.
func (c *Client) GetSession(ctx context.Context, id string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, sessionsPath+id, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("unmarshal session list: %w", err)
		}
		if len(items) == 0 {
			return nil, &APIError{StatusCode: http.StatusNotFound, Message: "session not found"}
		}
		return items[0], nil
	}
	return json.RawMessage(trimmed), nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionCookie != "" {
		req.Header.Set("Cookie", c.sessionCookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return body, nil
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		for _, msg := range []string{eb.Detail, eb.Message, eb.Error} {
			if msg != "" {
				return msg
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no response body"
	}
	return msg
}

// Backend defines the upstream operations the engine depends on.
type Backend interface {
	SubmitAnalysis(ctx context.Context, req SubmitRequest) (json.RawMessage, error)
	ListSessions(ctx context.Context) ([]json.RawMessage, error)
	GetSession(ctx context.Context, id string) (json.RawMessage, error)
}

var _ Backend = (*Client)(nil)
