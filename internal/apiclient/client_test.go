package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:       server.URL,
		SessionCookie: "session=abc123",
		Timeout:       5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestSubmitAnalysis(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/competitors/analyze", r.URL.Path)
		assert.Equal(t, "session=abc123", r.Header.Get("Cookie"))

		var req SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req.URL)
		assert.Equal(t, 0.3, req.MinScore)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"analysis_id":"sess-1","status":"processing"}`))
	})

	raw, err := client.SubmitAnalysis(context.Background(), SubmitRequest{
		URL:         "https://example.com",
		MinScore:    0.3,
		MinMentions: 2,
	})
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "sess-1", payload["analysis_id"])
}

func TestSubmitAnalysis_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"invalid target URL"}`))
	})

	_, err := client.SubmitAnalysis(context.Background(), SubmitRequest{URL: "nope"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "invalid target URL", apiErr.Message)
}

func TestListSessions_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/competitors/", r.URL.Path)
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	})

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestListSessions_Envelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sessions":[{"id":1}]}`))
	})

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestGetSession_Object(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/competitors/sess-9", r.URL.Path)
		w.Write([]byte(`{"analysis_id":"sess-9"}`))
	})

	raw, err := client.GetSession(context.Background(), "sess-9")
	require.NoError(t, err)
	assert.JSONEq(t, `{"analysis_id":"sess-9"}`, string(raw))
}

func TestGetSession_SingleElementArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"analysis_id":"sess-9"}]`))
	})

	raw, err := client.GetSession(context.Background(), "sess-9")
	require.NoError(t, err)
	assert.JSONEq(t, `{"analysis_id":"sess-9"}`, string(raw))
}

func TestGetSession_EmptyArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := client.GetSession(context.Background(), "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
