package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/apiclient"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/cache"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/config"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/engine"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/observability"
)

// unreachableBackend fails every call, so handler tests exercise the
// cache-and-error paths without a live backend.
type unreachableBackend struct{}

func (unreachableBackend) SubmitAnalysis(ctx context.Context, req apiclient.SubmitRequest) (json.RawMessage, error) {
	return nil, &apiclient.APIError{StatusCode: http.StatusBadGateway, Message: "backend unreachable"}
}

func (unreachableBackend) ListSessions(ctx context.Context) ([]json.RawMessage, error) {
	return nil, errors.New("connection refused")
}

func (unreachableBackend) GetSession(ctx context.Context, id string) (json.RawMessage, error) {
	return nil, errors.New("connection refused")
}

func newTestHandler() *AnalysesHandler {
	store := cache.NewMemoryStore(cache.DefaultMaxEntries)
	eng := engine.New(unreachableBackend{}, store, config.EngineConfig{SeedFallback: false}, nil)
	return NewAnalysesHandler(observability.Nop(), eng)
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCreate_InvalidBody(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeErrorBody(t, rec)
	assert.Equal(t, "invalid request body", body["error"])
	assert.Equal(t, "invalid request body", body["message"])
	assert.NotEmpty(t, body["detail"])
}

func TestCreate_MissingURL(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeErrorBody(t, rec)
	assert.Equal(t, "url is required", body["error"])
	// No detail key when there is nothing to add.
	_, ok := body["detail"]
	assert.False(t, ok)
}

func TestCreate_UpstreamErrorSurfaced(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	body := decodeErrorBody(t, rec)
	assert.Equal(t, "analysis submission failed", body["error"])
	assert.Equal(t, "backend unreachable", body["detail"])
}

func TestGet_NotFound(t *testing.T) {
	h := newTestHandler()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("analysisId", "unknown")
	req := httptest.NewRequest(http.MethodGet, "/analyses/unknown", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeErrorBody(t, rec)
	assert.Equal(t, "analysis not found", body["error"])
}

func TestList_EmptyIsArray(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/analyses", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
