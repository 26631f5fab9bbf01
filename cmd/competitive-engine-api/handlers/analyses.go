// Package handlers provides HTTP handlers for the Competitive Engine API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/apiclient"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/engine"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/observability"
)

// AnalysesHandler handles competitive analysis requests.
type AnalysesHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(logger *observability.Logger, eng *engine.Engine) *AnalysesHandler {
	return &AnalysesHandler{
		logger: logger,
		engine: eng,
	}
}

// CreateRequestDTO represents the API request to start an analysis.
type CreateRequestDTO struct {
	URL string `json:"url"`
}

// Create handles POST /analyses: runs a full analysis for the given URL.
func (h *AnalysesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var reqDTO CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.URL == "" {
		h.writeError(w, http.StatusBadRequest, "url is required", "")
		return
	}

	result, err := h.engine.Analyze(r.Context(), reqDTO.URL)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			// Surface the upstream failure unchanged.
			h.writeError(w, apiErr.StatusCode, "analysis submission failed", apiErr.Message)
			return
		}
		h.logger.Error().Err(err).Str("url", reqDTO.URL).Msg("Analysis failed")
		h.writeError(w, http.StatusBadGateway, "analysis failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, result)
}

// List handles GET /analyses.
func (h *AnalysesHandler) List(w http.ResponseWriter, r *http.Request) {
	results, err := h.engine.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("List failed")
		h.writeError(w, http.StatusInternalServerError, "list failed", err.Error())
		return
	}
	if results == nil {
		// Keep the wire shape an array, never null.
		h.writeJSON(w, http.StatusOK, []any{})
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

// Get handles GET /analyses/{analysisId}.
func (h *AnalysesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisId")

	result, err := h.engine.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("Get failed")
		h.writeError(w, http.StatusInternalServerError, "get failed", err.Error())
		return
	}
	if result == nil {
		h.writeError(w, http.StatusNotFound, "analysis not found", "")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /analyses/{analysisId}. Removal is local only; the
// backend's copy is not touched.
func (h *AnalysesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisId")

	if err := h.engine.Delete(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("Delete failed")
		h.writeError(w, http.StatusInternalServerError, "delete failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /analyses.
func (h *AnalysesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Clear(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Clear failed")
		h.writeError(w, http.StatusInternalServerError, "clear failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnalysesHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *AnalysesHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode error response")
	}
}
