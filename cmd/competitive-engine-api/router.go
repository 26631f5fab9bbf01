// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/geolens-ai/geolens/libs/competitive-engine/cmd/competitive-engine-api/handlers"
	"github.com/geolens-ai/geolens/libs/competitive-engine/cmd/competitive-engine-api/middleware"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/config"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/engine"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/observability"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, eng *engine.Engine, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"competitive-engine"}`))
	})

	analysesHandler := handlers.NewAnalysesHandler(logger, eng)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", analysesHandler.Create)
			r.Get("/", analysesHandler.List)
			r.Delete("/", analysesHandler.Clear)
			r.Get("/{analysisId}", analysesHandler.Get)
			r.Delete("/{analysisId}", analysesHandler.Delete)
		})
	})

	return r
}
