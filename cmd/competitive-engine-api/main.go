// Package main provides the Competitive Engine API server entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/apiclient"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/cache"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/config"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/engine"
	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("backend", cfg.Backend.BaseURL).
		Str("cache", cfg.Cache.Driver).
		Msg("Starting Competitive Engine API")

	backend, err := apiclient.NewClient(apiclient.Config{
		BaseURL:       cfg.Backend.BaseURL,
		SessionCookie: cfg.Backend.SessionCookie,
		Timeout:       cfg.Backend.Timeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create backend client")
	}

	store, err := cache.New(cfg.Cache, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cache store")
	}
	defer store.Close()

	eng := engine.New(backend, store, cfg.Engine, logger)

	router := NewRouter(logger, eng, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
