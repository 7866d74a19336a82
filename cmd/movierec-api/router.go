// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sadana31/movieAPI/cmd/movierec-api/handlers"
	"github.com/Sadana31/movieAPI/cmd/movierec-api/middleware"
	"github.com/Sadana31/movieAPI/internal/artifact"
	"github.com/Sadana31/movieAPI/internal/cache"
	"github.com/Sadana31/movieAPI/internal/config"
	"github.com/Sadana31/movieAPI/internal/observability"
)

// App holds the services the router serves.
type App struct {
	Engine      handlers.Recommender
	Manifest    artifact.Manifest
	Cache       *cache.ResponseCache
	CacheClient cache.Client
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, app *App, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.HTTP.CORSOrigins))
	if cfg.Observability.MetricsEnabled {
		r.Use(middleware.Metrics)
	}
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	healthHandler := handlers.NewHealthHandler(logger, app.Engine, app.Manifest, app.CacheClient)
	moviesHandler := handlers.NewMoviesHandler(logger, app.Engine, app.Cache, cfg)

	// Probes and metrics are exempt from rate limiting.
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	if cfg.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow))

		r.Get("/search", moviesHandler.Search)
		r.Post("/recommend", moviesHandler.Recommend)
		r.Post("/filter", moviesHandler.Filter)
	})

	return r
}
