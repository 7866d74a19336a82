// Package main provides the movie recommender API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sadana31/movieAPI/internal/artifact"
	"github.com/Sadana31/movieAPI/internal/cache"
	"github.com/Sadana31/movieAPI/internal/config"
	"github.com/Sadana31/movieAPI/internal/metrics"
	"github.com/Sadana31/movieAPI/internal/observability"
	"github.com/Sadana31/movieAPI/internal/recommend"
)

func main() {
	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("artifacts", cfg.Artifacts.Dir).
		Str("cache", cfg.Cache.Driver).
		Msg("Starting movie recommender API")

	app, cleanup, err := setup(context.Background(), logger, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Startup failed")
	}
	defer cleanup()

	// Create server
	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(logger, app, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt or error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
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

// setup loads the artifact set and builds the services behind the router.
// The service refuses to start on a missing or inconsistent artifact set.
func setup(ctx context.Context, logger *observability.Logger, cfg *config.Config) (*App, func(), error) {
	if cfg.Artifacts.FetchOnStart {
		fetcher := artifact.NewFetcher(logger, cfg.Artifacts.FetchTimeout)
		if _, err := fetcher.FetchAll(ctx, cfg.Artifacts.Dir, cfg.Artifacts.URLs); err != nil {
			return nil, nil, fmt.Errorf("fetch artifacts: %w", err)
		}
	}

	start := time.Now()
	set, err := artifact.Load(ctx, logger, cfg.Artifacts.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load artifacts: %w", err)
	}
	metrics.RecordArtifactLoad(len(set.Catalog), time.Since(start))

	buildID := set.Manifest.BuildID.String()
	logger = logger.WithBuild(buildID)

	engine, err := recommend.New(logger, set.Catalog, set.Matrix, recommend.Config{
		MatchThreshold: cfg.Recommend.MatchThreshold,
		RuntimeWindow:  cfg.Filter.RuntimeWindow,
		Index:          set.Index,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create engine: %w", err)
	}

	client, err := newCacheClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create cache: %w", err)
	}
	cleanup := func() {
		if client != nil {
			if err := client.Close(); err != nil {
				logger.Warn().Err(err).Msg("Cache close failed")
			}
		}
	}

	respCache := cache.NewResponseCache(client, logger.WithOperation("cache"), cache.ResponseCacheConfig{
		TTL:     cfg.Cache.TTL,
		BuildID: buildID,
		Enabled: cfg.Cache.Enabled,
	})

	logger.Info().
		Int("items", engine.Len()).
		Dur("load_duration", time.Since(start)).
		Bool("cache", respCache.Enabled()).
		Msg("Artifacts loaded")

	return &App{
		Engine:      engine,
		Manifest:    set.Manifest,
		Cache:       respCache,
		CacheClient: client,
	}, cleanup, nil
}

// newCacheClient returns nil when caching is disabled.
func newCacheClient(ctx context.Context, cfg *config.Config) (cache.Client, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Driver {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return cache.NewMemoryClient(cfg.Cache.MaxEntries, time.Minute), nil
	}
}
