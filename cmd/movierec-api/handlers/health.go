package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Sadana31/movieAPI/internal/artifact"
	"github.com/Sadana31/movieAPI/internal/cache"
	"github.com/Sadana31/movieAPI/internal/observability"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	logger   *observability.Logger
	engine   Recommender
	manifest artifact.Manifest
	cache    cache.Client
}

// NewHealthHandler creates a health handler. cacheClient may be nil.
func NewHealthHandler(logger *observability.Logger, engine Recommender, manifest artifact.Manifest, cacheClient cache.Client) *HealthHandler {
	return &HealthHandler{
		logger:   logger,
		engine:   engine,
		manifest: manifest,
		cache:    cacheClient,
	}
}

// ReadyResponseDTO describes the serving artifact set.
type ReadyResponseDTO struct {
	Status    string    `json:"status"`
	BuildID   string    `json:"build_id"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	Cache     string    `json:"cache,omitempty"`
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Movie Recommender API running"})
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready. The service is ready once an artifact set with
// at least one item is loaded. A failing cache degrades but does not fail
// readiness, since lookups fall through to the engine.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponseDTO{
		Status:    "ready",
		BuildID:   h.manifest.BuildID.String(),
		Items:     h.engine.Len(),
		CreatedAt: h.manifest.CreatedAt,
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.WithContext(r.Context()).Warn().Err(err).Msg("Cache ping failed")
			resp.Cache = "degraded"
		}
	}

	status := http.StatusOK
	if resp.Items == 0 {
		resp.Status = "empty"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, status, resp)
}
