package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sadana31/movieAPI/internal/cache"
	"github.com/Sadana31/movieAPI/internal/config"
	"github.com/Sadana31/movieAPI/internal/metrics"
	"github.com/Sadana31/movieAPI/internal/observability"
	"github.com/Sadana31/movieAPI/internal/recommend"
	"github.com/Sadana31/movieAPI/internal/validation"
)

// Recommender is the read-only engine surface the handlers need.
type Recommender interface {
	Recommend(req recommend.RecommendRequest) (*recommend.RecommendResult, error)
	Search(query string, limit int) recommend.SearchResult
	Filter(q recommend.FilterQuery) recommend.FilterResult
	Len() int
}

// MoviesHandler serves search, recommendation and filter requests.
type MoviesHandler struct {
	logger *observability.Logger
	engine Recommender
	cache  *cache.ResponseCache
	cfg    *config.Config
}

// NewMoviesHandler creates a movies handler. A nil cache disables caching.
func NewMoviesHandler(logger *observability.Logger, engine Recommender, respCache *cache.ResponseCache, cfg *config.Config) *MoviesHandler {
	if respCache == nil {
		respCache = cache.NewResponseCache(nil, logger, cache.ResponseCacheConfig{})
	}
	return &MoviesHandler{
		logger: logger,
		engine: engine,
		cache:  respCache,
		cfg:    cfg,
	}
}

// RecommendRequestDTO is the body of POST /recommend. Omitted numeric
// fields take the configured defaults.
type RecommendRequestDTO struct {
	Title     string   `json:"title" validate:"notblank,max=300"`
	TopK      *int     `json:"top_k" validate:"omitnil,min=1"`
	MinRating *float64 `json:"min_rating" validate:"omitnil,gte=0,lte=10"`
	MinVotes  *int     `json:"min_votes" validate:"omitnil,gte=0"`
}

// NotFoundDTO is the body returned when a title cannot be resolved.
type NotFoundDTO struct {
	Error      string   `json:"error"`
	Hint       string   `json:"hint,omitempty"`
	BestGuess  string   `json:"best_guess,omitempty"`
	MatchScore *float64 `json:"match_score,omitempty"`
}

// FilterRequestDTO is the body of POST /filter.
type FilterRequestDTO struct {
	Runtime  *int    `json:"runtime" validate:"omitnil,gte=0"`
	Director *string `json:"director" validate:"omitnil,max=200"`
	Cast     *string `json:"cast" validate:"omitnil,max=200"`
	Language *string `json:"language" validate:"omitnil,max=20"`
	Genre    *string `json:"genre" validate:"omitnil,max=100"`
	Limit    *int    `json:"limit" validate:"omitnil,min=1"`
}

// searchParams is the validated form of the GET /search query string.
type searchParams struct {
	Query string `json:"query" validate:"max=300"`
	Limit int    `json:"limit" validate:"min=1"`
}

// Search handles GET /search?query=&limit=.
func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.WithContext(ctx)

	q := r.URL.Query()
	if !q.Has("query") {
		writeError(w, logger, http.StatusBadRequest, "query is required", "")
		return
	}

	params := searchParams{Query: q.Get("query"), Limit: h.cfg.Search.DefaultLimit}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "limit must be an integer", err.Error())
			return
		}
		params.Limit = limit
	}
	if err := validation.Merge(
		validation.ValidateStruct(&params),
		validation.ValidateVar("limit", params.Limit, "max="+strconv.Itoa(h.cfg.Search.MaxLimit)),
	); err != nil {
		writeValidationError(w, logger, err)
		return
	}

	var resp recommend.SearchResult
	key, hit := h.lookup(ctx, "search", params, &resp)
	if hit {
		writeJSON(w, logger, http.StatusOK, resp)
		return
	}

	resp = h.engine.Search(params.Query, params.Limit)
	h.cache.Set(ctx, key, resp)

	logger.Debug().
		Str("query", params.Query).
		Int("results", len(resp.Results)).
		Msg("Search served")
	writeJSON(w, logger, http.StatusOK, resp)
}

// Recommend handles POST /recommend.
func (h *MoviesHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.WithContext(ctx)

	var reqDTO RecommendRequestDTO
	if err := decodeJSON(w, r, &reqDTO); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	req := h.recommendRequest(reqDTO)
	if err := validation.Merge(
		validation.ValidateStruct(&reqDTO),
		validation.ValidateVar("top_k", req.TopK, "max="+strconv.Itoa(h.cfg.Recommend.MaxTopK)),
	); err != nil {
		writeValidationError(w, logger, err)
		return
	}

	var resp recommend.RecommendResult
	key, hit := h.lookup(ctx, "recommend", req, &resp)
	if hit {
		writeJSON(w, logger, http.StatusOK, resp)
		return
	}

	result, err := h.engine.Recommend(req)
	var resErr *recommend.ResolutionError
	switch {
	case errors.As(err, &resErr):
		metrics.RecordResolution(metrics.ResolutionRejected, resErr.Score)
		logger.Info().
			Str("title", strings.TrimSpace(req.Title)).
			Str("best_guess", resErr.BestGuess).
			Float64("match_score", resErr.Score).
			Msg("Title not resolved")
		writeJSON(w, logger, http.StatusNotFound, notFound(resErr))
		return
	case err != nil:
		logger.Error().Err(err).Msg("Recommend failed")
		writeError(w, logger, http.StatusInternalServerError, "recommend failed", err.Error())
		return
	}

	if result.Corrected {
		metrics.RecordResolution(metrics.ResolutionCorrected, result.MatchScore)
	} else {
		metrics.RecordResolution(metrics.ResolutionExact, result.MatchScore)
	}
	metrics.RecommendationsReturned.Observe(float64(len(result.Recommendations)))
	h.cache.Set(ctx, key, result)

	writeJSON(w, logger, http.StatusOK, result)
}

// Filter handles POST /filter.
func (h *MoviesHandler) Filter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.WithContext(ctx)

	var reqDTO FilterRequestDTO
	if err := decodeJSON(w, r, &reqDTO); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	query := recommend.FilterQuery{
		Runtime:  reqDTO.Runtime,
		Director: reqDTO.Director,
		Cast:     reqDTO.Cast,
		Language: reqDTO.Language,
		Genre:    reqDTO.Genre,
		Limit:    h.cfg.Filter.DefaultLimit,
	}
	if reqDTO.Limit != nil {
		query.Limit = *reqDTO.Limit
	}
	if err := validation.Merge(
		validation.ValidateStruct(&reqDTO),
		validation.ValidateVar("limit", query.Limit, "max="+strconv.Itoa(h.cfg.Filter.MaxLimit)),
	); err != nil {
		writeValidationError(w, logger, err)
		return
	}

	var resp recommend.FilterResult
	key, hit := h.lookup(ctx, "filter", query, &resp)
	if hit {
		writeJSON(w, logger, http.StatusOK, resp)
		return
	}

	resp = h.engine.Filter(query)
	h.cache.Set(ctx, key, resp)
	writeJSON(w, logger, http.StatusOK, resp)
}

// recommendRequest fills omitted fields from configuration.
func (h *MoviesHandler) recommendRequest(dto RecommendRequestDTO) recommend.RecommendRequest {
	req := recommend.RecommendRequest{
		Title: dto.Title,
		TopK:  h.cfg.Recommend.TopK,
		Thresholds: recommend.Thresholds{
			MinRating: h.cfg.Recommend.MinRating,
			MinVotes:  h.cfg.Recommend.MinVotes,
		},
	}
	if dto.TopK != nil {
		req.TopK = *dto.TopK
	}
	if dto.MinRating != nil {
		req.MinRating = *dto.MinRating
	}
	if dto.MinVotes != nil {
		req.MinVotes = *dto.MinVotes
	}
	return req
}

// lookup reads a cached response for op and params into dst. The returned
// key is empty when params could not be keyed, which makes later Sets no-ops.
func (h *MoviesHandler) lookup(ctx context.Context, op string, params, dst interface{}) (string, bool) {
	if !h.cache.Enabled() {
		return "", false
	}
	key, err := h.cache.Key(op, params)
	if err != nil {
		h.logger.Warn().Err(err).Str("operation", op).Msg("Cache key failed")
		return "", false
	}
	hit := h.cache.Get(ctx, key, dst)
	metrics.RecordCache(op, hit)
	return key, hit
}

func notFound(err *recommend.ResolutionError) NotFoundDTO {
	body := NotFoundDTO{Error: "Movie not found"}
	if err.HasGuess {
		score := err.Score
		body.Hint = recommend.SearchHint
		body.BestGuess = err.BestGuess
		body.MatchScore = &score
	}
	return body
}
