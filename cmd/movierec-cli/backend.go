package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/Sadana31/movieAPI/internal/artifact"
	"github.com/Sadana31/movieAPI/internal/recommend"
	"github.com/Sadana31/movieAPI/pkg/engine"
)

// backend answers queries from local artifacts or a running API. Both
// report unresolvable titles as *recommend.ResolutionError.
type backend interface {
	Search(ctx context.Context, query string, limit int) (recommend.SearchResult, error)
	Recommend(ctx context.Context, req recommend.RecommendRequest) (*recommend.RecommendResult, error)
	Filter(ctx context.Context, q recommend.FilterQuery) (recommend.FilterResult, error)
}

// openBackend returns the remote backend when --server is set and otherwise
// loads the configured artifact set.
func openBackend(ctx context.Context, ui *UI) (backend, error) {
	if serverURL != "" {
		client, err := engine.NewClient(engine.ClientConfig{BaseURL: serverURL})
		if err != nil {
			return nil, err
		}
		return &remoteBackend{client: client}, nil
	}

	stop := ui.Spinner("Loading artifacts from " + cfg.Artifacts.Dir)
	set, err := artifact.Load(ctx, logger, cfg.Artifacts.Dir)
	stop()
	if err != nil {
		if errors.Is(err, artifact.ErrArtifactMissing) {
			return nil, fmt.Errorf("%w (run `movierec build` or `movierec fetch` first)", err)
		}
		return nil, err
	}

	e, err := recommend.New(logger, set.Catalog, set.Matrix, recommend.Config{
		MatchThreshold: cfg.Recommend.MatchThreshold,
		RuntimeWindow:  cfg.Filter.RuntimeWindow,
		Index:          set.Index,
	})
	if err != nil {
		return nil, err
	}
	return &localBackend{engine: e}, nil
}

type localBackend struct {
	engine *recommend.Engine
}

func (b *localBackend) Search(_ context.Context, query string, limit int) (recommend.SearchResult, error) {
	return b.engine.Search(query, limit), nil
}

func (b *localBackend) Recommend(_ context.Context, req recommend.RecommendRequest) (*recommend.RecommendResult, error) {
	return b.engine.Recommend(req)
}

func (b *localBackend) Filter(_ context.Context, q recommend.FilterQuery) (recommend.FilterResult, error) {
	return b.engine.Filter(q), nil
}

type remoteBackend struct {
	client *engine.Client
}

func (b *remoteBackend) Search(ctx context.Context, query string, limit int) (recommend.SearchResult, error) {
	resp, err := b.client.Search(ctx, query, limit)
	if err != nil {
		return recommend.SearchResult{}, err
	}
	out := recommend.SearchResult{Query: resp.Query, Results: make([]recommend.SearchHit, len(resp.Results))}
	for i, h := range resp.Results {
		out.Results[i] = recommend.SearchHit{Title: h.Title, Score: h.Score}
	}
	return out, nil
}

func (b *remoteBackend) Recommend(ctx context.Context, req recommend.RecommendRequest) (*recommend.RecommendResult, error) {
	topK, minRating, minVotes := req.TopK, req.MinRating, req.MinVotes
	resp, err := b.client.Recommend(ctx, engine.RecommendRequest{
		Title:     req.Title,
		TopK:      &topK,
		MinRating: &minRating,
		MinVotes:  &minVotes,
	})
	var nf *engine.NotFoundError
	if errors.As(err, &nf) {
		return nil, &recommend.ResolutionError{
			Query:     req.Title,
			BestGuess: nf.BestGuess,
			Score:     nf.MatchScore,
			HasGuess:  nf.BestGuess != "",
		}
	}
	if err != nil {
		return nil, err
	}

	out := &recommend.RecommendResult{
		Input:           resp.Input,
		ResolvedTitle:   resp.ResolvedTitle,
		Corrected:       resp.Corrected,
		MatchScore:      resp.MatchScore,
		Filters:         recommend.Thresholds{MinRating: resp.Filters.MinRating, MinVotes: resp.Filters.MinVotes},
		Recommendations: make([]recommend.Recommendation, len(resp.Recommendations)),
	}
	for i, r := range resp.Recommendations {
		out.Recommendations[i] = recommend.Recommendation(r)
	}
	return out, nil
}

func (b *remoteBackend) Filter(ctx context.Context, q recommend.FilterQuery) (recommend.FilterResult, error) {
	limit := q.Limit
	resp, err := b.client.Filter(ctx, engine.FilterRequest{
		Runtime:  q.Runtime,
		Director: q.Director,
		Cast:     q.Cast,
		Language: q.Language,
		Genre:    q.Genre,
		Limit:    &limit,
	})
	if err != nil {
		return recommend.FilterResult{}, err
	}

	out := recommend.FilterResult{Applied: q, Count: resp.Count, Results: make([]recommend.FilterRow, len(resp.Results))}
	for i, r := range resp.Results {
		out.Results[i] = recommend.FilterRow(r)
	}
	return out, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
