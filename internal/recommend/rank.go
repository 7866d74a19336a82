package recommend

import (
	"sort"
	"strings"
)

// Thresholds are the quality gates a recommendation must pass.
type Thresholds struct {
	MinRating float64 `json:"min_rating"`
	MinVotes  int     `json:"min_votes"`
}

// RecommendRequest asks for titles similar to Title.
type RecommendRequest struct {
	Title string
	TopK  int
	Thresholds
}

// NewRecommendRequest returns a request carrying the default parameters.
func NewRecommendRequest(title string) RecommendRequest {
	return RecommendRequest{
		Title: title,
		TopK:  DefaultTopK,
		Thresholds: Thresholds{
			MinRating: DefaultMinRating,
			MinVotes:  DefaultMinVotes,
		},
	}
}

// Recommendation is one ranked similar title.
type Recommendation struct {
	Title      string  `json:"title"`
	Rating     float64 `json:"rating"`
	Votes      int     `json:"votes"`
	Similarity float64 `json:"similarity"`
}

// RecommendResult is a resolved title with its ranked neighbours.
type RecommendResult struct {
	Input           string           `json:"input"`
	ResolvedTitle   string           `json:"resolved_title"`
	Corrected       bool             `json:"corrected"`
	MatchScore      float64          `json:"match_score"`
	Filters         Thresholds       `json:"filters"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Recommend resolves the trimmed req.Title and ranks the most similar
// catalog items that pass the quality thresholds. The source item never
// appears in its own results. Input echoes req.Title as given. A
// *ResolutionError is returned when the title cannot be resolved.
func (e *Engine) Recommend(req RecommendRequest) (*RecommendResult, error) {
	input := strings.TrimSpace(req.Title)
	res, err := e.Resolve(input)
	if err != nil {
		return nil, err
	}

	recs := e.rank(res.Row, req.TopK, req.Thresholds)
	e.logger.Debug().
		Str("input", input).
		Str("resolved_title", res.Title).
		Bool("exact", res.Exact).
		Int("results", len(recs)).
		Msg("recommendations ranked")

	return &RecommendResult{
		Input:           req.Title,
		ResolvedTitle:   res.Title,
		Corrected:       !res.Exact,
		MatchScore:      res.Score,
		Filters:         req.Thresholds,
		Recommendations: recs,
	}, nil
}

// rank orders the row's similarity scores and keeps up to topK qualifying
// items. Ties break by ascending column, except that the source row sorts
// ahead of every item it ties with so that dropping the leading entry always
// drops the source.
func (e *Engine) rank(row, topK int, th Thresholds) []Recommendation {
	recs := make([]Recommendation, 0, max(topK, 0))
	if topK <= 0 {
		return recs
	}

	scores := e.matrix.Row(row)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		if ia == row || ib == row {
			return ia == row
		}
		return ia < ib
	})

	for _, col := range order[1:] {
		if col == row {
			continue
		}
		it := e.items[col]
		rating, votes := it.Rating(), it.Votes()
		if rating < th.MinRating || votes < th.MinVotes {
			continue
		}
		recs = append(recs, Recommendation{
			Title:      it.OriginalTitle,
			Rating:     rating,
			Votes:      votes,
			Similarity: float64(scores[col]),
		})
		if len(recs) >= topK {
			break
		}
	}
	return recs
}
