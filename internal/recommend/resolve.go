package recommend

import (
	"errors"
	"fmt"

	"github.com/Sadana31/movieAPI/internal/fuzzy"
)

// ErrNotFound means a title could not be resolved to a catalog item.
var ErrNotFound = errors.New("movie not found")

// SearchHint is the hint returned with a rejected resolution.
const SearchHint = "Try using /search endpoint"

// ResolutionError reports a rejected title. When HasGuess is set, BestGuess
// and Score describe the closest title, which was not substituted.
type ResolutionError struct {
	Query     string
	BestGuess string
	Score     float64
	HasGuess  bool
}

func (e *ResolutionError) Error() string {
	if !e.HasGuess {
		return fmt.Sprintf("%s: %q", ErrNotFound, e.Query)
	}
	return fmt.Sprintf("%s: %q (best guess %q, score %.1f)", ErrNotFound, e.Query, e.BestGuess, e.Score)
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *ResolutionError) Unwrap() error {
	return ErrNotFound
}

// Resolution is a title mapped to its catalog row.
type Resolution struct {
	Title string
	Row   int
	// Exact is set when the title was an index hit and no fuzzy match ran.
	Exact bool
	// Score is the fuzzy score of an auto-correction. It is 100 for exact hits.
	Score float64
}

// Resolve maps title to a catalog row. An exact, case-sensitive index hit
// short-circuits fuzzy matching. Otherwise the best fuzzy match is accepted
// when its score reaches the match threshold, and rejected with a
// *ResolutionError carrying the guess when it does not.
func (e *Engine) Resolve(title string) (Resolution, error) {
	if row, ok := e.index.Lookup(title); ok {
		return Resolution{Title: title, Row: row, Exact: true, Score: 100}, nil
	}

	best, ok := fuzzy.ExtractOne(title, e.titles, e.config.Scorer)
	if !ok {
		return Resolution{}, &ResolutionError{Query: title}
	}
	if best.Score < e.config.MatchThreshold {
		e.logger.Debug().
			Str("query", title).
			Str("best_guess", best.Choice).
			Float64("score", best.Score).
			Msg("title resolution rejected")
		return Resolution{}, &ResolutionError{Query: title, BestGuess: best.Choice, Score: best.Score, HasGuess: true}
	}

	// Duplicate titles resolve to the indexed (first) row.
	row, ok := e.index.Lookup(best.Choice)
	if !ok {
		row = best.Index
	}
	return Resolution{Title: best.Choice, Row: row, Score: best.Score}, nil
}
