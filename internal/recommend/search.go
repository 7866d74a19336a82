package recommend

import (
	"strings"

	"github.com/Sadana31/movieAPI/internal/fuzzy"
)

// SearchHit is one fuzzy title match.
type SearchHit struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SearchResult echoes the trimmed query with its matches.
type SearchResult struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

// Search returns up to limit titles ranked by fuzzy similarity to query.
// A blank query yields no results. A limit <= 0 uses DefaultSearchLimit.
func (e *Engine) Search(query string, limit int) SearchResult {
	q := strings.TrimSpace(query)
	out := SearchResult{Query: q, Results: []SearchHit{}}
	if q == "" {
		return out
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	for _, m := range fuzzy.Extract(q, e.titles, limit, e.config.Scorer) {
		out.Results = append(out.Results, SearchHit{Title: m.Choice, Score: m.Score})
	}
	return out
}
