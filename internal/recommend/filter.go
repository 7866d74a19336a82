package recommend

import (
	"strings"

	"github.com/Sadana31/movieAPI/internal/catalog"
)

// FilterQuery selects catalog items by attribute. Nil or blank fields are
// inactive. Director, Cast and Genre are normalized like catalog tokens
// before comparison.
type FilterQuery struct {
	Runtime  *int    `json:"runtime"`
	Director *string `json:"director"`
	Cast     *string `json:"cast"`
	Language *string `json:"language"`
	Genre    *string `json:"genre"`
	Limit    int     `json:"-"`
}

// FilterRow is one item that passed every active predicate.
type FilterRow struct {
	Title   string   `json:"original_title"`
	Rating  *float64 `json:"vote_average"`
	Votes   *int     `json:"vote_count"`
	Runtime *int     `json:"runtime"`
}

// FilterResult holds the applied query and the matching rows, capped at the limit.
type FilterResult struct {
	Applied FilterQuery `json:"filters_applied"`
	Count   int         `json:"count"`
	Results []FilterRow `json:"results"`
}

type predicate func(catalog.Item) bool

// Filter returns catalog items, in catalog order, that satisfy every active
// predicate of q. Items missing a filtered attribute never match it.
func (e *Engine) Filter(q FilterQuery) FilterResult {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultFilterLimit
	}
	preds := e.predicates(q)

	rows := []FilterRow{}
	for _, it := range e.items {
		if len(rows) >= limit {
			break
		}
		if !matchAll(it, preds) {
			continue
		}
		rows = append(rows, FilterRow{
			Title:   it.OriginalTitle,
			Rating:  it.VoteAverage,
			Votes:   it.VoteCount,
			Runtime: it.Runtime,
		})
	}

	q.Limit = limit
	return FilterResult{Applied: q, Count: len(rows), Results: rows}
}

func (e *Engine) predicates(q FilterQuery) []predicate {
	var preds []predicate

	if q.Runtime != nil {
		target, window := *q.Runtime, e.config.RuntimeWindow
		preds = append(preds, func(it catalog.Item) bool {
			if it.Runtime == nil {
				return false
			}
			return *it.Runtime >= target-window && *it.Runtime <= target+window
		})
	}
	if d := activeToken(q.Director); d != "" {
		preds = append(preds, func(it catalog.Item) bool {
			return it.Director != nil && *it.Director == d
		})
	}
	if c := activeToken(q.Cast); c != "" {
		preds = append(preds, func(it catalog.Item) bool {
			return anyContains(it.Cast, c)
		})
	}
	if g := activeToken(q.Genre); g != "" {
		preds = append(preds, func(it catalog.Item) bool {
			return anyContains(it.Genres, g)
		})
	}
	if q.Language != nil {
		if lang := strings.ToLower(strings.TrimSpace(*q.Language)); lang != "" {
			preds = append(preds, func(it catalog.Item) bool {
				return strings.ToLower(strings.TrimSpace(it.OriginalLanguage)) == lang
			})
		}
	}
	return preds
}

func activeToken(s *string) string {
	if s == nil {
		return ""
	}
	return catalog.NormalizeToken(*s)
}

// anyContains reports whether some element contains sub as a substring.
func anyContains(list []string, sub string) bool {
	for _, v := range list {
		if strings.Contains(v, sub) {
			return true
		}
	}
	return false
}

func matchAll(it catalog.Item, preds []predicate) bool {
	for _, p := range preds {
		if !p(it) {
			return false
		}
	}
	return true
}
