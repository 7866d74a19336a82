package fuzzy

import "sort"

// Match is one scored choice.
type Match struct {
	Choice string
	Score  float64
	Index  int
}

// Extract scores every choice against query and returns the best limit
// matches by descending score. Equal scores keep the order of choices.
// A limit <= 0 returns every match.
func Extract(query string, choices []string, limit int, scorer Scorer) []Match {
	if scorer == nil {
		scorer = WRatio
	}
	matches := make([]Match, len(choices))
	for i, c := range choices {
		matches[i] = Match{Choice: c, Score: scorer(query, c), Index: i}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// ExtractOne returns the best match, or false when there are no choices.
// Among equal scores the earliest choice wins.
func ExtractOne(query string, choices []string, scorer Scorer) (Match, bool) {
	if scorer == nil {
		scorer = WRatio
	}
	best := Match{Index: -1}
	for i, c := range choices {
		s := scorer(query, c)
		if best.Index < 0 || s > best.Score {
			best = Match{Choice: c, Score: s, Index: i}
		}
	}
	return best, best.Index >= 0
}
