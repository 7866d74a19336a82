// Package catalog defines the movie catalog record and turns raw TMDB metadata
// into the normalized tokens and soups the similarity matrix is built from.
package catalog

// Item is one catalog row. Its position in the Catalog is its row and column
// in the similarity matrix.
type Item struct {
	ID               int64    `json:"id"`
	OriginalTitle    string   `json:"original_title"`
	Director         *string  `json:"director,omitempty"`
	Cast             []string `json:"cast"`
	Genres           []string `json:"genres"`
	Keywords         []string `json:"keywords"`
	Runtime          *int     `json:"runtime,omitempty"`
	OriginalLanguage string   `json:"original_language"`
	VoteAverage      *float64 `json:"vote_average,omitempty"`
	VoteCount        *int     `json:"vote_count,omitempty"`
	Soup             string   `json:"soup"`
}

// Rating returns the vote average, or 0 when none was recorded.
func (it Item) Rating() float64 {
	if it.VoteAverage == nil {
		return 0
	}
	return *it.VoteAverage
}

// Votes returns the vote count, or 0 when none was recorded.
func (it Item) Votes() int {
	if it.VoteCount == nil {
		return 0
	}
	return *it.VoteCount
}

// Catalog is the ordered, read-only list of items.
type Catalog []Item

// TitleIndex maps each original title to its row. When a title repeats, the
// first row keeps it and later duplicates are shadowed.
func (c Catalog) TitleIndex() map[string]int {
	idx := make(map[string]int, len(c))
	for row, it := range c {
		if _, dup := idx[it.OriginalTitle]; !dup {
			idx[it.OriginalTitle] = row
		}
	}
	return idx
}

// Titles returns the original titles in catalog order.
func (c Catalog) Titles() []string {
	titles := make([]string, len(c))
	for i, it := range c {
		titles[i] = it.OriginalTitle
	}
	return titles
}
