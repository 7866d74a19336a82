package catalog

import (
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DirectorJob is the crew job that marks a director.
const DirectorJob = "Director"

// Entry is one element of a TMDB cast, crew, keyword or genre list.
// Only the fields the normalizer reads are decoded.
type Entry struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// NormalizeToken lowercases s and deletes every whitespace rune, so
// "Robert Downey Jr." becomes "robertdowneyjr.".
func NormalizeToken(s string) string {
	// Casers keep state and must not be shared across goroutines.
	lowered := cases.Lower(language.Und).String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, lowered)
}

// ParseEntries decodes a JSON list field. Anything that is not a list of
// objects yields an empty slice.
func ParseEntries(raw string) []Entry {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

// NormalizeNames returns the normalized names of entries, in order.
// Entries without a usable name are dropped.
func NormalizeNames(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if tok := NormalizeToken(e.Name); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ExtractDirector returns the normalized name of the first crew entry whose
// job is exactly "Director". It returns nil when there is none.
func ExtractDirector(crew []Entry) *string {
	for _, e := range crew {
		if e.Job != DirectorJob {
			continue
		}
		tok := NormalizeToken(e.Name)
		if tok == "" {
			return nil
		}
		return &tok
	}
	return nil
}
