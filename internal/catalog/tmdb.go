package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadStats reports what the corpus loader saw.
type LoadStats struct {
	MovieRows       int
	CreditRows      int
	Items           int
	MissingCredits  int
	MalformedFields int
}

// LoadTMDB reads the TMDB 5000 movies and credits CSV files and joins them on id.
func LoadTMDB(moviesPath, creditsPath string) (Catalog, LoadStats, error) {
	mf, err := os.Open(moviesPath)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open movies csv: %w", err)
	}
	defer mf.Close()

	cf, err := os.Open(creditsPath)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open credits csv: %w", err)
	}
	defer cf.Close()

	return ReadTMDB(mf, cf)
}

type credits struct {
	cast []Entry
	crew []Entry
	bad  int
}

// ReadTMDB joins a movies CSV and a credits CSV. Items keep the movies file
// order; movies without a credits row are dropped. Malformed list fields are
// counted and treated as empty.
func ReadTMDB(movies, creditsCSV io.Reader) (Catalog, LoadStats, error) {
	var stats LoadStats

	creditsByID, n, err := readCredits(creditsCSV)
	if err != nil {
		return nil, stats, err
	}
	stats.CreditRows = n

	r := newReader(movies)
	header, err := r.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read movies header: %w", err)
	}
	col, err := columns(header, "id", "original_title", "genres", "keywords", "runtime",
		"original_language", "vote_average", "vote_count")
	if err != nil {
		return nil, stats, fmt.Errorf("movies csv: %w", err)
	}

	var cat Catalog
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read movies row %d: %w", stats.MovieRows+1, err)
		}
		stats.MovieRows++

		id, err := strconv.ParseInt(strings.TrimSpace(field(rec, col["id"])), 10, 64)
		if err != nil {
			stats.MissingCredits++
			continue
		}
		cr, ok := creditsByID[id]
		if !ok {
			stats.MissingCredits++
			continue
		}

		bad := cr.bad
		genres, ok := parseList(field(rec, col["genres"]))
		if !ok {
			bad++
		}
		keywords, ok := parseList(field(rec, col["keywords"]))
		if !ok {
			bad++
		}
		stats.MalformedFields += bad

		it := Item{
			ID:               id,
			OriginalTitle:    field(rec, col["original_title"]),
			Director:         ExtractDirector(cr.crew),
			Cast:             NormalizeNames(cr.cast),
			Genres:           NormalizeNames(genres),
			Keywords:         NormalizeNames(keywords),
			Runtime:          parseOptionalInt(field(rec, col["runtime"])),
			OriginalLanguage: strings.TrimSpace(field(rec, col["original_language"])),
			VoteAverage:      parseOptionalFloat(field(rec, col["vote_average"])),
			VoteCount:        parseOptionalInt(field(rec, col["vote_count"])),
		}
		it.Soup = BuildSoup(it)
		cat = append(cat, it)
	}

	stats.Items = len(cat)
	return cat, stats, nil
}

func readCredits(in io.Reader) (map[int64]credits, int, error) {
	r := newReader(in)
	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read credits header: %w", err)
	}
	// The credits file names its key movie_id; some exports rename it to id.
	idName := "movie_id"
	if indexOf(header, idName) < 0 {
		idName = "id"
	}
	col, err := columns(header, idName, "cast", "crew")
	if err != nil {
		return nil, 0, fmt.Errorf("credits csv: %w", err)
	}

	out := make(map[int64]credits)
	rows := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rows, fmt.Errorf("read credits row %d: %w", rows+1, err)
		}
		rows++

		id, err := strconv.ParseInt(strings.TrimSpace(field(rec, col[idName])), 10, 64)
		if err != nil {
			continue
		}
		if _, dup := out[id]; dup {
			continue
		}
		var c credits
		var ok bool
		if c.cast, ok = parseList(field(rec, col["cast"])); !ok {
			c.bad++
		}
		if c.crew, ok = parseList(field(rec, col["crew"])); !ok {
			c.bad++
		}
		out[id] = c
	}
	return out, rows, nil
}

func newReader(in io.Reader) *csv.Reader {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

func columns(header []string, names ...string) (map[string]int, error) {
	col := make(map[string]int, len(names))
	for _, name := range names {
		i := indexOf(header, name)
		if i < 0 {
			return nil, fmt.Errorf("missing column %q", name)
		}
		col[name] = i
	}
	return col, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
			return i
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// parseList reports ok=false when a non-empty field is not a JSON list.
func parseList(raw string) ([]Entry, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	entries := ParseEntries(raw)
	return entries, entries != nil || strings.TrimSpace(raw) == "[]"
}

func parseOptionalInt(raw string) *int {
	f := parseOptionalFloat(raw)
	if f == nil {
		return nil
	}
	v := int(math.Round(*f))
	return &v
}

func parseOptionalFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}
