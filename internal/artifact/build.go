package artifact

import (
	"context"
	"fmt"
	"time"

	"github.com/Sadana31/movieAPI/internal/catalog"
	"github.com/Sadana31/movieAPI/internal/observability"
	"github.com/Sadana31/movieAPI/internal/similarity"
)

// BuildInput names the raw corpus files.
type BuildInput struct {
	MoviesPath  string
	CreditsPath string
}

// BuildReport summarizes an offline build.
type BuildReport struct {
	Load           catalog.LoadStats
	VocabularySize int
	LoadDuration   time.Duration
	MatrixDuration time.Duration
}

// Build loads the raw corpus, derives every item's soup and computes the full
// similarity matrix. The returned set carries a fresh build id.
func Build(ctx context.Context, logger *observability.Logger, in BuildInput, opts similarity.BuildOptions) (*Set, BuildReport, error) {
	var report BuildReport

	start := time.Now()
	items, stats, err := catalog.LoadTMDB(in.MoviesPath, in.CreditsPath)
	if err != nil {
		return nil, report, fmt.Errorf("load corpus: %w", err)
	}
	report.Load = stats
	report.LoadDuration = time.Since(start)

	logger.Info().
		Int("movie_rows", stats.MovieRows).
		Int("items", stats.Items).
		Int("missing_credits", stats.MissingCredits).
		Int("malformed_fields", stats.MalformedFields).
		Dur("duration", report.LoadDuration).
		Msg("corpus loaded")

	set, vocab, err := BuildFromCatalog(ctx, items, opts)
	if err != nil {
		return nil, report, err
	}
	report.VocabularySize = vocab
	report.MatrixDuration = time.Since(start) - report.LoadDuration

	logger.Info().
		Str("build_id", set.Manifest.BuildID.String()).
		Int("vocabulary", vocab).
		Dur("duration", report.MatrixDuration).
		Msg("similarity matrix built")
	return set, report, nil
}

// BuildFromCatalog computes the similarity matrix for an already normalized
// catalog and wraps both in a new Set.
func BuildFromCatalog(ctx context.Context, items catalog.Catalog, opts similarity.BuildOptions) (*Set, int, error) {
	soups := make([]string, len(items))
	for i, it := range items {
		soups[i] = it.Soup
	}
	m, vocab, err := similarity.Build(ctx, soups, opts)
	if err != nil {
		return nil, 0, err
	}
	return NewSet(items, m), vocab, nil
}
