package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sadana31/movieAPI/internal/artifact"
	"github.com/Sadana31/movieAPI/internal/catalog"
	"github.com/Sadana31/movieAPI/internal/recommend"
	"github.com/Sadana31/movieAPI/internal/similarity"
)

const testMovies = `budget,genres,id,keywords,original_language,original_title,runtime,title,vote_average,vote_count
237000000,"[{""id"": 28, ""name"": ""Action""}, {""id"": 878, ""name"": ""Science Fiction""}]",19995,"[{""id"": 1, ""name"": ""space marine""}]",en,Avatar,162,Avatar,7.2,11800
18500000,"[{""id"": 28, ""name"": ""Action""}, {""id"": 878, ""name"": ""Science Fiction""}]",679,"[{""id"": 1, ""name"": ""space marine""}]",en,Aliens,137,Aliens,7.7,3220
200000000,"[{""id"": 18, ""name"": ""Drama""}, {""id"": 10749, ""name"": ""Romance""}]",597,"[{""id"": 2, ""name"": ""shipwreck""}]",en,Titanic,194,Titanic,7.5,7562
29000000,"[{""id"": 18, ""name"": ""Drama""}, {""id"": 10749, ""name"": ""Romance""}]",11036,"[{""id"": 3, ""name"": ""first love""}]",en,The Notebook,123,The Notebook,7.7,3067
`

const testCredits = `movie_id,title,cast,crew
19995,Avatar,"[{""name"": ""Sam Worthington""}, {""name"": ""Zoe Saldana""}]","[{""job"": ""Director"", ""name"": ""James Cameron""}]"
679,Aliens,"[{""name"": ""Sigourney Weaver""}]","[{""job"": ""Director"", ""name"": ""James Cameron""}]"
597,Titanic,"[{""name"": ""Leonardo DiCaprio""}, {""name"": ""Kate Winslet""}]","[{""job"": ""Director"", ""name"": ""James Cameron""}]"
11036,The Notebook,"[{""name"": ""Ryan Gosling""}]","[{""job"": ""Director"", ""name"": ""Nick Cassavetes""}]"
`

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// buildFixture writes the CSVs and builds artifacts into a temp dir that
// becomes the configured artifact dir.
func buildFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	movies := filepath.Join(dir, "movies.csv")
	credits := filepath.Join(dir, "credits.csv")
	require.NoError(t, os.WriteFile(movies, []byte(testMovies), 0o644))
	require.NoError(t, os.WriteFile(credits, []byte(testCredits), 0o644))

	artifacts := filepath.Join(dir, "artifacts")
	t.Setenv("ARTIFACTS_DIR", artifacts)

	out, err := run(t, "build", "--json", "--movies", movies, "--credits", credits)
	require.NoError(t, err)

	var summary buildSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 4, summary.Items)
	assert.Equal(t, artifacts, summary.Dir)
	assert.NotEmpty(t, summary.BuildID)
	return artifacts
}

func TestCLI_BuildAndInspect(t *testing.T) {
	dir := buildFixture(t)

	out, err := run(t, "inspect", "--json", "--head", "2")
	require.NoError(t, err)

	var report inspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, dir, report.Dir)
	assert.Equal(t, 4, report.Manifest.ItemCount)
	assert.Equal(t, 4, report.IndexedTitles)
	assert.Zero(t, report.DuplicateTitles)
	require.Len(t, report.Head, 2)
	assert.Equal(t, "Avatar", report.Head[0].OriginalTitle)
}

func TestSummarize_CountsDuplicates(t *testing.T) {
	director := "jamescameron"
	items := catalog.Catalog{
		{OriginalTitle: "Avatar"},
		{OriginalTitle: "Avatar", Director: &director},
		{OriginalTitle: "Aliens"},
	}
	set := artifact.NewSet(items, similarity.NewMatrix(len(items)))
	e, err := recommend.New(nil, set.Catalog, set.Matrix, recommend.Config{Index: set.Index})
	require.NoError(t, err)

	r := summarize(set, e.Index(), "artifacts", 10)
	assert.Equal(t, 2, r.IndexedTitles)
	assert.Equal(t, 1, r.DuplicateTitles)
	assert.Equal(t, 2, r.MissingDirector)
	assert.Equal(t, 3, r.MissingRuntime)
	assert.Len(t, r.Head, 3)
}

func TestCLI_Recommend(t *testing.T) {
	buildFixture(t)

	out, err := run(t, "recommend", "--json", "--top-k", "2", "Avatar")
	require.NoError(t, err)

	var res recommend.RecommendResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Avatar", res.ResolvedTitle)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "Aliens", res.Recommendations[0].Title)
	assert.Equal(t, recommend.Thresholds{MinRating: 6.5, MinVotes: 200}, res.Filters)
}

func TestCLI_RecommendCorrectsTypos(t *testing.T) {
	buildFixture(t)

	out, err := run(t, "recommend", "--json", "Titanc")
	require.NoError(t, err)

	var res recommend.RecommendResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Titanic", res.ResolvedTitle)
	assert.True(t, res.Corrected)
}

func TestCLI_RecommendNotFound(t *testing.T) {
	buildFixture(t)

	out, err := run(t, "recommend", "--json", "Qqqqqqqqqqqqqq")
	require.Error(t, err)
	assert.True(t, errors.Is(err, recommend.ErrNotFound))
	assert.Contains(t, out, `"error": "Movie not found"`)
}

func TestCLI_SearchAndFilter(t *testing.T) {
	buildFixture(t)

	out, err := run(t, "search", "--json", "-n", "1", "the", "notebook")
	require.NoError(t, err)
	var search recommend.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &search))
	assert.Equal(t, "the notebook", search.Query)
	require.Len(t, search.Results, 1)
	assert.Equal(t, "The Notebook", search.Results[0].Title)

	out, err = run(t, "filter", "--json", "--director", "James Cameron", "--genre", "drama")
	require.NoError(t, err)
	var filter recommend.FilterResult
	require.NoError(t, json.Unmarshal([]byte(out), &filter))
	require.Equal(t, 1, filter.Count)
	assert.Equal(t, "Titanic", filter.Results[0].Title)
}

func TestCLI_MissingArtifacts(t *testing.T) {
	t.Setenv("ARTIFACTS_DIR", t.TempDir())

	_, err := run(t, "search", "avatar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movierec build")
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "movierec "+version+"\n", out)
}

func TestRenderTable(t *testing.T) {
	got := renderTable([]string{"Title", "Score"}, [][]string{{"Avatar", "100.0"}, {"Aliens"}},
		[]columnAlignment{alignLeft, alignRight}, true)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "Title")
	assert.Contains(t, lines[3], "Avatar")
	assert.Contains(t, lines[3], "100.0")
	assert.Contains(t, lines[4], "Aliens")
	assert.Empty(t, renderTable(nil, nil, nil, true))
}

func TestCLI_RemoteServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/recommend":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Movie not found","hint":"Try using /search endpoint","best_guess":"Avatar","match_score":42}`))
		case "/search":
			_, _ = w.Write([]byte(`{"query":"avatar","results":[{"title":"Avatar","score":100}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	t.Setenv("ARTIFACTS_DIR", t.TempDir())

	out, err := run(t, "--server", srv.URL, "search", "--json", "avatar")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Avatar"`)

	_, err = run(t, "--server", srv.URL, "recommend", "Avtr")
	var resErr *recommend.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "Avatar", resErr.BestGuess)
	assert.Equal(t, 42.0, resErr.Score)
	assert.True(t, resErr.HasGuess)
}
