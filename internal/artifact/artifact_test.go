package artifact

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sadana31/movieAPI/internal/catalog"
	"github.com/Sadana31/movieAPI/internal/observability"
	"github.com/Sadana31/movieAPI/internal/similarity"
)

func ptrS(v string) *string   { return &v }
func ptrI(v int) *int         { return &v }
func ptrF(v float64) *float64 { return &v }

func testCatalog() catalog.Catalog {
	items := catalog.Catalog{
		{ID: 19995, OriginalTitle: "Avatar", Director: ptrS("jamescameron"),
			Cast: []string{"samworthington"}, Genres: []string{"action"}, Keywords: []string{"alien"},
			Runtime: ptrI(162), OriginalLanguage: "en", VoteAverage: ptrF(7.2), VoteCount: ptrI(11800)},
		{ID: 679, OriginalTitle: "Aliens", Director: ptrS("jamescameron"),
			Cast: []string{"sigourneyweaver"}, Genres: []string{"action"}, Keywords: []string{"alien"},
			OriginalLanguage: "en"},
		{ID: 1, OriginalTitle: "Avatar", Genres: []string{"documentary"}, OriginalLanguage: "en"},
	}
	for i := range items {
		items[i].Soup = catalog.BuildSoup(items[i])
	}
	return items
}

func testSet(t *testing.T) *Set {
	t.Helper()
	set, _, err := BuildFromCatalog(context.Background(), testCatalog(), similarity.BuildOptions{Workers: 2})
	require.NoError(t, err)
	return set
}

func TestNewSet_FirstWinsIndex(t *testing.T) {
	set := testSet(t)
	assert.Equal(t, map[string]int{"Avatar": 0, "Aliens": 1}, set.Index)
	assert.Equal(t, 3, set.Manifest.ItemCount)
	assert.NotEqual(t, uuid.Nil, set.Manifest.BuildID)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	set := testSet(t)

	require.NoError(t, Save(ctx, observability.NopLogger(), dir, set))
	loaded, err := Load(ctx, observability.NopLogger(), dir)
	require.NoError(t, err)

	assert.Equal(t, set.Manifest.BuildID, loaded.Manifest.BuildID)
	assert.Equal(t, set.Manifest.ItemCount, loaded.Manifest.ItemCount)
	assert.Equal(t, set.Catalog, loaded.Catalog)
	assert.Equal(t, set.Index, loaded.Index)
	assert.Equal(t, set.Matrix.Data(), loaded.Matrix.Data())

	// Absent values stay absent.
	assert.Nil(t, loaded.Catalog[1].Runtime)
	assert.Nil(t, loaded.Catalog[1].VoteAverage)
	assert.Nil(t, loaded.Catalog[2].Director)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(context.Background(), observability.NopLogger(), t.TempDir())
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestLoad_MixedBuilds(t *testing.T) {
	ctx := context.Background()
	a, b := t.TempDir(), t.TempDir()
	require.NoError(t, Save(ctx, observability.NopLogger(), a, testSet(t)))
	require.NoError(t, Save(ctx, observability.NopLogger(), b, testSet(t)))

	// Same shape, different build.
	data, err := os.ReadFile(filepath.Join(b, MatrixFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(a, MatrixFile), data, 0o644))

	_, err = Load(ctx, observability.NopLogger(), a)
	assert.ErrorIs(t, err, ErrArtifactMismatch)
	assert.Contains(t, err.Error(), "matrix build")
}

func TestLoad_TruncatedMatrix(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Save(ctx, observability.NopLogger(), dir, testSet(t)))

	path := filepath.Join(dir, MatrixFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0o644))

	_, err = Load(ctx, observability.NopLogger(), dir)
	assert.ErrorIs(t, err, ErrArtifactMismatch)
}

func TestReadMatrix_BadMagic(t *testing.T) {
	_, _, err := ReadMatrix(strings.NewReader("NOTAMATRIX-------------------------"), -1)
	assert.ErrorIs(t, err, ErrArtifactMismatch)
}

func TestWriteReadMatrix(t *testing.T) {
	m, err := similarity.FromData(2, []float32{1, 0.25, 0.25, 1})
	require.NoError(t, err)
	id := uuid.New()

	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, id, m))
	assert.Equal(t, matrixHeaderSize+16, buf.Len())

	gotID, got, err := ReadMatrix(&buf, int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, m.Data(), got.Data())
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Set)
	}{
		{"count mismatch", func(s *Set) { s.Manifest.ItemCount = 2 }},
		{"short catalog", func(s *Set) { s.Catalog = s.Catalog[:2] }},
		{"index out of range", func(s *Set) { s.Index["Ghost"] = 7 }},
		{"index names wrong row", func(s *Set) { s.Index["Aliens"] = 0 }},
		{"title missing from index", func(s *Set) { delete(s.Index, "Aliens") }},
		{"index skips first row", func(s *Set) { s.Index["Avatar"] = 2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set := testSet(t)
			tc.mutate(set)
			err := Verify(set, set.Manifest.BuildID)
			assert.ErrorIs(t, err, ErrArtifactMismatch)
		})
	}

	set := testSet(t)
	assert.NoError(t, Verify(set, set.Manifest.BuildID))
	assert.ErrorIs(t, Verify(set, uuid.New()), ErrArtifactMismatch)
}

func TestFetcher(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "payload:"+r.URL.Path)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MatrixFile), []byte("existing"), 0o644))

	var progressed bytes.Buffer
	f := NewFetcher(nil, 0)
	f.Progress = func(name string, size int64) io.Writer { return &progressed }

	results, err := f.FetchAll(context.Background(), dir, map[string]string{
		CatalogFile: srv.URL + "/catalog",
		MatrixFile:  srv.URL + "/matrix",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Skipped)
	assert.True(t, results[1].Skipped)
	assert.Equal(t, int32(1), hits.Load())

	got, err := os.ReadFile(filepath.Join(dir, CatalogFile))
	require.NoError(t, err)
	assert.Equal(t, "payload:/catalog", string(got))
	assert.Equal(t, "payload:/catalog", progressed.String())

	existing, err := os.ReadFile(filepath.Join(dir, MatrixFile))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(existing))

	_, err = f.Fetch(context.Background(), "x", srv.URL+"/missing", filepath.Join(dir, "x"))
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "x"))
	assert.True(t, os.IsNotExist(statErr))
}
