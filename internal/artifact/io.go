package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Sadana31/movieAPI/internal/observability"
)

// Save writes set into dir, replacing any previous artifacts. Each file is
// written beside its destination and renamed into place once complete.
func Save(ctx context.Context, logger *observability.Logger, dir string, set *Set) error {
	if set.Matrix == nil || set.Matrix.N() != len(set.Catalog) {
		return fmt.Errorf("%w: refusing to save an inconsistent set", ErrArtifactMismatch)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	catalogPath := filepath.Join(dir, CatalogFile)
	tmpCatalog := catalogPath + ".tmp"
	_ = os.Remove(tmpCatalog)

	db, err := openCatalog(tmpCatalog, false)
	if err != nil {
		return err
	}
	if err := writeCatalog(ctx, db, set); err != nil {
		db.Close()
		_ = os.Remove(tmpCatalog)
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close catalog db: %w", err)
	}

	matrixPath := filepath.Join(dir, MatrixFile)
	tmpMatrix := matrixPath + ".tmp"
	f, err := os.Create(tmpMatrix)
	if err != nil {
		return fmt.Errorf("create matrix file: %w", err)
	}
	if err := WriteMatrix(f, set.Manifest.BuildID, set.Matrix); err != nil {
		f.Close()
		_ = os.Remove(tmpMatrix)
		return fmt.Errorf("write matrix: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close matrix file: %w", err)
	}

	if err := os.Rename(tmpCatalog, catalogPath); err != nil {
		return err
	}
	if err := os.Rename(tmpMatrix, matrixPath); err != nil {
		return err
	}

	logger.Info().
		Str("dir", dir).
		Str("build_id", set.Manifest.BuildID.String()).
		Int("items", set.Manifest.ItemCount).
		Msg("artifacts saved")
	return nil
}

// Load reads the artifact set in dir and verifies that the catalog, title
// index and matrix come from the same build and agree on size and order.
// Any inconsistency returns an error wrapping ErrArtifactMismatch.
func Load(ctx context.Context, logger *observability.Logger, dir string) (*Set, error) {
	catalogPath := filepath.Join(dir, CatalogFile)
	matrixPath := filepath.Join(dir, MatrixFile)
	for _, p := range []string{catalogPath, matrixPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, p)
			}
			return nil, err
		}
	}

	db, err := openCatalog(catalogPath, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	manifest, err := readManifest(ctx, db)
	if err != nil {
		return nil, err
	}
	items, err := readItems(ctx, db)
	if err != nil {
		return nil, err
	}
	index, err := readIndex(ctx, db)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(matrixPath)
	if err != nil {
		return nil, fmt.Errorf("open matrix file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	matrixBuild, matrix, err := ReadMatrix(f, info.Size())
	if err != nil {
		return nil, err
	}

	set := &Set{Manifest: manifest, Catalog: items, Matrix: matrix, Index: index}
	if err := Verify(set, matrixBuild); err != nil {
		return nil, err
	}

	logger.Info().
		Str("dir", dir).
		Str("build_id", manifest.BuildID.String()).
		Int("items", len(items)).
		Msg("artifacts loaded")
	return set, nil
}
