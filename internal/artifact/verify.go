package artifact

import (
	"fmt"

	"github.com/google/uuid"
)

// Verify checks that the parts of set belong together. matrixBuild is the
// build id read from the matrix file.
func Verify(set *Set, matrixBuild uuid.UUID) error {
	if set.Matrix == nil {
		return fmt.Errorf("%w: no matrix", ErrArtifactMismatch)
	}
	if matrixBuild != set.Manifest.BuildID {
		return fmt.Errorf("%w: catalog build %s, matrix build %s",
			ErrArtifactMismatch, set.Manifest.BuildID, matrixBuild)
	}

	n := set.Matrix.N()
	if set.Manifest.ItemCount != len(set.Catalog) || n != len(set.Catalog) {
		return fmt.Errorf("%w: manifest says %d items, catalog has %d, matrix has %d rows",
			ErrArtifactMismatch, set.Manifest.ItemCount, len(set.Catalog), n)
	}

	for title, row := range set.Index {
		if row < 0 || row >= n {
			return fmt.Errorf("%w: index row %d for %q out of range", ErrArtifactMismatch, row, title)
		}
		if set.Catalog[row].OriginalTitle != title {
			return fmt.Errorf("%w: index maps %q to row %d titled %q",
				ErrArtifactMismatch, title, row, set.Catalog[row].OriginalTitle)
		}
	}
	for row, it := range set.Catalog {
		first, ok := set.Index[it.OriginalTitle]
		if !ok {
			return fmt.Errorf("%w: title %q at row %d missing from index", ErrArtifactMismatch, it.OriginalTitle, row)
		}
		if first > row {
			return fmt.Errorf("%w: index maps %q past its first row %d", ErrArtifactMismatch, it.OriginalTitle, row)
		}
	}
	return nil
}
