// Package artifact persists and loads the serving artifact set: the catalog,
// its title index and the co-indexed similarity matrix.
//
// The catalog and index live in a SQLite database; the matrix lives in a
// flat binary file. Both carry the same build id, and Load refuses any set
// whose parts were not produced by the same build.
package artifact

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Sadana31/movieAPI/internal/catalog"
	"github.com/Sadana31/movieAPI/internal/similarity"
)

// File names inside an artifact directory.
const (
	CatalogFile = "catalog.db"
	MatrixFile  = "similarity.bin"
)

// Common errors
var (
	ErrArtifactMismatch = errors.New("artifact mismatch")
	ErrArtifactMissing  = errors.New("artifact missing")
)

// Manifest identifies one build of the artifact set.
type Manifest struct {
	BuildID   uuid.UUID `json:"build_id"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Set is a complete, consistent artifact set.
type Set struct {
	Manifest Manifest
	Catalog  catalog.Catalog
	Matrix   *similarity.Matrix
	// Index maps each title to the first row carrying it.
	Index map[string]int
}

// NewSet stamps a fresh build id on a catalog and matrix and derives the title index.
func NewSet(items catalog.Catalog, m *similarity.Matrix) *Set {
	return &Set{
		Manifest: Manifest{
			BuildID:   uuid.New(),
			ItemCount: len(items),
			CreatedAt: time.Now().UTC(),
		},
		Catalog: items,
		Matrix:  m,
		Index:   items.TitleIndex(),
	}
}
