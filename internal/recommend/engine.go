// Package recommend serves content-based recommendations, fuzzy title search
// and attribute filtering over an immutable catalog and similarity matrix.
//
// An Engine is built once from a loaded artifact set and never mutated, so
// every method is safe for concurrent use without locking.
package recommend

import (
	"errors"
	"fmt"

	"github.com/Sadana31/movieAPI/internal/catalog"
	"github.com/Sadana31/movieAPI/internal/fuzzy"
	"github.com/Sadana31/movieAPI/internal/observability"
	"github.com/Sadana31/movieAPI/internal/similarity"
)

// Defaults applied by callers that leave a parameter unset.
const (
	DefaultTopK           = 10
	DefaultMinRating      = 6.5
	DefaultMinVotes       = 200
	DefaultSearchLimit    = 10
	DefaultFilterLimit    = 10
	DefaultMatchThreshold = 70.0
	DefaultRuntimeWindow  = 10
)

// ErrInconsistentState is returned when the catalog and matrix disagree in size.
var ErrInconsistentState = errors.New("catalog and similarity matrix are not co-indexed")

// Config tunes an Engine.
type Config struct {
	// MatchThreshold is the minimum fuzzy score (0-100) accepted as an auto-correction.
	MatchThreshold float64
	// RuntimeWindow is the ± minutes accepted by the runtime filter.
	RuntimeWindow int
	// Scorer overrides the fuzzy scorer. Nil means fuzzy.WRatio.
	Scorer fuzzy.Scorer
	// Index is the title index stored with the catalog. Nil derives it
	// from the catalog.
	Index map[string]int
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		MatchThreshold: DefaultMatchThreshold,
		RuntimeWindow:  DefaultRuntimeWindow,
		Scorer:         fuzzy.WRatio,
	}
}

// Engine holds the read-only serving state.
type Engine struct {
	logger *observability.Logger
	items  catalog.Catalog
	matrix *similarity.Matrix
	index  TitleIndex
	titles []string
	config Config
}

// New builds an Engine over a catalog and its co-indexed similarity matrix.
func New(logger *observability.Logger, items catalog.Catalog, matrix *similarity.Matrix, cfg Config) (*Engine, error) {
	if matrix == nil {
		return nil, fmt.Errorf("%w: matrix is nil", ErrInconsistentState)
	}
	if matrix.N() != len(items) {
		return nil, fmt.Errorf("%w: %d items, %d matrix rows", ErrInconsistentState, len(items), matrix.N())
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg.Scorer == nil {
		cfg.Scorer = fuzzy.WRatio
	}
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = DefaultMatchThreshold
	}
	if cfg.RuntimeWindow < 0 {
		cfg.RuntimeWindow = DefaultRuntimeWindow
	}
	index, err := newTitleIndex(items, cfg.Index)
	if err != nil {
		return nil, err
	}
	cfg.Index = nil

	return &Engine{
		logger: logger.WithOperation("recommend"),
		items:  items,
		matrix: matrix,
		index:  index,
		titles: items.Titles(),
		config: cfg,
	}, nil
}

// Len returns the number of catalog items.
func (e *Engine) Len() int {
	return len(e.items)
}

// Index returns the title index.
func (e *Engine) Index() TitleIndex {
	return e.index
}
