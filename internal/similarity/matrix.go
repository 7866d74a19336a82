package similarity

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Matrix is a dense, square, row-major similarity matrix.
type Matrix struct {
	n    int
	data []float32
}

// NewMatrix allocates an n×n zero matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, data: make([]float32, n*n)}
}

// FromData wraps row-major data as an n×n matrix.
func FromData(n int, data []float32) (*Matrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("matrix data has %d values, want %d", len(data), n*n)
	}
	return &Matrix{n: n, data: data}, nil
}

// N returns the number of rows (and columns).
func (m *Matrix) N() int { return m.n }

// At returns entry (i, j).
func (m *Matrix) At(i, j int) float32 { return m.data[i*m.n+j] }

// Row returns row i. The slice aliases the matrix and must not be modified.
func (m *Matrix) Row(i int) []float32 { return m.data[i*m.n : (i+1)*m.n] }

// Data returns the row-major backing slice.
func (m *Matrix) Data() []float32 { return m.data }

func (m *Matrix) set(i, j int, v float32) { m.data[i*m.n+j] = v }

// BuildOptions tunes the matrix computation.
type BuildOptions struct {
	// Workers bounds the number of rows computed concurrently. Zero means GOMAXPROCS.
	Workers int
	// OnStart, when set, is called once with the row count before any row is computed.
	OnStart func(rows int)
	// OnRow, when set, is called once per finished row. It may be called concurrently.
	OnRow func()
}

// CosineMatrix computes pairwise cosine similarity between vecs. Rows are
// computed in parallel through an inverted index; each pair is computed once
// and mirrored, so the result is exactly symmetric. An all-zero vector has
// similarity 0 with everything, itself included.
func CosineMatrix(ctx context.Context, vecs []Vector, opts BuildOptions) (*Matrix, error) {
	n := len(vecs)
	m := NewMatrix(n)
	if opts.OnStart != nil {
		opts.OnStart(n)
	}

	norms := make([]float64, n)
	postings := make(map[int][]posting)
	for doc, vec := range vecs {
		var sq float64
		for _, t := range vec {
			sq += t.Count * t.Count
			postings[t.Index] = append(postings[t.Index], posting{doc: doc, count: t.Count})
		}
		norms[doc] = math.Sqrt(sq)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dots := make([]float64, n)
			for _, t := range vecs[i] {
				for _, p := range postings[t.Index] {
					if p.doc >= i {
						dots[p.doc] += t.Count * p.count
					}
				}
			}
			if norms[i] > 0 {
				m.set(i, i, 1)
			}
			for j := i + 1; j < n; j++ {
				if dots[j] == 0 {
					continue
				}
				s := float32(dots[j] / (norms[i] * norms[j]))
				m.set(i, j, s)
				m.set(j, i, s)
			}
			if opts.OnRow != nil {
				opts.OnRow()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

type posting struct {
	doc   int
	count float64
}

// Build vectorizes soups and returns their cosine similarity matrix together
// with the vocabulary size.
func Build(ctx context.Context, soups []string, opts BuildOptions) (*Matrix, int, error) {
	v, vecs := FitTransform(soups)
	m, err := CosineMatrix(ctx, vecs, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("cosine matrix: %w", err)
	}
	return m, v.Size(), nil
}
