package similarity

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("The robertdowneyjr. x Action sciencefiction and über_hero")
	assert.Equal(t, []string{"robertdowneyjr", "action", "sciencefiction", "über_hero"}, tokens)
}

func TestFit_SortedVocabulary(t *testing.T) {
	v := Fit([]string{"zeta alpha", "beta alpha"})
	assert.Equal(t, 3, v.Size())
	assert.Equal(t, map[string]int{"alpha": 0, "beta": 1, "zeta": 2}, v.Vocabulary)
}

func TestTransform_CountsRepeats(t *testing.T) {
	v := Fit([]string{"action action drama"})
	vec := v.Transform("action drama action unknown")
	assert.Equal(t, Vector{{Index: 0, Count: 2}, {Index: 1, Count: 1}}, vec)
}

func TestCosineMatrix(t *testing.T) {
	soups := []string{
		"space alien jamescameron action",
		"space alien ridleyscott horror",
		"romance paris drama",
		"",
	}
	m, vocab, err := Build(context.Background(), soups, BuildOptions{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, m.N())
	assert.Equal(t, 9, vocab)

	// Two shared terms out of four in each doc: 2 / (2*2).
	assert.InDelta(t, 0.5, m.At(0, 1), 1e-6)
	assert.Zero(t, m.At(0, 2))

	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1.0, m.At(i, i), 1e-6, "diagonal row %d", i)
	}
	assert.Zero(t, m.At(3, 3), "empty soup has no self-similarity")

	for i := 0; i < m.N(); i++ {
		for j := 0; j < m.N(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
			assert.GreaterOrEqual(t, m.At(i, j), float32(0))
			assert.LessOrEqual(t, float64(m.At(i, j)), 1.0+1e-6)
		}
	}
}

func TestCosineMatrix_MatchesDirectComputation(t *testing.T) {
	soups := []string{
		"heist heist crime alpacino", "crime alpacino drama drama", "heist crime", "drama",
	}
	_, vecs := FitTransform(soups)
	m, err := CosineMatrix(context.Background(), vecs, BuildOptions{Workers: 3})
	require.NoError(t, err)

	for i := range vecs {
		for j := range vecs {
			if i == j {
				continue
			}
			assert.InDelta(t, directCosine(vecs[i], vecs[j]), m.At(i, j), 1e-6, "(%d,%d)", i, j)
		}
	}
}

func TestCosineMatrix_OnRowAndCancel(t *testing.T) {
	var rows int32
	total := -1
	_, _, err := Build(context.Background(), []string{"aa bb", "bb cc", "cc dd"}, BuildOptions{
		OnStart: func(n int) { total = n },
		OnRow:   func() { atomic.AddInt32(&rows, 1) },
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, int32(3), rows)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = Build(ctx, []string{"aa bb", "bb cc"}, BuildOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromData(t *testing.T) {
	m, err := FromData(2, []float32{1, 0.5, 0.5, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1}, m.Row(1))

	_, err = FromData(2, []float32{1})
	assert.Error(t, err)
}

func directCosine(a, b Vector) float64 {
	dense := func(v Vector) map[int]float64 {
		out := make(map[int]float64)
		for _, t := range v {
			out[t.Index] = t.Count
		}
		return out
	}
	da, db := dense(a), dense(b)
	var dot, na, nb float64
	for k, x := range da {
		dot += x * db[k]
		na += x * x
	}
	for _, y := range db {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
