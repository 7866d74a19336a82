package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.InDelta(t, 100.0, Ratio("Avatar", "Avatar"), 1e-9)
	assert.InDelta(t, 83.333, Ratio("avatar", "Avatar"), 0.01)
	assert.InDelta(t, 100.0, Ratio("", ""), 1e-9)
	assert.InDelta(t, 0.0, Ratio("abc", "xyz"), 1e-9)
}

func TestPartialRatio(t *testing.T) {
	assert.InDelta(t, 100.0, PartialRatio("avatar", "avatar the way of water"), 1e-9)
	assert.InDelta(t, 100.0, PartialRatio("avatar the way of water", "avatar"), 1e-9)
	assert.InDelta(t, 100.0, PartialRatio("way", "avatar the way of water"), 1e-9)
	assert.InDelta(t, 0.0, PartialRatio("", "abc"), 1e-9)
	assert.Less(t, PartialRatio("xyz", "avatar"), 50.0)
}

func TestTokenRatios(t *testing.T) {
	assert.InDelta(t, 100.0, TokenSortRatio("knight dark the", "the dark knight"), 1e-9)
	assert.InDelta(t, 100.0, TokenSetRatio("dark knight", "the dark knight"), 1e-9)
	assert.InDelta(t, 0.0, TokenSetRatio("", "the dark knight"), 1e-9)
	assert.InDelta(t, 100.0, PartialTokenRatio("knight", "the dark knight rises"), 1e-9)
	assert.Less(t, TokenSetRatio("star wars", "star trek"), 100.0)
}

func TestTokenSetRatio_RemaindersKeepSharedWords(t *testing.T) {
	// "star wars" vs "star trek": 2*6/18 with "star " shared, not 2*1/8.
	assert.InDelta(t, 66.667, TokenSetRatio("star wars", "star trek"), 0.01)
	// "dark the knight" vs "dark the night rises": 2*14/35.
	assert.InDelta(t, 80.0, TokenSetRatio("knight the dark dark", "the dark night rises"), 0.01)
	// No shared words: the remainders are the whole strings.
	assert.InDelta(t, 90.909, TokenSetRatio("alien", "aliens"), 0.01)
}

func TestWRatio(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		atLeast float64
		atMost  float64
	}{
		{"exact", "Avatar", "Avatar", 100, 100},
		{"case mismatch", "avatar", "Avatar", 83, 84},
		{"misspelling", "Interstelar", "Interstellar", 90, 100},
		{"subtitle", "godfather", "The Godfather: Part II", 70, 100},
		{"word order", "Knight Dark The", "The Dark Knight", 90, 95.01},
		{"shared words with typo", "knight the dark dark", "the dark night rises", 75.99, 76.01},
		{"unrelated", "zzzz", "Avatar", 0, 30},
		{"empty query", "", "Avatar", 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WRatio(tc.a, tc.b)
			assert.GreaterOrEqual(t, got, tc.atLeast)
			assert.LessOrEqual(t, got, tc.atMost)
		})
	}
}

func TestExtract_OrderAndTies(t *testing.T) {
	scores := map[string]float64{"a": 50, "b": 90, "c": 50, "d": 90, "e": 10}
	scorer := func(_, choice string) float64 { return scores[choice] }

	got := Extract("q", []string{"a", "b", "c", "d", "e"}, 3, scorer)
	assert.Equal(t, []Match{
		{Choice: "b", Score: 90, Index: 1},
		{Choice: "d", Score: 90, Index: 3},
		{Choice: "a", Score: 50, Index: 0},
	}, got)

	all := Extract("q", []string{"a", "b"}, 0, scorer)
	assert.Len(t, all, 2)
}

func TestExtractOne(t *testing.T) {
	scores := map[string]float64{"a": 50, "b": 90, "c": 90}
	scorer := func(_, choice string) float64 { return scores[choice] }

	best, ok := ExtractOne("q", []string{"a", "b", "c"}, scorer)
	assert.True(t, ok)
	assert.Equal(t, Match{Choice: "b", Score: 90, Index: 1}, best)

	_, ok = ExtractOne("q", nil, nil)
	assert.False(t, ok)
}

func TestExtract_DefaultScorer(t *testing.T) {
	got := Extract("avatar", []string{"Titanic", "Avatar", "Alien"}, 1, nil)
	assert.Equal(t, "Avatar", got[0].Choice)
}
