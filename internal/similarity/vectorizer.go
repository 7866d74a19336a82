// Package similarity turns item soups into term-count vectors and computes
// the dense pairwise cosine similarity matrix over the whole catalog.
package similarity

import (
	"sort"
	"strings"
	"unicode"
)

// Term is one non-zero entry of a sparse count vector.
type Term struct {
	Index int
	Count float64
}

// Vector is a sparse term-count vector, ordered by term index.
type Vector []Term

// Vectorizer maps documents into a shared term-count space.
type Vectorizer struct {
	Vocabulary map[string]int
	terms      []string
}

// Tokenize lowercases doc and returns every run of two or more word
// characters that is not a stop word.
func Tokenize(doc string) []string {
	words := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !isWordRune(r)
	})
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) < 2 || IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Fit builds the vocabulary from docs. Term indexes follow sorted term order,
// so the same corpus always yields the same vocabulary.
func Fit(docs []string) *Vectorizer {
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, tok := range Tokenize(doc) {
			seen[tok] = struct{}{}
		}
	}
	terms := make([]string, 0, len(seen))
	for tok := range seen {
		terms = append(terms, tok)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, tok := range terms {
		vocab[tok] = i
	}
	return &Vectorizer{Vocabulary: vocab, terms: terms}
}

// Size returns the vocabulary size.
func (v *Vectorizer) Size() int {
	return len(v.terms)
}

// Transform counts the known terms of doc.
func (v *Vectorizer) Transform(doc string) Vector {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(doc) {
		if idx, ok := v.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	vec := make(Vector, 0, len(counts))
	for idx, c := range counts {
		vec = append(vec, Term{Index: idx, Count: c})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Index < vec[j].Index })
	return vec
}

// FitTransform fits the vocabulary on docs and returns one vector per doc.
func FitTransform(docs []string) (*Vectorizer, []Vector) {
	v := Fit(docs)
	vecs := make([]Vector, len(docs))
	for i, doc := range docs {
		vecs[i] = v.Transform(doc)
	}
	return v, vecs
}
