// Package fuzzy scores approximate string matches on a 0-100 scale.
//
// WRatio combines a plain edit ratio with partial and token based ratios, so
// that a short query can match inside a longer title and word order matters
// less than spelling. All lengths are counted in runes.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

const (
	unbaseScale = 0.95
)

// Scorer scores the similarity of two strings on a 0-100 scale.
type Scorer func(a, b string) float64

// Ratio is the normalized indel similarity: 100 * 2*LCS / (len(a)+len(b)).
func Ratio(a, b string) float64 {
	la, lb := runeLen(a), runeLen(b)
	if la+lb == 0 {
		return 100
	}
	return 100 * float64(2*edlib.LCS(a, b)) / float64(la+lb)
}

// PartialRatio is the best Ratio of the shorter string against every
// same-length window of the longer one, including windows clipped at either end.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		if len(ra) == len(rb) {
			return 100
		}
		return 0
	}
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	best := partialWindows(ra, rb)
	if len(ra) == len(rb) && best < 100 {
		if s := partialWindows(rb, ra); s > best {
			best = s
		}
	}
	return best
}

func partialWindows(short, long []rune) float64 {
	n, m := len(short), len(long)
	s := string(short)
	best := 0.0
	consider := func(window []rune) bool {
		if r := Ratio(s, string(window)); r > best {
			best = r
		}
		return best >= 100
	}
	for i := 1; i < n; i++ {
		if consider(long[:i]) {
			return best
		}
	}
	for i := 0; i+n <= m; i++ {
		if consider(long[i : i+n]) {
			return best
		}
	}
	for i := m - n + 1; i < m; i++ {
		if i <= 0 {
			continue
		}
		if consider(long[i:]) {
			return best
		}
	}
	return best
}

// TokenSortRatio is the Ratio of both strings after sorting their words.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedJoin(strings.Fields(a)), sortedJoin(strings.Fields(b)))
}

// TokenSetRatio compares the shared words of a and b against each side's
// remainder. A string whose words are a subset of the other's scores 100.
func TokenSetRatio(a, b string) float64 {
	setA, setB := wordSet(a), wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	sect, diffAB, diffBA := splitSets(setA, setB)
	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sectJoined := strings.Join(sect, " ")
	abJoined := strings.Join(diffAB, " ")
	baJoined := strings.Join(diffBA, " ")

	if sectJoined == "" {
		return Ratio(abJoined, baJoined)
	}
	// The remainders are compared with the shared words put back in front.
	best := Ratio(sectJoined+" "+abJoined, sectJoined+" "+baJoined)
	if r := Ratio(sectJoined, sectJoined+" "+abJoined); r > best {
		best = r
	}
	if r := Ratio(sectJoined, sectJoined+" "+baJoined); r > best {
		best = r
	}
	return best
}

// PartialTokenRatio is PartialRatio over sorted words. Any shared word scores 100.
func PartialTokenRatio(a, b string) float64 {
	wordsA, wordsB := strings.Fields(a), strings.Fields(b)
	setA, setB := wordSet(a), wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	sect, diffAB, diffBA := splitSets(setA, setB)
	if len(sect) > 0 {
		return 100
	}

	best := PartialRatio(sortedJoin(wordsA), sortedJoin(wordsB))
	if len(wordsA) == len(diffAB) && len(wordsB) == len(diffBA) {
		return best
	}
	if r := PartialRatio(strings.Join(diffAB, " "), strings.Join(diffBA, " ")); r > best {
		best = r
	}
	return best
}

// WRatio is the weighted ratio: the plain Ratio, upgraded by token ratios for
// strings of similar length and by partial ratios when one is much longer.
func WRatio(a, b string) float64 {
	la, lb := runeLen(a), runeLen(b)
	if la == 0 || lb == 0 {
		return 0
	}

	lenRatio := float64(la) / float64(lb)
	if lb > la {
		lenRatio = float64(lb) / float64(la)
	}

	best := Ratio(a, b)
	if lenRatio < 1.5 {
		tokens := TokenSortRatio(a, b)
		if s := TokenSetRatio(a, b); s > tokens {
			tokens = s
		}
		return max(best, tokens*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio > 8 {
		partialScale = 0.6
	}
	best = max(best, PartialRatio(a, b)*partialScale)
	return max(best, PartialTokenRatio(a, b)*unbaseScale*partialScale)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func sortedJoin(words []string) string {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// splitSets returns the sorted intersection and both sorted differences.
func splitSets(a, b map[string]struct{}) (sect, diffAB, diffBA []string) {
	for w := range a {
		if _, ok := b[w]; ok {
			sect = append(sect, w)
		} else {
			diffAB = append(diffAB, w)
		}
	}
	for w := range b {
		if _, ok := a[w]; !ok {
			diffBA = append(diffBA, w)
		}
	}
	sort.Strings(sect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)
	return sect, diffAB, diffBA
}
