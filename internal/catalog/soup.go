package catalog

import "strings"

// BuildSoup joins an item's tokens in the fixed order keywords, cast,
// director, genres. The order must not change between builds.
func BuildSoup(it Item) string {
	parts := make([]string, 0, len(it.Keywords)+len(it.Cast)+len(it.Genres)+1)
	parts = append(parts, it.Keywords...)
	parts = append(parts, it.Cast...)
	if it.Director != nil {
		parts = append(parts, *it.Director)
	}
	parts = append(parts, it.Genres...)
	return strings.Join(parts, " ")
}
