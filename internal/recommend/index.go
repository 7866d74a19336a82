package recommend

import (
	"fmt"

	"github.com/Sadana31/movieAPI/internal/catalog"
)

// TitleIndex maps an original title to its catalog row.
type TitleIndex map[string]int

// newTitleIndex adopts a persisted index after checking that every entry
// names the row carrying that title. A nil index is derived from items.
func newTitleIndex(items catalog.Catalog, persisted map[string]int) (TitleIndex, error) {
	if persisted == nil {
		return TitleIndex(items.TitleIndex()), nil
	}
	for title, row := range persisted {
		if row < 0 || row >= len(items) || items[row].OriginalTitle != title {
			return nil, fmt.Errorf("%w: index maps %q to row %d", ErrInconsistentState, title, row)
		}
	}
	return TitleIndex(persisted), nil
}

// Lookup returns the row of an exact, case-sensitive title.
func (idx TitleIndex) Lookup(title string) (int, bool) {
	row, ok := idx[title]
	return row, ok
}
