package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Robert Downey Jr.", "robertdowneyjr."},
		{"Science Fiction", "sciencefiction"},
		{"  Tom\tHanks \n", "tomhanks"},
		{"Zoë Saldaña", "zoësaldaña"},
		{"", ""},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeToken(tc.in))
		})
	}
}

func TestParseEntries_Malformed(t *testing.T) {
	assert.Empty(t, ParseEntries(""))
	assert.Empty(t, ParseEntries("not json"))
	assert.Empty(t, ParseEntries(`{"name": "not a list"}`))
	assert.Empty(t, ParseEntries(`[{"name": 12}]`))

	entries := ParseEntries(`[{"id": 28, "name": "Action"}, {"id": 12}]`)
	require.Len(t, entries, 2)
	assert.Equal(t, "Action", entries[0].Name)
	assert.Empty(t, entries[1].Name)
}

func TestNormalizeNames_DropsEmpty(t *testing.T) {
	names := NormalizeNames([]Entry{{Name: "Sam Worthington"}, {Name: "  "}, {Name: "Zoe Saldana"}})
	assert.Equal(t, []string{"samworthington", "zoesaldana"}, names)
}

func TestExtractDirector(t *testing.T) {
	t.Run("first director wins", func(t *testing.T) {
		crew := []Entry{
			{Name: "Jon Landau", Job: "Producer"},
			{Name: "James Cameron", Job: "Director"},
			{Name: "Someone Else", Job: "Director"},
		}
		got := ExtractDirector(crew)
		require.NotNil(t, got)
		assert.Equal(t, "jamescameron", *got)
	})

	t.Run("no director", func(t *testing.T) {
		assert.Nil(t, ExtractDirector([]Entry{{Name: "Jon Landau", Job: "Producer"}}))
		assert.Nil(t, ExtractDirector(nil))
	})

	t.Run("job is case sensitive", func(t *testing.T) {
		assert.Nil(t, ExtractDirector([]Entry{{Name: "A B", Job: "director"}}))
	})

	t.Run("crew entry without job", func(t *testing.T) {
		got := ExtractDirector(ParseEntries(`[{"name": "No Job"}, {"name": "Kathryn Bigelow", "job": "Director"}]`))
		require.NotNil(t, got)
		assert.Equal(t, "kathrynbigelow", *got)
	})
}

func TestBuildSoup_FieldOrder(t *testing.T) {
	dir := "jamescameron"
	it := Item{
		Keywords: []string{"space", "alien"},
		Cast:     []string{"samworthington"},
		Director: &dir,
		Genres:   []string{"action", "sciencefiction"},
	}
	assert.Equal(t, "space alien samworthington jamescameron action sciencefiction", BuildSoup(it))
}

func TestBuildSoup_NoDirector(t *testing.T) {
	it := Item{Keywords: []string{"heist"}, Genres: []string{"crime"}}
	assert.Equal(t, "heist crime", BuildSoup(it))
	assert.Empty(t, BuildSoup(Item{}))
}
