package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/domain/track"
)

func ids(tracks []*track.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestRank(t *testing.T) {
	songs := catalog.New([]string{"01 Piano Man.mp3", "02 Drums.mp3", "03 Pianoforte.mp3"})

	tests := []struct {
		name     string
		catalog  *catalog.Catalog
		query    string
		expected []string
	}{
		{
			name:     "substring match falls to name order",
			catalog:  songs,
			query:    "pia",
			expected: []string{"01 Piano Man.mp3", "03 Pianoforte.mp3"},
		},
		{
			name:     "all words must match one track",
			catalog:  songs,
			query:    "drums piano",
			expected: []string{},
		},
		{
			name:     "case insensitive",
			catalog:  songs,
			query:    "DRUMS",
			expected: []string{"02 Drums.mp3"},
		},
		{
			name:     "no match",
			catalog:  songs,
			query:    "guitar",
			expected: []string{},
		},
		{
			name:     "full prefix ranks first",
			catalog:  catalog.New([]string{"Blue Train.mp3", "A Train.mp3", "Train Song.mp3"}),
			query:    "train",
			expected: []string{"Train Song.mp3", "A Train.mp3", "Blue Train.mp3"},
		},
		{
			name:     "prefix uses the normalized query",
			catalog:  catalog.New([]string{"the piano man.mp3", "piano man.mp3"}),
			query:    "  Piano   MAN ",
			expected: []string{"piano man.mp3", "the piano man.mp3"},
		},
		{
			name:     "underscore and hyphen split name words",
			catalog:  catalog.New([]string{"rock_and-roll.mp3", "rockabilly.mp3"}),
			query:    "roll rock",
			expected: []string{"rock_and-roll.mp3"},
		},
		{
			name:     "percent-encoded identifiers match their display name",
			catalog:  catalog.New([]string{"Blue%20Monk.mp3", "Red.mp3"}),
			query:    "monk",
			expected: []string{"Blue%20Monk.mp3"},
		},
		{
			name:     "encoded extension is not searchable",
			catalog:  catalog.New([]string{"Song%2Emp3", "mp3 mix.mp3"}),
			query:    "mp3",
			expected: []string{"mp3 mix.mp3"},
		},
		{
			name:     "extension is not searchable",
			catalog:  songs,
			query:    "mp3",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Rank(tt.catalog, tt.query)))
		})
	}
}

func TestRank_EmptyQueryReturnsCatalog(t *testing.T) {
	catalogs := []*catalog.Catalog{
		catalog.New(nil),
		catalog.Placeholder(),
		catalog.New([]string{"z.mp3", "a.mp3", "m.mp3"}),
	}
	for _, c := range catalogs {
		for _, q := range []string{"", "   ", "\t\n"} {
			assert.Equal(t, c.IDs(), ids(Rank(c, q)))
		}
	}
}

func TestRank_ReturnsCatalogReferences(t *testing.T) {
	c := catalog.New([]string{"a.mp3", "b.mp3"})

	result := Rank(c, "b")

	assert.Len(t, result, 1)
	assert.Same(t, c.At(1), result[0])
}

func TestRank_NormalizedQueriesAgree(t *testing.T) {
	c := catalog.New([]string{
		"Piano Man.mp3", "The Piano Man Returns.mp3", "Man on the Moon.mp3", "piano_man-live.mp3",
	})

	equivalent := [][2]string{
		{"Piano Man", "  piano   man "},
		{"moon", "MOON\t"},
		{"man piano", "man  PIANO"},
	}
	for _, pair := range equivalent {
		assert.Equal(t, ids(Rank(c, pair[0])), ids(Rank(c, pair[1])), "queries %q and %q", pair[0], pair[1])
	}
}

func TestRank_Deterministic(t *testing.T) {
	c := catalog.New([]string{"b a.mp3", "a b.mp3", "a a.mp3", "b b.mp3"})

	first := ids(Rank(c, "a"))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ids(Rank(c, "a")))
	}
}

func TestRank_DuplicateQueryWordsCountOnce(t *testing.T) {
	c := catalog.New([]string{"b piano.mp3", "a piano.mp3"})

	// Both tracks match "piano" once; the name decides.
	assert.Equal(t, []string{"a piano.mp3", "b piano.mp3"}, ids(Rank(c, "piano piano")))
}

func TestEntries(t *testing.T) {
	c := catalog.New([]string{"01 Piano Man.mp3", "02 Drums.mp3", "03 Pianoforte.mp3"})

	entries := Entries(c, "pia")

	assert.Equal(t, []Entry{
		{Index: 0, ID: "01 Piano Man.mp3", DisplayName: "01 Piano Man"},
		{Index: 2, ID: "03 Pianoforte.mp3", DisplayName: "03 Pianoforte"},
	}, entries)
}
