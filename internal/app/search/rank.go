// Package search ranks catalog tracks against a free-text query.
package search

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/domain/track"
)

// Entry is one row of a ranked list.
type Entry struct {
	Index       int // Catalog index
	ID          string
	DisplayName string
}

type candidate struct {
	index      int
	name       string
	prefix     bool
	matchCount int
}

// Rank filters the catalog to tracks whose name matches every query word and
// orders them: full-query prefix matches first, then by match count, then by
// lower-cased name. An empty query returns the whole catalog in order.
// The result references tracks owned by the catalog.
func Rank(c *catalog.Catalog, query string) []*track.Track {
	indices := rankIndices(c, query)
	out := make([]*track.Track, len(indices))
	for i, idx := range indices {
		out[i] = c.At(idx)
	}
	return out
}

// Entries is Rank shaped for list rendering.
func Entries(c *catalog.Catalog, query string) []Entry {
	indices := rankIndices(c, query)
	out := make([]Entry, len(indices))
	for i, idx := range indices {
		t := c.At(idx)
		out[i] = Entry{Index: idx, ID: t.ID, DisplayName: t.Name}
	}
	return out
}

func rankIndices(c *catalog.Catalog, query string) []int {
	words := queryWords(query)
	if len(words) == 0 {
		indices := make([]int, c.Len())
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	normalized := strings.Join(words, " ")

	var candidates []candidate
	for i, t := range c.Tracks() {
		name := t.SearchName()
		count, ok := matchWords(nameWords(name), words)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{
			index:      i,
			name:       name,
			prefix:     strings.HasPrefix(name, normalized),
			matchCount: count,
		})
	}

	col := collate.New(language.Und)
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.matchCount != b.matchCount {
			return a.matchCount > b.matchCount
		}
		if r := col.CompareString(a.name, b.name); r != 0 {
			return r < 0
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.index < b.index
	})

	indices := make([]int, len(candidates))
	for i, cand := range candidates {
		indices[i] = cand.index
	}
	return indices
}

// queryWords lower-cases the query and splits it on whitespace runs.
func queryWords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// nameWords splits a lower-cased name on whitespace, underscore and hyphen.
func nameWords(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
}

// matchWords reports whether every query word is a substring of some name
// word, and how many distinct query words matched.
func matchWords(names, words []string) (int, bool) {
	seen := make(map[string]struct{}, len(words))
	count := 0
	for _, w := range words {
		if !containsSubstring(names, w) {
			return 0, false
		}
		if _, dup := seen[w]; !dup {
			seen[w] = struct{}{}
			count++
		}
	}
	return count, true
}

func containsSubstring(names []string, w string) bool {
	for _, n := range names {
		if strings.Contains(n, w) {
			return true
		}
	}
	return false
}
