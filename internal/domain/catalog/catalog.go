// Package catalog provides the Catalog domain entity.
package catalog

import "github.com/osa030/19player/internal/domain/track"

// PlaceholderIDs is the fixed catalog used when the manifest cannot be retrieved.
var PlaceholderIDs = []string{"Song1.mp3", "Song2.mp3", "Song3.mp3"}

// Catalog is the ordered list of tracks available for a session.
// Indices are stable for the lifetime of the catalog.
type Catalog struct {
	tracks []track.Track
}

// New creates a catalog from identifiers, preserving their order.
func New(ids []string) *Catalog {
	tracks := make([]track.Track, len(ids))
	for i, id := range ids {
		tracks[i] = track.New(id)
	}
	return &Catalog{tracks: tracks}
}

// Placeholder returns the fallback catalog.
func Placeholder() *Catalog {
	return New(PlaceholderIDs)
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tracks)
}

// IsEmpty reports whether the catalog has no tracks.
func (c *Catalog) IsEmpty() bool {
	return c.Len() == 0
}

// At returns the track at index i, or nil if i is out of range.
func (c *Catalog) At(i int) *track.Track {
	if i < 0 || i >= c.Len() {
		return nil
	}
	return &c.tracks[i]
}

// Tracks returns references to every track in catalog order.
func (c *Catalog) Tracks() []*track.Track {
	refs := make([]*track.Track, c.Len())
	for i := range refs {
		refs[i] = &c.tracks[i]
	}
	return refs
}

// IDs returns all track identifiers in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, c.Len())
	for i := range ids {
		ids[i] = c.tracks[i].ID
	}
	return ids
}

// IndexOf returns the index of the track whose identifier, raw or unescaped,
// equals id.
func (c *Catalog) IndexOf(id string) (int, bool) {
	for i := 0; i < c.Len(); i++ {
		t := &c.tracks[i]
		if t.ID == id || track.Unescape(t.ID) == id {
			return i, true
		}
	}
	return -1, false
}
