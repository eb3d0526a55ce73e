// Package track provides the Track domain entity.
package track

import (
	"net/url"
	"strings"
)

// Extension is the media file extension stripped from identifiers for display.
const Extension = ".mp3"

// Track represents one playable item of the catalog.
// Tracks are immutable once loaded and referenced by catalog index.
type Track struct {
	ID   string // Opaque identifier (file name as listed in the manifest)
	Name string // Display name derived from ID
}

// New creates a Track and derives its display name.
func New(id string) Track {
	return Track{
		ID:   id,
		Name: DisplayName(id),
	}
}

// DisplayName reverses percent-encoding, then strips the media extension
// (case-insensitive). An invalid escape sequence leaves the text unchanged.
func DisplayName(id string) string {
	name := Unescape(id)
	if len(name) >= len(Extension) && strings.EqualFold(name[len(name)-len(Extension):], Extension) {
		name = name[:len(name)-len(Extension)]
	}
	return name
}

// Escape percent-escapes an identifier for transport.
func Escape(id string) string {
	return url.PathEscape(id)
}

// Unescape reverses Escape. Malformed input is returned as-is.
func Unescape(s string) string {
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return u
}

// SearchName returns the lower-cased display name used for searching.
func (t *Track) SearchName() string {
	return strings.ToLower(t.Name)
}
