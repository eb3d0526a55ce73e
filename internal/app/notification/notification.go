package notification

import (
	"github.com/osa030/19player/internal/app/playback"
	"github.com/osa030/19player/internal/app/search"
)

// Kind identifies the payload of a notification.
type Kind int

const (
	KindSnapshot Kind = iota // Playback session changed
	KindList                 // Rendered list changed
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Snapshot is the read-only view of the playback session handed to renderers.
type Snapshot struct {
	Playback playback.Snapshot
	Index    int // Current catalog index, -1 when the catalog is empty
	Shuffle  bool
	Count    int // Catalog size
}

// List is an ordered list of tracks to render, with the query that produced it.
type List struct {
	Query   string
	Entries []search.Entry
}

// Notification is delivered to every subscriber.
type Notification struct {
	SequenceNo uint64
	Kind       Kind
	Snapshot   *Snapshot // Set for KindSnapshot
	List       *List     // Set for KindList
}
