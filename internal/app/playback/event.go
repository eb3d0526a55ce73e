package playback

import "github.com/osa030/19player/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackLoaded      EventType = iota // A new binding replaced the previous one
	EventStateChanged                      // Play/pause state changed
	EventPositionUpdated                   // Position advanced or was seeked
	EventDurationResolved                  // Metadata became available
	EventCompleted                         // The track played to its end
	EventError                             // The primitive failed to load or play
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackLoaded:
		return "track_loaded"
	case EventStateChanged:
		return "state_changed"
	case EventPositionUpdated:
		return "position_updated"
	case EventDurationResolved:
		return "duration_resolved"
	case EventCompleted:
		return "completed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type       EventType
	Generation uint64       // Binding the event belongs to
	Track      *track.Track // Bound track (nil if none)
	State      State
	Position   float64
	Duration   float64
	Err        error // Set for EventError
}

// NotificationKind identifies what a media primitive is reporting.
type NotificationKind int

const (
	NotifyPosition NotificationKind = iota // Periodic time update
	NotifyDuration                         // Metadata loaded
	NotifyEnded                            // Reached the end of the resource
	NotifyError                            // Resource failed
)

// Notification is reported by a Primitive. Generation is the value passed to
// the Load call the notification belongs to.
type Notification struct {
	Generation uint64
	Kind       NotificationKind
	Position   float64
	Duration   float64
	Err        error
}

// Primitive is the external media-playback primitive the engine drives.
// Load must not block on resource fetching; results arrive as notifications.
type Primitive interface {
	Load(locator string, generation uint64)
	Play()
	Pause()
	SetPosition(seconds float64)
	SetNotify(fn func(Notification))
	Close()
}
