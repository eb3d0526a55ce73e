// Package playback provides the playback engine wrapping a single media primitive.
package playback

// State represents the playback state.
type State int

const (
	StateStopped State = iota // No track loaded
	StatePlaying              // Track is playing
	StatePaused               // Track is loaded but paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of the engine for rendering.
type Snapshot struct {
	TrackID       string  // Empty when nothing is loaded
	DisplayName   string  // Display name of the loaded track
	State         State   // Play state
	Position      float64 // Seconds
	Duration      float64 // Seconds, meaningful only when DurationKnown
	DurationKnown bool    // False until the primitive reports metadata
	Scrubbing     bool    // A seek gesture is in progress
	Progress      float64 // Fraction in [0,1] for the transport bar
	Generation    uint64  // Generation of the current binding
}

// Elapsed returns the formatted position.
func (s Snapshot) Elapsed() string {
	return FormatTime(s.Position)
}

// Total returns the formatted duration, "00:00" while unknown.
func (s Snapshot) Total() string {
	if !s.DurationKnown {
		return FormatTime(-1)
	}
	return FormatTime(s.Duration)
}
