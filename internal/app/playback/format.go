package playback

import (
	"fmt"
	"math"
	"strings"

	"github.com/osa030/19player/internal/domain/track"
)

// FormatTime converts seconds to a zero-padded MM:SS string.
// Negative, NaN and infinite input yields "00:00".
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "00:00"
	}
	minutes := int64(math.Floor(seconds / 60))
	remaining := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", minutes, remaining)
}

// GestureFraction normalizes a pointer x coordinate against a bar starting at
// left with the given width. The result is clamped to [0,1].
func GestureFraction(x, left, width float64) float64 {
	if width <= 0 || math.IsNaN(x) || math.IsNaN(left) || math.IsNaN(width) {
		return 0
	}
	return clampFraction((x - left) / width)
}

func clampFraction(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Resolver maps track identifiers to fetchable locations.
type Resolver struct {
	BasePath string
}

// Resolve joins the base path with the escaped identifier.
func (r Resolver) Resolve(id string) string {
	base := strings.TrimRight(r.BasePath, "/")
	if base == "" {
		return track.Escape(id)
	}
	return base + "/" + track.Escape(id)
}
