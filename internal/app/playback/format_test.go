package playback

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{name: "negative", seconds: -5, expected: "00:00"},
		{name: "NaN", seconds: math.NaN(), expected: "00:00"},
		{name: "infinite", seconds: math.Inf(1), expected: "00:00"},
		{name: "zero", seconds: 0, expected: "00:00"},
		{name: "one minute five", seconds: 65, expected: "01:05"},
		{name: "fraction floors", seconds: 59.9, expected: "00:59"},
		{name: "one hour", seconds: 3600, expected: "60:00"},
		{name: "over a hundred minutes", seconds: 6061, expected: "101:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTime(tt.seconds))
		})
	}
}

func TestGestureFraction(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		left     float64
		width    float64
		expected float64
	}{
		{name: "middle", x: 150, left: 100, width: 100, expected: 0.5},
		{name: "left of bar", x: 10, left: 100, width: 100, expected: 0},
		{name: "right of bar", x: 500, left: 100, width: 100, expected: 1},
		{name: "zero width", x: 150, left: 100, width: 0, expected: 0},
		{name: "NaN coordinate", x: math.NaN(), left: 100, width: 100, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GestureFraction(tt.x, tt.left, tt.width))
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		id       string
		expected string
	}{
		{name: "relative base", base: "songs", id: "01 Piano Man.mp3", expected: "songs/01%20Piano%20Man.mp3"},
		{name: "trailing slash", base: "http://host/songs/", id: "a b.mp3", expected: "http://host/songs/a%20b.mp3"},
		{name: "slash in identifier is escaped", base: "songs", id: "AC/DC.mp3", expected: "songs/AC%2FDC.mp3"},
		{name: "empty base", base: "", id: "x y.mp3", expected: "x%20y.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolver{BasePath: tt.base}.Resolve(tt.id))
		})
	}
}

func TestSnapshot_Formatting(t *testing.T) {
	s := Snapshot{Position: 65, Duration: 200}
	assert.Equal(t, "01:05", s.Elapsed())
	assert.Equal(t, "00:00", s.Total())

	s.DurationKnown = true
	assert.Equal(t, "03:20", s.Total())
}
