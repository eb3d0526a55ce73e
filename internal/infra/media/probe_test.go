package media

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentMP3 builds a stream of empty MPEG-1 Layer III frames
// (128 kbps, 44.1 kHz, no CRC). Each frame holds 1152 samples.
func silentMP3(frames int) []byte {
	const frameSize = 144 * 128000 / 44100
	frame := make([]byte, frameSize)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	return bytes.Repeat(frame, frames)
}

func TestDuration(t *testing.T) {
	seconds, err := Duration(bytes.NewReader(silentMP3(200)))
	require.NoError(t, err)
	assert.InDelta(t, 200*1152/44100.0, seconds, 0.001)
}

func TestDuration_InvalidStream(t *testing.T) {
	_, err := Duration(bytes.NewReader([]byte("definitely not an mp3")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStream), "got %v", err)
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		locator  string
		expected bool
	}{
		{locator: "http://host/songs/a.mp3", expected: true},
		{locator: "HTTPS://host/a.mp3", expected: true},
		{locator: "songs/a%20b.mp3", expected: false},
		{locator: "/abs/a.mp3", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.locator, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRemote(tt.locator))
		})
	}
}

func TestMP3Prober_Probe(t *testing.T) {
	data := silentMP3(200)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a b.mp3"), data, 0o644))

	prober := NewMP3Prober(time.Second)
	expected := 200 * 1152 / 44100.0

	tests := []struct {
		name    string
		locator string
	}{
		{name: "local file", locator: filepath.Join(dir, "a%20b.mp3")},
		{name: "http", locator: server.URL + "/songs/a%20b.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seconds, err := prober.Probe(context.Background(), tt.locator)
			require.NoError(t, err)
			assert.InDelta(t, expected, seconds, 0.001)
		})
	}
}

func TestMP3Prober_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("garbage"))
	}))
	defer server.Close()

	dir := t.TempDir()
	local := filepath.Join(dir, "a b.mp3")
	require.NoError(t, os.WriteFile(local, []byte("garbage"), 0o644))

	prober := NewMP3Prober(time.Second)
	ctx := context.Background()

	tests := []struct {
		name    string
		locator string
		invalid bool
	}{
		{name: "http not found", locator: server.URL + "/missing.mp3"},
		{name: "http garbage", locator: server.URL + "/a.mp3", invalid: true},
		{name: "missing file", locator: filepath.Join(dir, "none.mp3")},
		{name: "escaped local path", locator: filepath.Join(dir, "a%20b.mp3"), invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := prober.Probe(ctx, tt.locator)
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidStream), "got %v", err)
		})
	}
}
