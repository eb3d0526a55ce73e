// Package media provides a headless media-playback primitive: a wall-clock
// player that resolves track duration by probing the MP3 resource.
package media

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/llehouerou/go-mp3"

	"github.com/osa030/19player/internal/domain/track"
)

// ErrInvalidStream is returned when a resource does not decode as MP3.
var ErrInvalidStream = errors.New("invalid mp3 stream")

// Prober resolves the duration in seconds of the resource at locator.
type Prober interface {
	Probe(ctx context.Context, locator string) (float64, error)
}

// MP3Prober reads MP3 resources from HTTP(S) URLs or local paths.
type MP3Prober struct {
	httpClient *http.Client
}

// NewMP3Prober creates a prober. timeout bounds HTTP fetches.
func NewMP3Prober(timeout time.Duration) *MP3Prober {
	return &MP3Prober{httpClient: &http.Client{Timeout: timeout}}
}

// Probe opens the resource and computes its duration from the decoded
// sample count.
func (p *MP3Prober) Probe(ctx context.Context, locator string) (float64, error) {
	rc, err := p.open(ctx, locator)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return Duration(rc)
}

// bodyReader serves a fetched body. It stays seekable so the decoder can
// measure the stream length.
type bodyReader struct {
	*bytes.Reader
}

func (bodyReader) Close() error { return nil }

func (p *MP3Prober) open(ctx context.Context, locator string) (io.ReadSeekCloser, error) {
	if !isRemote(locator) {
		path := track.Unescape(locator)
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", path)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("GET %s: unexpected status %d", locator, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return bodyReader{bytes.NewReader(body)}, nil
}

// Duration decodes an MP3 stream header and returns its length in seconds.
// The length is only known for seekable streams; anything else, and a
// stream without frames, is ErrInvalidStream.
func Duration(r io.ReadSeeker) (float64, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, "failed to decode mp3"), ErrInvalidStream)
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		return 0, errors.Wrap(ErrInvalidStream, "invalid sample rate")
	}
	sampleCount := decoder.SampleCount()
	if sampleCount <= 0 {
		return 0, errors.Wrapf(ErrInvalidStream, "unknown length: samples=%d", sampleCount)
	}
	return float64(sampleCount) / float64(sampleRate), nil
}

func isRemote(locator string) bool {
	lower := strings.ToLower(locator)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
