// Package manifest reads and writes the catalog manifest, a JSON document of
// the form {"songs": ["a.mp3", ...]}.
package manifest

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// FileName is the manifest file name inside a media folder.
const FileName = "info.json"

// ErrMalformedManifest is returned when the document is not a JSON object with
// a "songs" list of strings.
var ErrMalformedManifest = errors.New("malformed manifest")

// Manifest is the decoded manifest document.
type Manifest struct {
	Songs []string `json:"songs" mapstructure:"songs"`
}

// Parse decodes a manifest document. The "songs" key must be present and hold
// a list of strings.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse manifest"), ErrMalformedManifest)
	}

	songs, ok := raw["songs"]
	if !ok {
		return nil, errors.Wrap(ErrMalformedManifest, "missing songs")
	}
	if _, isList := songs.([]any); !isList {
		return nil, errors.Wrapf(ErrMalformedManifest, "songs is %T, not a list", songs)
	}

	var m Manifest
	if err := mapstructure.Decode(raw, &m); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode songs"), ErrMalformedManifest)
	}
	if m.Songs == nil {
		m.Songs = []string{}
	}
	return &m, nil
}

// Marshal encodes the manifest with two-space indentation.
func (m *Manifest) Marshal() ([]byte, error) {
	songs := m.Songs
	if songs == nil {
		songs = []string{}
	}
	data, err := json.MarshalIndent(Manifest{Songs: songs}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode manifest")
	}
	return data, nil
}
