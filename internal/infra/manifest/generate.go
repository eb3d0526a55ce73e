package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/domain/track"
)

// Scan lists the media files in dir in file name order. The folder is
// created if missing.
func Scan(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create folder %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read folder %s", dir)
	}

	songs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), track.Extension) {
			songs = append(songs, e.Name())
		}
	}
	return songs, nil
}

// Generate scans dir and writes the manifest to output. An empty output
// writes info.json inside dir.
func Generate(dir, output string) (*Manifest, error) {
	songs, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	if output == "" {
		output = filepath.Join(dir, FileName)
	}

	m := &Manifest{Songs: songs}
	data, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write manifest %s", output)
	}

	zlog.Info().Msgf("manifest: generated: output=%s songs=%d", output, len(songs))
	return m, nil
}
