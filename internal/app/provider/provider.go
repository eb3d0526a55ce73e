// Package provider supplies the track catalog from configured manifest sources.
package provider

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/infra/manifest"
)

// Provider is the interface for catalog sources.
type Provider interface {
	// Songs retrieves the ordered list of track identifiers.
	Songs(ctx context.Context) ([]string, error)

	// Name returns the provider type (used in config).
	Name() string
}

// HTTPProviderConfig is decoded from the settings of an http source.
type HTTPProviderConfig struct {
	URL       string `mapstructure:"url" validate:"required"`
	TimeoutMs int    `mapstructure:"timeout_ms" default:"10000" validate:"gte=0"`
}

// HTTPProvider fetches the manifest over HTTP.
type HTTPProvider struct {
	client *manifest.Client
	config *HTTPProviderConfig
}

// NewHTTPProvider creates an HTTPProvider from source settings.
func NewHTTPProvider(settings map[string]any) (*HTTPProvider, error) {
	var config HTTPProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	zlog.Debug().Msgf("http provider config: %+v", config)

	client, err := manifest.NewClient(manifest.Config{
		URL:     config.URL,
		Timeout: time.Duration(config.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create manifest client")
	}
	return &HTTPProvider{client: client, config: &config}, nil
}

// Songs fetches the manifest and returns its songs.
func (p *HTTPProvider) Songs(ctx context.Context) ([]string, error) {
	m, err := p.client.Fetch(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch manifest from %s", p.config.URL)
	}
	return m.Songs, nil
}

// Name returns the provider type.
func (p *HTTPProvider) Name() string {
	return "http"
}

// FileProviderConfig is decoded from the settings of a file source.
type FileProviderConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// FileProvider reads the manifest from disk.
type FileProvider struct {
	config *FileProviderConfig
}

// NewFileProvider creates a FileProvider from source settings.
func NewFileProvider(settings map[string]any) (*FileProvider, error) {
	var config FileProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &FileProvider{config: &config}, nil
}

// Songs reads the manifest file and returns its songs.
func (p *FileProvider) Songs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := manifest.ReadFile(p.config.Path)
	if err != nil {
		return nil, err
	}
	return m.Songs, nil
}

// Name returns the provider type.
func (p *FileProvider) Name() string {
	return "file"
}

func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		zlog.Error().Msgf("provider settings validation failed: %v", err)
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
