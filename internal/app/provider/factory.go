package provider

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/infra/config"
)

// NewChainFromConfig creates a provider chain from configuration.
func NewChainFromConfig(cfg *config.Config) (*Chain, error) {
	var providers []ProviderWithMetadata

	for i, scfg := range cfg.CatalogSources() {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating catalog provider: index=%d type=%s settings=%+v", i+1, scfg.Type, scfg.Settings)
		switch scfg.Type {
		case config.SourceHTTP:
			provider, err = NewHTTPProvider(scfg.Settings)

		case config.SourceFile:
			provider, err = NewFileProvider(scfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, scfg.Type)
		}

		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: scfg.DisplayName,
		})

		zlog.Info().Msgf("registered catalog provider: index=%d type=%s display_name=%s", i+1, scfg.Type, scfg.DisplayName)
	}

	return NewChain(providers), nil
}
