package provider

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/domain/catalog"
)

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// Chain tries providers in order and uses the first that succeeds.
type Chain struct {
	providers []ProviderWithMetadata
}

// NewChain creates a new provider chain.
func NewChain(providers []ProviderWithMetadata) *Chain {
	return &Chain{providers: providers}
}

// Load returns the catalog of the first provider that succeeds. When every
// provider fails, or none is configured, the placeholder catalog is returned.
// An empty song list counts as success.
func (c *Chain) Load(ctx context.Context) *catalog.Catalog {
	for i, pm := range c.providers {
		zlog.Debug().Msgf("trying provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		songs, err := pm.Provider.Songs(ctx)
		if err != nil {
			zlog.Warn().Msgf("provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			continue
		}

		zlog.Info().Msgf("catalog loaded: provider=%s songs=%d", pm.DisplayName, len(songs))
		return catalog.New(songs)
	}

	zlog.Warn().Msgf("catalog unavailable, using placeholder: songs=%v", catalog.PlaceholderIDs)
	return catalog.Placeholder()
}
