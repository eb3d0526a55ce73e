package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/infra/config"
	"github.com/osa030/19player/internal/infra/manifest"
)

type fakeProvider struct {
	songs []string
	err   error
	calls int
}

func (f *fakeProvider) Songs(ctx context.Context) ([]string, error) {
	f.calls++
	return f.songs, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

func TestChain_Load(t *testing.T) {
	tests := []struct {
		name      string
		providers []*fakeProvider
		expected  []string
	}{
		{
			name:      "no providers uses placeholder",
			providers: nil,
			expected:  catalog.PlaceholderIDs,
		},
		{
			name:      "first success wins",
			providers: []*fakeProvider{{songs: []string{"a.mp3"}}, {songs: []string{"b.mp3"}}},
			expected:  []string{"a.mp3"},
		},
		{
			name:      "failure falls through",
			providers: []*fakeProvider{{err: errors.New("offline")}, {songs: []string{"b.mp3"}}},
			expected:  []string{"b.mp3"},
		},
		{
			name:      "all fail uses placeholder",
			providers: []*fakeProvider{{err: errors.New("offline")}, {err: errors.New("malformed")}},
			expected:  []string{"Song1.mp3", "Song2.mp3", "Song3.mp3"},
		},
		{
			name:      "empty list is a success",
			providers: []*fakeProvider{{songs: []string{}}, {songs: []string{"b.mp3"}}},
			expected:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pms []ProviderWithMetadata
			for i, p := range tt.providers {
				pms = append(pms, ProviderWithMetadata{Provider: p, DisplayName: fmt.Sprintf("p%d", i)})
			}

			c := NewChain(pms).Load(context.Background())

			assert.Equal(t, tt.expected, c.IDs())
		})
	}
}

func TestChain_StopsAtFirstSuccess(t *testing.T) {
	first := &fakeProvider{songs: []string{"a.mp3"}}
	second := &fakeProvider{songs: []string{"b.mp3"}}

	NewChain([]ProviderWithMetadata{{Provider: first}, {Provider: second}}).Load(context.Background())

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestHTTPProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"songs": ["01 Piano Man.mp3"]}`)
	}))
	defer server.Close()

	p, err := NewHTTPProvider(map[string]any{"url": server.URL})
	require.NoError(t, err)
	assert.Equal(t, 10000, p.config.TimeoutMs)

	songs, err := p.Songs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"01 Piano Man.mp3"}, songs)
}

func TestHTTPProvider_FallbackOnMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"songs": "not a list"}`)
	}))
	defer server.Close()

	p, err := NewHTTPProvider(map[string]any{"url": server.URL, "timeout_ms": 500})
	require.NoError(t, err)

	c := NewChain([]ProviderWithMetadata{{Provider: p, DisplayName: "remote"}}).Load(context.Background())
	assert.Equal(t, catalog.PlaceholderIDs, c.IDs())
}

func TestNewHTTPProvider_InvalidSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
	}{
		{name: "missing url", settings: map[string]any{}},
		{name: "wrong type", settings: map[string]any{"url": 42}},
		{name: "negative timeout", settings: map[string]any{"url": "http://x", "timeout_ms": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPProvider(tt.settings)
			assert.Error(t, err)
		})
	}
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"songs": ["x.mp3", "y.mp3"]}`), 0o644))

	p, err := NewFileProvider(map[string]any{"path": path})
	require.NoError(t, err)

	songs, err := p.Songs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x.mp3", "y.mp3"}, songs)

	_, err = NewFileProvider(map[string]any{})
	assert.Error(t, err)
}

func TestNewChainFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"songs": ["local.mp3"]}`), 0o644))

	cfg := config.Default()
	cfg.Catalog.Sources = []config.SourceConfig{
		{Type: config.SourceHTTP, DisplayName: "remote", Settings: map[string]any{"url": "http://127.0.0.1:1/info.json", "timeout_ms": 200}},
		{Type: config.SourceFile, DisplayName: "local", Settings: map[string]any{"path": path}},
	}

	chain, err := NewChainFromConfig(cfg)
	require.NoError(t, err)
	require.Len(t, chain.providers, 2)

	assert.Equal(t, []string{"local.mp3"}, chain.Load(context.Background()).IDs())
}

func TestNewChainFromConfig_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Sources = []config.SourceConfig{{Type: "ftp", DisplayName: "x", Settings: map[string]any{}}}
	_, err := NewChainFromConfig(cfg)
	assert.Error(t, err)

	cfg.Catalog.Sources = []config.SourceConfig{{Type: config.SourceFile, DisplayName: "x", Settings: map[string]any{}}}
	_, err = NewChainFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewChainFromConfig_DefaultReadsMediaManifest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp3", "a.MP3", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	_, err := manifest.Generate(dir, "")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Media.BasePath = dir

	chain, err := NewChainFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.MP3", "b.mp3"}, chain.Load(context.Background()).IDs())
}

func TestNewChainFromConfig_DefaultWithoutManifest(t *testing.T) {
	cfg := config.Default()
	cfg.Media.BasePath = t.TempDir()

	chain, err := NewChainFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, catalog.PlaceholderIDs, chain.Load(context.Background()).IDs())
}
