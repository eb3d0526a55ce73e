// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/19player/internal/infra/manifest"
)

// Source types.
const (
	SourceHTTP = "http"
	SourceFile = "file"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Media      MediaConfig      `yaml:"media"`
	Playback   PlaybackConfig   `yaml:"playback"`
	Navigation NavigationConfig `yaml:"navigation"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// CatalogConfig lists the manifest sources, tried in order.
// With no sources the manifest next to the media is read.
type CatalogConfig struct {
	Sources []SourceConfig `yaml:"sources" validate:"dive"`
}

// SourceConfig represents a single manifest source.
type SourceConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=http file"`
	DisplayName string         `yaml:"display_name" validate:"required"`
	Settings    map[string]any `yaml:"settings" validate:"required"`
}

// MediaConfig represents where track resources are fetched from.
type MediaConfig struct {
	BasePath       string `yaml:"base_path" default:"songs" validate:"required"`
	ProbeTimeoutMs int    `yaml:"probe_timeout_ms" default:"10000" validate:"gte=0"`
}

// ProbeTimeout returns the timeout for fetching a remote resource to read its duration.
func (m MediaConfig) ProbeTimeout() time.Duration {
	return time.Duration(m.ProbeTimeoutMs) * time.Millisecond
}

// PlaybackConfig represents playback engine configuration.
type PlaybackConfig struct {
	PositionIntervalMs int  `yaml:"position_interval_ms" default:"250" validate:"gte=50,lte=5000"`
	AutoplayOnStart    bool `yaml:"autoplay_on_start"`
}

// NavigationConfig represents navigation configuration.
type NavigationConfig struct {
	ShuffleHistoryLimit int  `yaml:"shuffle_history_limit" validate:"gte=0"`
	ShuffleOnStart      bool `yaml:"shuffle_on_start"`
}

// PositionInterval returns the position reporting cadence.
func (p PlaybackConfig) PositionInterval() time.Duration {
	return time.Duration(p.PositionIntervalMs) * time.Millisecond
}

// CatalogSources returns the configured sources, or a single source reading
// info.json from the media base path when none are configured.
func (c *Config) CatalogSources() []SourceConfig {
	if len(c.Catalog.Sources) > 0 {
		return c.Catalog.Sources
	}
	base := c.Media.BasePath
	lower := strings.ToLower(base)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return []SourceConfig{{
			Type:        SourceHTTP,
			DisplayName: "media folder",
			Settings:    map[string]any{"url": strings.TrimRight(base, "/") + "/" + manifest.FileName},
		}}
	}
	return []SourceConfig{{
		Type:        SourceFile,
		DisplayName: "media folder",
		Settings:    map[string]any{"path": filepath.Join(base, manifest.FileName)},
	}}
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied and no sources.
func Default() *Config {
	var cfg Config
	cfg.overrideFromEnv()
	// defaults.Set only fails on non-pointer input.
	_ = defaults.Set(&cfg)
	return &cfg
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("PLAYER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PLAYER_MEDIA_BASE"); v != "" {
		c.Media.BasePath = v
	}
	if v := os.Getenv("PLAYER_MANIFEST_URL"); v != "" {
		for i := range c.Catalog.Sources {
			if c.Catalog.Sources[i].Type == SourceHTTP {
				if c.Catalog.Sources[i].Settings == nil {
					c.Catalog.Sources[i].Settings = map[string]any{}
				}
				c.Catalog.Sources[i].Settings["url"] = v
				return
			}
		}
		c.Catalog.Sources = append([]SourceConfig{{
			Type:        SourceHTTP,
			DisplayName: "environment",
			Settings:    map[string]any{"url": v},
		}}, c.Catalog.Sources...)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
