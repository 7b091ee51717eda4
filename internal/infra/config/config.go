// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Spotify  SpotifyConfig  `yaml:"spotify"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Resolver ResolverConfig `yaml:"resolver"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8888"`
}

// SpotifyConfig represents the playlist source credentials. A refresh
// token is optional: when set, the server serves sessions without the
// interactive authorization flow (headless runs, see cmd/auth).
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" validate:"required"`
	RedirectURI  string `yaml:"redirect_uri" default:"http://127.0.0.1:8888/callback" validate:"required,url"`
	RefreshToken string `yaml:"refresh_token"`
}

// YouTubeConfig represents the video search service credentials.
type YouTubeConfig struct {
	APIKey string `yaml:"api_key" validate:"required"`
}

// ResolverConfig represents resolution engine configuration.
type ResolverConfig struct {
	MaxResults        int               `yaml:"max_results" default:"10" validate:"gte=1,lte=10"`
	DetailConcurrency int               `yaml:"detail_concurrency" default:"4" validate:"gte=1"`
	CallTimeoutSec    int               `yaml:"call_timeout_sec" default:"10" validate:"gte=1"`
	SearchSuffix      string            `yaml:"search_suffix" default:"official audio"`
	ArtistOverrides   map[string]string `yaml:"artist_overrides"`
	Scoring           map[string]any    `yaml:"scoring,omitempty"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info"`
}

// Load loads configuration from a YAML file. A missing file is not an
// error: credentials can be supplied entirely through environment
// variables. Missing provider credentials are fatal here, not at
// request time.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// env-only configuration
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Spotify.RedirectURI = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
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
