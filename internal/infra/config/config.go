// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the engine configuration.
type Config struct {
	Logging   LoggingConfig    `yaml:"logging"`
	Playback  PlaybackConfig   `yaml:"playback"`
	Resolvers []ResolverConfig `yaml:"resolvers" validate:"required,min=1,dive"`
	Catalogue CatalogueConfig  `yaml:"catalogue"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info"`
}

// PlaybackConfig represents playback engine configuration.
type PlaybackConfig struct {
	SampleIntervalMs int     `yaml:"sample_interval_ms" default:"333" validate:"gte=100,lte=1000"`
	BatchSize        int     `yaml:"batch_size" default:"30" validate:"gte=1,lte=100"`
	Workers          int     `yaml:"workers" default:"30" validate:"gte=1,lte=100"`
	Volume           float64 `yaml:"volume" default:"1.0" validate:"gte=0,lte=1"`
}

// SampleInterval returns the progress sampling cadence.
func (c PlaybackConfig) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMs) * time.Millisecond
}

// ResolverConfig represents a single media resolver configuration.
type ResolverConfig struct {
	Type     string         `yaml:"type" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// CatalogueConfig represents catalogue API configuration.
type CatalogueConfig struct {
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	Token      string `yaml:"token"`
	TimeoutSec int    `yaml:"timeout_sec" default:"10" validate:"gte=1,lte=120"`
}

// Timeout returns the catalogue request timeout.
func (c CatalogueConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
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
	if v := os.Getenv("CATALOGUE_BASE_URL"); v != "" {
		c.Catalogue.BaseURL = v
	}
	if v := os.Getenv("CATALOGUE_TOKEN"); v != "" {
		c.Catalogue.Token = v
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
