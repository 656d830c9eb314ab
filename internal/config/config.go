package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a scimpact run. Values are
// populated from .scimpact.yaml, SCIMPACT_* env vars, and CLI flags.
type Config struct {
	PapersDir   string   `mapstructure:"papers_dir"`
	CatalogPath string   `mapstructure:"catalog"`
	OutputDir   string   `mapstructure:"output"`
	StorePath   string   `mapstructure:"store"`
	ProfilePath string   `mapstructure:"profile"`
	Countries   []string `mapstructure:"countries"`

	FuzzyEnabled   bool `mapstructure:"fuzzy_enabled"`
	FuzzyThreshold int  `mapstructure:"fuzzy_threshold"`

	TelemetryPath string `mapstructure:"telemetry"`
	Verbose       bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags. A config source
// that cannot be decoded into the Config shape is an error, not a silent
// zero-value config.
func Load() (Config, error) {
	viper.SetDefault("papers_dir", "data/papers")
	viper.SetDefault("catalog", "data/scimago.csv")
	viper.SetDefault("output", "results")
	viper.SetDefault("store", "")
	viper.SetDefault("profile", "")
	viper.SetDefault("countries", []string{})
	viper.SetDefault("fuzzy_enabled", true)
	viper.SetDefault("fuzzy_threshold", 85)
	viper.SetDefault("telemetry", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}
