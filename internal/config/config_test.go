package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"PapersDir", cfg.PapersDir, "data/papers"},
		{"CatalogPath", cfg.CatalogPath, "data/scimago.csv"},
		{"OutputDir", cfg.OutputDir, "results"},
		{"StorePath", cfg.StorePath, ""},
		{"ProfilePath", cfg.ProfilePath, ""},
		{"FuzzyEnabled", cfg.FuzzyEnabled, true},
		{"FuzzyThreshold", cfg.FuzzyThreshold, 85},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if len(cfg.Countries) != 0 {
		t.Errorf("Countries = %v, want empty", cfg.Countries)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "papers_dir",
			envKey: "SCIMPACT_PAPERS_DIR",
			envVal: "/data/batches",
			field:  func(c Config) any { return c.PapersDir },
			want:   "/data/batches",
		},
		{
			name:   "catalog",
			envKey: "SCIMPACT_CATALOG",
			envVal: "/data/scimagojr-2024.csv",
			field:  func(c Config) any { return c.CatalogPath },
			want:   "/data/scimagojr-2024.csv",
		},
		{
			name:   "output",
			envKey: "SCIMPACT_OUTPUT",
			envVal: "/tmp/results",
			field:  func(c Config) any { return c.OutputDir },
			want:   "/tmp/results",
		},
		{
			name:   "fuzzy_threshold",
			envKey: "SCIMPACT_FUZZY_THRESHOLD",
			envVal: "92",
			field:  func(c Config) any { return c.FuzzyThreshold },
			want:   92,
		},
		{
			name:   "fuzzy_enabled",
			envKey: "SCIMPACT_FUZZY_ENABLED",
			envVal: "false",
			field:  func(c Config) any { return c.FuzzyEnabled },
			want:   false,
		},
		{
			name:   "verbose",
			envKey: "SCIMPACT_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so SCIMPACT_* env vars map to config keys.
			viper.SetEnvPrefix("SCIMPACT")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_UndecodableValueErrors(t *testing.T) {
	resetViper()
	defer resetViper()

	// A value that cannot decode into the Config shape must surface as an
	// error rather than a silent zero-value config.
	viper.Set("fuzzy_threshold", []string{"not", "a", "number"})

	if _, err := Load(); err == nil {
		t.Fatal("expected decode error for malformed fuzzy_threshold")
	}
}

func TestLoad_DefaultsAreNotZero(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.PapersDir == "" {
		t.Error("PapersDir should not be empty")
	}
	if cfg.CatalogPath == "" {
		t.Error("CatalogPath should not be empty")
	}
	if cfg.OutputDir == "" {
		t.Error("OutputDir should not be empty")
	}
	if cfg.FuzzyThreshold == 0 {
		t.Error("FuzzyThreshold should not be zero")
	}
}
