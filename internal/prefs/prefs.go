// Package prefs loads ccem's own tool preferences (not the managed Claude
// configuration) from ~/.ccem/config.yaml and CCEM_* environment variables.
package prefs

import (
	"compress/gzip"
	"fmt"

	"github.com/spf13/viper"

	"github.com/peguesj/ccem/internal/paths"
)

// Prefs holds tool-level defaults that CLI flags can override.
type Prefs struct {
	Strategy         string `mapstructure:"strategy"`
	BackupDir        string `mapstructure:"backup_dir"`
	CompressionLevel int    `mapstructure:"compression_level"`
	LogLevel         string `mapstructure:"log_level"`
}

// Default returns the built-in preferences.
func Default() *Prefs {
	return &Prefs{
		Strategy:         "recommended",
		BackupDir:        paths.BackupDir(),
		CompressionLevel: gzip.BestCompression,
		LogLevel:         "info",
	}
}

// Load layers ~/.ccem/config.yaml and CCEM_* environment variables over the
// defaults. A missing config file is fine; a malformed one is not.
func Load() (*Prefs, error) {
	p := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(paths.StateDir())

	v.SetEnvPrefix("CCEM")
	v.AutomaticEnv()

	v.SetDefault("strategy", p.Strategy)
	v.SetDefault("backup_dir", p.BackupDir)
	v.SetDefault("compression_level", p.CompressionLevel)
	v.SetDefault("log_level", p.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading preferences: %w", err)
		}
	}

	if err := v.Unmarshal(p); err != nil {
		return nil, fmt.Errorf("parsing preferences: %w", err)
	}
	return p, nil
}
