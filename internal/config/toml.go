// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Paths    PathsConfig    `toml:"paths"`
	Analysis AnalysisConfig `toml:"analysis"`
}

// PathsConfig maps the locations of game data.
type PathsConfig struct {
	XML     *string `toml:"xml"`
	Replays *string `toml:"replays"`
}

// AnalysisConfig maps settings of the statistics queries.
type AnalysisConfig struct {
	SessionGapMinutes *float64 `toml:"session-gap-minutes"`
	GreatWindow       *float64 `toml:"great-window"`
	MinSessionSize    *int     `toml:"min-session-size"`
	TopCharts         *int     `toml:"top-charts"`
	CurveWindow       *int     `toml:"curve-window"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg FileConfig) error {
	return toml.NewEncoder(w).Encode(cfg)
}
