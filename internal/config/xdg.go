// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "etterna-graph"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, "scores.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// EtternaSaveDir returns the game's save directory. ETTERNA_SAVE overrides
// the default of ~/.etterna/Save.
func EtternaSaveDir() string {
	if v := os.Getenv("ETTERNA_SAVE"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "Save"
	}
	return filepath.Join(home, ".etterna", "Save")
}

// DefaultEtternaXMLPath returns the save file of the first local profile.
func DefaultEtternaXMLPath() string {
	return filepath.Join(EtternaSaveDir(), "LocalProfiles", "00000000", "Etterna.xml")
}

// DefaultReplaysDir returns the directory holding per-score replays.
func DefaultReplaysDir() string {
	return filepath.Join(EtternaSaveDir(), "ReplaysV2")
}
