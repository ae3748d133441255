// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// Environment overrides for the default paths.
const (
	EnvConfig  = "WSEC_CONFIG"
	EnvDB      = "WSEC_DB"
	EnvCatalog = "WSEC_CATALOG"
)

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

// DefaultDBPath returns the path of the selection database.
func DefaultDBPath() string {
	if v := os.Getenv(EnvDB); v != "" {
		return v
	}
	return filepath.Join(XDGDataHome(), "wsec", "wsec.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	if v := os.Getenv(EnvConfig); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), "wsec", "config.toml")
}

// DefaultCatalogPath returns the catalog override, or "" for the embedded
// table.
func DefaultCatalogPath() string {
	return os.Getenv(EnvCatalog)
}
