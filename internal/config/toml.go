// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Store    StoreConfig    `toml:"store"`
}

// AnalysisConfig maps stress analysis settings.
type AnalysisConfig struct {
	Fy       *float64 `toml:"fy"`
	MeshSize *float64 `toml:"mesh-size"`
}

// CatalogConfig selects the section table.
type CatalogConfig struct {
	Path *string `toml:"path"`
}

// StoreConfig locates the selection database.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// Template is written by 'wsec config' when no file exists.
const Template = `# wsec configuration

[analysis]
# Yield strength in MPa.
# fy = 350
# Target mesh cell area in mm².
# mesh-size = 100

[catalog]
# CSV or XLSX section table, e.g. the full AISC W-shape table.
# Empty uses the built-in subset of metric W-shapes.
# path = ""

[store]
# SQLite file holding the current selection.
# path = ""
`

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
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c FileConfig) validate() error {
	if c.Analysis.Fy != nil && *c.Analysis.Fy <= 0 {
		return fmt.Errorf("analysis.fy must be positive")
	}
	if c.Analysis.MeshSize != nil && *c.Analysis.MeshSize <= 0 {
		return fmt.Errorf("analysis.mesh-size must be positive")
	}
	return nil
}

// LoadEnv reads KEY=VALUE pairs from the given .env files into the process
// environment without replacing variables that are already set. Missing
// files are skipped.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}
