// Package config loads scythe's ambient application configuration — log
// level and on-disk path overrides — distinct from settings.json's
// user-facing project/ignore-pattern state. Adapted from
// internal/config/config.go's Load/LoadWithEnv/XDG pattern.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/settings"
)

// Config holds ambient, non-domain knobs for the scythectl process.
type Config struct {
	LogLevel     string `yaml:"log_level"`
	DBPath       string `yaml:"db_path"`
	SettingsPath string `yaml:"settings_path"`
	ThumbnailDir string `yaml:"thumbnail_dir"`
}

// DefaultConfig returns the zero-configuration defaults, all XDG-rooted.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		DBPath:       catalog.DefaultDBPath(),
		SettingsPath: settings.DefaultPath(),
		ThumbnailDir: catalog.DefaultThumbnailDir(),
	}
}

// Load reads config.yaml from the default XDG-aware location, applying
// SCYTHE_* environment overrides.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function. This allows tests to provide isolated environment values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := getenv("SCYTHE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("SCYTHE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	return cfg, nil
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "scythe", "config.yaml")
	}

	home := getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".config", "scythe", "config.yaml")
}
