// Package config provides configuration loading for the erabu server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/erabu/internal/relevance"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool             `yaml:"debug"`
	Server    ServerConfig     `yaml:"server"`
	Storage   StorageConfig    `yaml:"storage"`
	Discover  DiscoverConfig   `yaml:"discover"`
	Relevance relevance.Config `yaml:"relevance"`
	List      ListConfig       `yaml:"list"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the search index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// DiscoverConfig holds file discovery settings.
type DiscoverConfig struct {
	Roots           []string `yaml:"roots"`
	Extensions      []string `yaml:"extensions"`
	Recursive       *bool    `yaml:"recursive"`
	PreviewMaxChars int      `yaml:"preview_max_chars"`
}

// RecursiveOrDefault returns whether discovery walks subdirectories;
// defaults to true when unset.
func (d *DiscoverConfig) RecursiveOrDefault() bool {
	if d.Recursive != nil {
		return *d.Recursive
	}
	return true
}

// ListConfig holds list rendering settings.
type ListConfig struct {
	PageSize        int   `yaml:"page_size"`
	PageSizeOptions []int `yaml:"page_size_options"`
	AnalyzeDelayMS  int   `yaml:"analyze_delay_ms"`
}

// Load reads and parses the config file at path, expands paths, and
// applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	for i := range cfg.Discover.Roots {
		cfg.Discover.Roots[i] = expandPath(cfg.Discover.Roots[i], configDir)
	}
	return &cfg, nil
}

// Save writes the config to path. Used for persisting root add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
