// Package config loads shoplist settings from a YAML file, an optional .env
// file and SHOPLIST_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/shoplist/internal/share"
	"github.com/idilsaglam/shoplist/internal/storage"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Export  ExportConfig  `yaml:"export"`
	Share   ShareConfig   `yaml:"share"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // file | sqlite | memory
	Path    string `yaml:"path"`    // directory for file, database file for sqlite
	Key     string `yaml:"key"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type ShareConfig struct {
	Title string `yaml:"title"`
}

type UIConfig struct {
	Theme string `yaml:"theme"` // classic | neon | mono
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HomeDir is ~/.shoplist, falling back to the working directory.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shoplist"
	}
	return filepath.Join(home, ".shoplist")
}

// DefaultPath prefers $XDG_CONFIG_HOME/shoplist/config.yaml when XDG is set.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shoplist", "config.yaml")
	}
	return filepath.Join(HomeDir(), "config.yaml")
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    filepath.Join(HomeDir(), "data"),
			Key:     storage.DefaultKey,
		},
		Export:  ExportConfig{Dir: "."},
		Share:   ShareConfig{Title: share.DefaultTitle},
		UI:      UIConfig{Theme: "classic"},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// The result is not validated; callers apply their own overrides first.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHOPLIST_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("SHOPLIST_DATA"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SHOPLIST_KEY"); v != "" {
		c.Storage.Key = v
	}
	if v := os.Getenv("SHOPLIST_EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv("SHOPLIST_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SHOPLIST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != BackendMemory && c.Storage.Path == "" {
		return fmt.Errorf("config: storage.path is required for %s backend", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("config: storage.key is required")
	}
	return nil
}
