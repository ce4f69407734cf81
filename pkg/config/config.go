// Package config loads the notetable YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unowned-ai/notetable/pkg/db"
	"github.com/unowned-ai/notetable/pkg/notes"
	"github.com/unowned-ai/notetable/pkg/utils"
)

// Config holds user preferences. Zero values are replaced by defaults on load.
type Config struct {
	DBPath     string `yaml:"db_path"`
	WAL        bool   `yaml:"wal"`
	Sync       string `yaml:"sync"`
	StorageKey string `yaml:"storage_key"`
	LogLevel   string `yaml:"log_level"`
	// LogFile receives TUI logs. Other commands log to stderr unless it is set.
	LogFile string `yaml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DBPath:     utils.GetDefaultDBPathOnly(),
		WAL:        false,
		Sync:       "FULL",
		StorageKey: notes.DefaultStorageKey,
		LogLevel:   "info",
		LogFile:    filepath.Join(filepath.Dir(utils.GetDefaultDBPathOnly()), "notetable.log"),
	}
}

// Load reads the configuration at path, or the default location when path is
// empty. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = utils.GetDefaultConfigPath()
	}

	path, err := utils.ExpandHome(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config '%s': %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}

	cfg.merge(fileCfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	return cfg, nil
}

func (c *Config) merge(other Config) {
	if other.DBPath != "" {
		c.DBPath = other.DBPath
	}
	if other.WAL {
		c.WAL = true
	}
	if other.Sync != "" {
		c.Sync = strings.ToUpper(other.Sync)
	}
	if other.StorageKey != "" {
		c.StorageKey = other.StorageKey
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
}

func (c Config) Validate() error {
	if !db.ValidSyncMode(c.Sync) {
		return fmt.Errorf("sync must be one of OFF, NORMAL, FULL, EXTRA, got %q", c.Sync)
	}
	return nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	if path == "" {
		path = utils.GetDefaultConfigPath()
	}
	path, err := utils.ExpandHome(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
