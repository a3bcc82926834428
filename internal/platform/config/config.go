package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

// Config is the resolved application configuration. Paths derive from
// DataPath; the remaining fields come from the optional config.yaml.
type Config struct {
	DataPath   string `yaml:"-"`
	DBPath     string `yaml:"-"`
	KVDir      string `yaml:"-"`
	ConfigPath string `yaml:"-"`
	LogPath    string `yaml:"-"`

	Store        string        `yaml:"store"`
	LogLevel     string        `yaml:"log_level"`
	DefaultHours int           `yaml:"default_hours"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Timezone     string        `yaml:"timezone"`
}

func New(dataPath string) (Config, error) {
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	root := filepath.Join(dataPath, ".feastly")
	return Config{
		DataPath:     dataPath,
		DBPath:       filepath.Join(root, "feastly.db"),
		KVDir:        filepath.Join(root, "kv"),
		ConfigPath:   filepath.Join(root, "config.yaml"),
		LogPath:      filepath.Join(root, "feastly.log"),
		Store:        StoreSQLite,
		LogLevel:     "info",
		DefaultHours: 16,
		TickInterval: time.Second,
		Timezone:     "Local",
	}, nil
}

// Load builds the defaults for dataPath and overlays config.yaml when it
// exists. A missing file is not an error.
func Load(dataPath string) (Config, error) {
	cfg, err := New(dataPath)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the tunable fields back to config.yaml.
func (c Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.ConfigPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreFile, StoreMemory:
	default:
		return fmt.Errorf("store must be one of sqlite|file|memory, got %q", c.Store)
	}
	if c.DefaultHours < 8 || c.DefaultHours > 24 {
		return fmt.Errorf("default_hours must be within 8..24, got %d", c.DefaultHours)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" and the empty string mean the device
// zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
