package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	Storage     string        `json:"storage" yaml:"storage"`
	DBPath      string        `json:"db_path" yaml:"db_path"`
	RedisURL    string        `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	RedisKey    string        `json:"redis_key,omitempty" yaml:"redis_key,omitempty"`
	WebEnabled  bool          `json:"web_enabled" yaml:"web_enabled"`
	WebPort     int           `json:"web_port" yaml:"web_port"`
	Locale      string        `json:"locale" yaml:"locale"`
	DefaultSort model.SortKey `json:"default_sort" yaml:"default_sort"`
	LogLevel    string        `json:"log_level" yaml:"log_level"`
	LogPath     string        `json:"log_path" yaml:"log_path"`
}

func Default() Config {
	return Config{
		Storage:     StorageSQLite,
		WebPort:     8080,
		Locale:      "en",
		DefaultSort: model.SortByDueDate,
		LogLevel:    "info",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "taskmaster", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the config at path, falling back to defaults when the file does
// not exist. Files ending in .yaml or .yml are read as YAML, anything else as
// JSON. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config.withDefaults(), nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate reports settings that would fail later at startup.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db_path is required for sqlite storage")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.WebPort <= 0 || c.WebPort > 65535 {
		return fmt.Errorf("invalid web_port %d", c.WebPort)
	}
	return nil
}

func (c Config) withDefaults() Config {
	defaults := Default()
	if c.Storage == "" {
		c.Storage = defaults.Storage
	}
	c.Storage = strings.ToLower(c.Storage)
	if c.WebPort == 0 {
		c.WebPort = defaults.WebPort
	}
	if c.Locale == "" {
		c.Locale = defaults.Locale
	}
	if c.DefaultSort == "" {
		c.DefaultSort = defaults.DefaultSort
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	return c
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
