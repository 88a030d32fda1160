package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	xdgAppName = "taskbook"
	configFile = "config.json"

	DefaultDatabase     = "database.txt"
	DefaultCalendar     = "Tasks"
	DefaultScanInterval = "60s"

	EnvDatabase     = "TASKBOOK_DATABASE"
	EnvCalendar     = "TASKBOOK_CALENDAR"
	EnvScanInterval = "TASKBOOK_SCAN_INTERVAL"
)

type Config struct {
	Database     string `json:"database"`
	Calendar     string `json:"calendar"`
	ScanInterval string `json:"scan_interval"`
	CalendarSync bool   `json:"calendar_sync"`
}

// Interval parses ScanInterval, falling back to the default on bad input.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.ScanInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultScanInterval)
	}
	return d
}

func Default() *Config {
	return &Config{
		Database:     DefaultDatabase,
		Calendar:     DefaultCalendar,
		ScanInterval: DefaultScanInterval,
	}
}

// Dir is the per-user directory holding config, tokens and caches.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file (defaults if absent), then applies a .env file
// from the working directory and TASKBOOK_* environment variables on top.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// LoadFile reads one JSON config file, filling unset fields with defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	if cfg.ScanInterval == "" {
		cfg.ScanInterval = DefaultScanInterval
	}
	return cfg, nil
}

func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(EnvCalendar); v != "" {
		cfg.Calendar = v
	}
	if v := os.Getenv(EnvScanInterval); v != "" {
		cfg.ScanInterval = v
	}
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
