// Package config loads the duel server configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Relay    RelayConfig    `toml:"relay"`
	App      AppConfig      `toml:"app"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	RequestTimeout string   `toml:"request_timeout"` // e.g. "60s"
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`
	BusyTimeout string `toml:"busy_timeout"` // e.g. "5s"

	SnapshotDir      string `toml:"snapshot_dir"`      // Empty disables snapshots
	SnapshotInterval string `toml:"snapshot_interval"` // e.g. "24h"
	SnapshotKeep     int    `toml:"snapshot_keep"`     // 0 keeps every snapshot
}

// CatalogConfig points at an optional card catalog file synced into the database.
type CatalogConfig struct {
	File  string `toml:"file"`  // .json or .toml; empty disables syncing
	Watch bool   `toml:"watch"` // Reload the file when it changes
}

// RelayConfig contains per-connection relay limits.
type RelayConfig struct {
	MessagesPerSecond float64 `toml:"messages_per_second"`
	Burst             int     `toml:"burst"`
	MaxMessageBytes   int64   `toml:"max_message_bytes"`
}

// AppConfig contains general settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Log every dispatched event with its payload
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: "60s",
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Database: DatabaseConfig{
			Path:             "spellduel.db",
			BusyTimeout:      "5s",
			SnapshotInterval: "24h",
			SnapshotKeep:     7,
		},
		Relay: RelayConfig{
			MessagesPerSecond: 20,
			Burst:             40,
			MaxMessageBytes:   8192,
		},
	}
}

// Load reads the configuration at path over the defaults, then applies
// SPELLDUEL_* environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SPELLDUEL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SPELLDUEL_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("SPELLDUEL_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SPELLDUEL_CATALOG_FILE"); v != "" {
		c.Catalog.File = v
	}
	return nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.Server.RequestTimeout, err)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if _, err := time.ParseDuration(c.Database.BusyTimeout); err != nil {
		return fmt.Errorf("invalid busy timeout %q: %w", c.Database.BusyTimeout, err)
	}
	if c.Database.SnapshotDir != "" {
		interval, err := time.ParseDuration(c.Database.SnapshotInterval)
		if err != nil {
			return fmt.Errorf("invalid snapshot interval %q: %w", c.Database.SnapshotInterval, err)
		}
		if interval < time.Minute {
			return fmt.Errorf("snapshot interval must be at least 1m: %s", interval)
		}
		if c.Database.SnapshotKeep < 0 {
			return fmt.Errorf("snapshot keep cannot be negative: %d", c.Database.SnapshotKeep)
		}
	}
	if c.Catalog.Watch && c.Catalog.File == "" {
		return fmt.Errorf("catalog watch requires a catalog file")
	}
	if c.Relay.MessagesPerSecond <= 0 {
		return fmt.Errorf("relay messages per second must be positive: %v", c.Relay.MessagesPerSecond)
	}
	if c.Relay.Burst < 1 {
		return fmt.Errorf("relay burst must be at least 1: %d", c.Relay.Burst)
	}
	if c.Relay.MaxMessageBytes < 512 {
		return fmt.Errorf("relay max message bytes must be at least 512: %d", c.Relay.MaxMessageBytes)
	}
	return nil
}

// GetRequestTimeout returns the request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

// GetBusyTimeout returns the SQLite busy timeout as a duration.
func (c *Config) GetBusyTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Database.BusyTimeout)
}

// GetSnapshotInterval returns the database snapshot interval as a duration.
func (c *Config) GetSnapshotInterval() (time.Duration, error) {
	return time.ParseDuration(c.Database.SnapshotInterval)
}
