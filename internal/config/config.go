// Package config provides configuration file and environment variable support for ago.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Config file (~/.ago/config.toml)
//  4. Built-in defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the ago configuration.
type Config struct {
	// DB is the path to the marks database.
	// Default: ~/.ago/ago.db
	DB string `toml:"db"`

	// NoColor disables colored output.
	NoColor bool `toml:"no_color"`

	// Abbreviate selects short unit words ("3 hrs ago") when the
	// --abbrev flag is not given.
	Abbreviate bool `toml:"abbreviate"`

	Server ServerConfig `toml:"server"`
	Backup BackupConfig `toml:"backup"`
}

// ServerConfig configures the HTTP API started by "ago serve".
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BackupConfig configures automatic database backups.
type BackupConfig struct {
	// Enabled turns automatic backups on or off.
	Enabled bool `toml:"enabled"`

	// IntervalHours is the minimum age of the newest backup before another is taken.
	IntervalHours int `toml:"interval_hours"`

	// MaxCount is the number of rotated backups to keep.
	MaxCount int `toml:"max_count"`

	// Path is the backup directory. Empty means next to the database.
	Path string `toml:"path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 18081,
		},
		Backup: BackupConfig{
			Enabled:       true,
			IntervalHours: 24,
			MaxCount:      5,
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ago", "config.toml")
}

// Load loads configuration from the default config file and the environment.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads configuration from a specific file path.
// Environment variables take precedence over file settings.
// A missing file yields the defaults.
func LoadFromPath(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv applies environment variable overrides to the config.
func (c *Config) applyEnv() {
	if db := os.Getenv("AGO_DB"); db != "" {
		c.DB = db
	}
	// AGO_DB_PATH wins over AGO_DB
	if dbPath := os.Getenv("AGO_DB_PATH"); dbPath != "" {
		c.DB = dbPath
	}

	// AGO_NO_COLOR - any value means true
	if _, ok := os.LookupEnv("AGO_NO_COLOR"); ok {
		c.NoColor = true
	}

	if v := os.Getenv("AGO_ABBREVIATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Abbreviate = b
		}
	}

	if host := os.Getenv("AGO_SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("AGO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p < 65536 {
			c.Server.Port = p
		}
	}
}

// GetDB returns the configured database path, or "" to use db.DefaultDBPath.
func (c *Config) GetDB() string {
	return c.DB
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# ago configuration file
# Location: ~/.ago/config.toml
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (AGO_*)
#   3. This config file
#   4. Built-in defaults

# Path to the marks database
# Default: ~/.ago/ago.db
# Environment: AGO_DB or AGO_DB_PATH (AGO_DB_PATH takes precedence)
# db = "/path/to/ago.db"

# Disable colored output
# Environment: AGO_NO_COLOR (any value = true)
# no_color = false

# Use short unit words ("3 hrs ago" instead of "3 hours ago")
# Environment: AGO_ABBREVIATE
# abbreviate = false

[server]
# Environment: AGO_SERVER_HOST, AGO_SERVER_PORT
# host = "localhost"
# port = 18081

[backup]
# enabled = true
# interval_hours = 24
# max_count = 5
# path = ""
`
}

// WriteConfigFile writes the sample config file to path, creating parent
// directories if needed.
func WriteConfigFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SampleConfig()), 0644)
}
