// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the optional gnomon TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Connection selects and configures the printer link. Exactly one of Port
// and URL is used; Port wins when both are set.
type Connection struct {
	Port        string `toml:"port"`
	Baud        int    `toml:"baud"`
	URL         string `toml:"url"`
	Username    string `toml:"username"`
	NoSSLVerify bool   `toml:"no_ssl_verify"`
}

// Engine tunes the print engine
type Engine struct {
	ReportInterval      int  `toml:"report_interval"`      // M27 S<n> seconds, 0 disables
	TemperatureInterval int  `toml:"temperature_interval"` // M155 S<n> seconds, 0 disables
	LongFilenames       bool `toml:"long_filenames"`
	ListTimeout         int  `toml:"list_timeout"` // seconds
}

// Log configures log output
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// History configures the print history log
type History struct {
	Path string `toml:"path"` // empty disables history
}

// Config is the complete configuration
type Config struct {
	Connection Connection `toml:"connection"`
	Engine     Engine     `toml:"engine"`
	Log        Log        `toml:"log"`
	History    History    `toml:"history"`
}

const (
	defaultBaud           = 115200
	defaultReportInterval = 5
	defaultListTimeout    = 10
	defaultLogLevel       = "info"
	defaultLogFormat      = "auto"
	defaultConfigPath     = "~/.config/gnomon/config.toml"
)

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Connection: Connection{Baud: defaultBaud},
		Engine: Engine{
			ReportInterval: defaultReportInterval,
			ListTimeout:    defaultListTimeout,
		},
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// DefaultPath returns the expanded default configuration file location
func DefaultPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the file at path on top of Default. An empty path falls back
// to DefaultPath, where a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	resolved, err := expandPath(path)
	if err != nil {
		return cfg, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", resolved, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Connection.Port = strings.TrimSpace(c.Connection.Port)
	c.Connection.URL = strings.TrimSpace(c.Connection.URL)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if c.History.Path != "" {
		if p, err := expandPath(c.History.Path); err == nil {
			c.History.Path = p
		}
	}
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.Connection.Baud <= 0 {
		return errors.New("connection.baud must be positive")
	}
	if c.Connection.URL != "" && !strings.HasPrefix(c.Connection.URL, "ws://") && !strings.HasPrefix(c.Connection.URL, "wss://") {
		return fmt.Errorf("connection.url must start with ws:// or wss://, got %q", c.Connection.URL)
	}
	if c.Engine.ReportInterval < 0 {
		return errors.New("engine.report_interval must not be negative")
	}
	if c.Engine.TemperatureInterval < 0 {
		return errors.New("engine.temperature_interval must not be negative")
	}
	if c.Engine.ListTimeout <= 0 {
		return errors.New("engine.list_timeout must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unsupported value %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	return nil
}

func expandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Clean(p), nil
}
