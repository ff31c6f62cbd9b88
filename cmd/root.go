// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/gnomon/pkg/config"
	"github.com/Thermoquad/gnomon/pkg/logging"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Configuration and logging flags
	configPath string
	logLevel   string
	logFormat  string

	// Resolved in PersistentPreRunE
	cfg    = config.Default()
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "gnomon",
	Short: "G-code printer SD print controller",
	Long: `Gnomon - A CLI tool for driving SD card prints on Marlin-style 3D printers.

Starts, pauses, resumes and aborts prints stored on the printer's SD card,
tracks progress from the firmware's status reports and estimates the time
remaining.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Settings may also come from a TOML file (--config, default
~/.config/gnomon/config.toml). Flags override file values.

For WebSocket authentication, the password is read from the GNOMON_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: auto, text, json")
}

// loadSettings merges the config file with explicitly set flags and
// builds the logger
func loadSettings(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		loaded.Connection.Port = portName
	}
	if flags.Changed("baud") {
		loaded.Connection.Baud = baudRate
	}
	if flags.Changed("url") {
		loaded.Connection.URL = wsURL
	}
	if flags.Changed("username") {
		loaded.Connection.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		loaded.Connection.NoSSLVerify = wsNoSSLVerify
	}
	if logLevel != "" {
		loaded.Log.Level = strings.ToLower(logLevel)
	}
	if logFormat != "" {
		loaded.Log.Format = strings.ToLower(logFormat)
	}

	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(logging.Options{Level: loaded.Log.Level, Format: loaded.Log.Format})
	if err != nil {
		return err
	}

	cfg = loaded
	logger = l
	slog.SetDefault(l)
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
