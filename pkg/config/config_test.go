// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Connection.Baud != 115200 {
		t.Errorf("baud = %d", cfg.Connection.Baud)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[connection]
port = " /dev/ttyACM0 "
baud = 250000

[engine]
report_interval = 2
long_filenames = true

[log]
level = "DEBUG"
format = "json"

[history]
path = "/tmp/gnomon-history.cbor"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Connection.Port != "/dev/ttyACM0" || cfg.Connection.Baud != 250000 {
		t.Errorf("connection = %+v", cfg.Connection)
	}
	if cfg.Engine.ReportInterval != 2 || !cfg.Engine.LongFilenames {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.ListTimeout != defaultListTimeout {
		t.Errorf("unset list_timeout should keep default, got %d", cfg.Engine.ListTimeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.History.Path != "/tmp/gnomon-history.cbor" {
		t.Errorf("history path = %q", cfg.History.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[connection\n", "parse config"},
		{"unknown key", "[engine]\nspeed = 3\n", "parse config"},
		{"bad baud", "[connection]\nbaud = 0\n", "connection.baud"},
		{"bad url", "[connection]\nurl = \"http://printer\"\n", "connection.url"},
		{"negative interval", "[engine]\nreport_interval = -1\n", "engine.report_interval"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"bad format", "[log]\nformat = \"xml\"\n", "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/history.cbor")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "history.cbor"); got != want {
		t.Errorf("expandPath = %q, want %q", got, want)
	}
}
