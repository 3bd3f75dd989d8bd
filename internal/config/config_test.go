// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.URL != "http://localhost:5001" {
		t.Errorf("default server URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSeconds != 60 {
		t.Errorf("default timeout = %d, want 60", cfg.Server.TimeoutSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1"

[server]
url = "https://askme.example.com"
timeout_seconds = 30

[ui]
theme = "dark"
markdown = false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.URL != "https://askme.example.com" {
		t.Errorf("server URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSeconds != 30 {
		t.Errorf("timeout = %d, want 30", cfg.Server.TimeoutSeconds)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q, want dark", cfg.UI.Theme)
	}
	if cfg.UI.Markdown {
		t.Error("markdown should be disabled")
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"server": {"url": "http://10.0.0.2:5001", "timeout_seconds": 15}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.URL != "http://10.0.0.2:5001" {
		t.Errorf("server URL = %q", cfg.Server.URL)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ASKME_SERVER_URL", "https://override.example.com")
	t.Setenv("ASKME_TIMEOUT_SECONDS", "10")
	t.Setenv("ASKME_THEME", "dark")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.URL != "https://override.example.com" {
		t.Errorf("server URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSeconds != 10 {
		t.Errorf("timeout = %d, want 10", cfg.Server.TimeoutSeconds)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q, want dark", cfg.UI.Theme)
	}
}

func TestApplyEnvOverrides_InvalidTimeoutIgnored(t *testing.T) {
	t.Setenv("ASKME_TIMEOUT_SECONDS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.TimeoutSeconds != 60 {
		t.Errorf("timeout = %d, want default 60", cfg.Server.TimeoutSeconds)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://host" }, true},
		{"missing host", func(c *Config) { c.Server.URL = "http://" }, true},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSeconds = 0 }, true},
		{"negative rate", func(c *Config) { c.Server.RequestsPerSecond = -1 }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"empty theme ok", func(c *Config) { c.UI.Theme = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal() and
// ReloadGlobal() can be called concurrently without races.
// Run with: go test -race ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()

		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}
