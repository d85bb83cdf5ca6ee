// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.API.TimeoutSecs != 30 || cfg.API.StreamTimeoutSecs != 15 {
		t.Errorf("unexpected timeout defaults: %d/%d", cfg.API.TimeoutSecs, cfg.API.StreamTimeoutSecs)
	}
	if cfg.API.Token != "" {
		t.Error("default config should not carry a token")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[api]
base_url = "https://staging.askherbie.ai/api"
token = "abc123"

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.API.BaseURL != "https://staging.askherbie.ai/api" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "abc123" {
		t.Errorf("token = %q", cfg.API.Token)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	// Unset fields fall back to defaults.
	if cfg.API.WordPressURL != Default().API.WordPressURL {
		t.Errorf("wordpress_url = %q", cfg.API.WordPressURL)
	}
	if cfg.Export.DefaultFormat != "txt" {
		t.Errorf("default_format = %q", cfg.Export.DefaultFormat)
	}
}

func TestLoadFromPathFixesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[api]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions not tightened: %o", info.Mode().Perm())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HERBIE_API_URL", "https://dev.askherbie.ai/api")
	t.Setenv("HERBIE_TOKEN", "env-token")
	t.Setenv("HERBIE_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "https://dev.askherbie.ai/api" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("token = %q", cfg.API.Token)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "not a url"
	cfg.UI.Theme = "neon"
	cfg.Export.DefaultFormat = "pdf"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"api.base_url", "ui.theme", "export.default_format"} {
		if !strings.Contains(msg, want) {
			t.Errorf("validation error missing %q: %s", want, msg)
		}
	}
}
