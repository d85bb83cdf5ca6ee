// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and manages the ask-herbie configuration.
//
// Configuration is read from ~/.herbie/config.toml, with environment
// variable overrides applied last and built-in defaults underneath.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete ask-herbie configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	UI      UIConfig      `toml:"ui"`
	Export  ExportConfig  `toml:"export"`
	Trigger TriggerConfig `toml:"trigger"`
}

// APIConfig holds the backend connection settings.
type APIConfig struct {
	// BaseURL is the Herbie backend API root.
	BaseURL string `toml:"base_url"`
	// WordPressURL is the WordPress site root hosting the user-info endpoint.
	WordPressURL string `toml:"wordpress_url"`
	// Token is the bearer token; empty means the unauthenticated flow.
	Token string `toml:"token"`
	// TimeoutSecs bounds a whole non-streaming request.
	TimeoutSecs int `toml:"timeout_secs"`
	// StreamTimeoutSecs bounds the wait for stream response headers only.
	StreamTimeoutSecs int `toml:"stream_timeout_secs"`
	// RequestsPerSecond and Burst shape the client-side rate limiter.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto".
	Theme string `toml:"theme"`
	// Typewriter reveals streamed answers character by character.
	Typewriter bool `toml:"typewriter"`
	// ShowTimestamps displays message timestamps in the transcript.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// ExportConfig holds transcript export settings.
type ExportConfig struct {
	// OutputDir is where exported transcripts are written.
	OutputDir string `toml:"output_dir"`
	// DefaultFormat is used when no format flag is given: txt, md, json, html.
	DefaultFormat string `toml:"default_format"`
}

// TriggerConfig holds external trigger spool settings.
type TriggerConfig struct {
	// Enabled starts the spool watcher in the TUI.
	Enabled bool `toml:"enabled"`
	// DebounceMs delays spool consumption after a filesystem event.
	DebounceMs int `toml:"debounce_ms"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://askherbie.ai/api",
			WordPressURL:      "https://askherbie.ai",
			TimeoutSecs:       30,
			StreamTimeoutSecs: 15,
			RequestsPerSecond: 8,
			Burst:             4,
		},
		UI: UIConfig{
			Theme:          "dark",
			Typewriter:     true,
			ShowTimestamps: true,
		},
		Export: ExportConfig{
			OutputDir:     ".",
			DefaultFormat: "txt",
		},
		Trigger: TriggerConfig{
			Enabled:    true,
			DebounceMs: 100,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the ask-herbie configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".herbie"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// ensureSecurePermissions tightens config file permissions to 0600.
// The file can carry a bearer token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions: %w", err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, applies environment overrides and defaults,
// and validates the result. A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

// LoadFromPath loads a specific config file with overrides and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file with 0600
// permissions.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# ask-herbie configuration file")
	fmt.Fprintln(file, "# Edit with care; the token field grants account access.")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills any missing or zero-value fields from Default.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.WordPressURL == "" {
		c.API.WordPressURL = defaults.API.WordPressURL
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.API.StreamTimeoutSecs == 0 {
		c.API.StreamTimeoutSecs = defaults.API.StreamTimeoutSecs
	}
	if c.API.RequestsPerSecond == 0 {
		c.API.RequestsPerSecond = defaults.API.RequestsPerSecond
	}
	if c.API.Burst == 0 {
		c.API.Burst = defaults.API.Burst
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = defaults.Export.OutputDir
	}
	if c.Export.DefaultFormat == "" {
		c.Export.DefaultFormat = defaults.Export.DefaultFormat
	}
	if c.Trigger.DebounceMs == 0 {
		c.Trigger.DebounceMs = defaults.Trigger.DebounceMs
	}
}

// ValidationError is a single configuration validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	for _, check := range []struct {
		field string
		value string
	}{
		{"api.base_url", c.API.BaseURL},
		{"api.wordpress_url", c.API.WordPressURL},
	} {
		u, err := url.Parse(check.value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   check.field,
				Message: fmt.Sprintf("invalid URL %q", check.value),
			})
		}
	}

	if c.API.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: "must be non-negative",
		})
	}
	if c.API.StreamTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.stream_timeout_secs",
			Message: "must be non-negative",
		})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.requests_per_second",
			Message: "must be non-negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	validFormats := map[string]bool{"txt": true, "md": true, "json": true, "html": true}
	if !validFormats[strings.ToLower(c.Export.DefaultFormat)] {
		errs = append(errs, ValidationError{
			Field:   "export.default_format",
			Message: fmt.Sprintf("invalid format %q, must be one of: txt, md, json, html", c.Export.DefaultFormat),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - HERBIE_API_URL: overrides api.base_url
//   - HERBIE_WORDPRESS_URL: overrides api.wordpress_url
//   - HERBIE_TOKEN: overrides api.token
//   - HERBIE_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("HERBIE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("HERBIE_WORDPRESS_URL"); v != "" {
		c.API.WordPressURL = v
	}
	if v := os.Getenv("HERBIE_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("HERBIE_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// GLOBAL INSTANCE
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
