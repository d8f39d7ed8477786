// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package config loads and manages recipechat configuration.
//
// Configuration comes from ~/.recipechat/config.toml, with built-in defaults
// and environment variable overrides applied on top.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete recipechat configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
}

// BackendConfig describes the RAG backend connection.
type BackendConfig struct {
	// URL is the base URL of the backend API server.
	URL string `toml:"url"`
	// TimeoutSecs is the request timeout for short calls (health, stats).
	TimeoutSecs int `toml:"timeout_secs"`
	// QueryTimeoutSecs is the end-to-end deadline for one query, streaming
	// included. Retrieval plus generation can legitimately take minutes.
	QueryTimeoutSecs int `toml:"query_timeout_secs"`
	// MaxAttempts is the connection attempt budget per query.
	MaxAttempts int `toml:"max_attempts"`
	// RetryDelayMillis is the base delay before the first retry; later
	// retries double it.
	RetryDelayMillis int `toml:"retry_delay_millis"`
	// QueriesPerSecond rate-limits outgoing queries (0 = unlimited).
	QueriesPerSecond float64 `toml:"queries_per_second"`
}

// StorageConfig describes conversation persistence.
type StorageConfig struct {
	// Kind selects the backend: "file", "sqlite", or "memory".
	Kind string `toml:"kind"`
	// Path is the storage location. For "file" it is a directory; for
	// "sqlite" a database file. Empty means the default under ~/.recipechat.
	Path string `toml:"path"`
}

// LoggingConfig describes the debug log.
type LoggingConfig struct {
	// Debug enables debug-level logging.
	Debug bool `toml:"debug"`
	// Path is the log file location (empty = ~/.recipechat/debug.log).
	Path string `toml:"path"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto".
	Theme string `toml:"theme"`
	// ShowSources renders cited recipe documents under each answer.
	ShowSources bool `toml:"show_sources"`
	// ShowRouting displays the retrieval strategy and complexity per answer.
	ShowRouting bool `toml:"show_routing"`
	// Markdown renders assistant answers as markdown.
	Markdown bool `toml:"markdown"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:              "http://127.0.0.1:8000",
			TimeoutSecs:      30,
			QueryTimeoutSecs: 120,
			MaxAttempts:      2,
			RetryDelayMillis: 1000,
			QueriesPerSecond: 0,
		},
		Storage: StorageConfig{
			Kind: "file",
			Path: "",
		},
		Logging: LoggingConfig{
			Debug: false,
			Path:  "",
		},
		UI: UIConfig{
			Theme:       "dark",
			ShowSources: true,
			ShowRouting: true,
			Markdown:    true,
		},
	}
}

// Timeout returns the short-call timeout as a duration.
func (c *BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// QueryTimeout returns the per-query deadline as a duration.
func (c *BackendConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSecs) * time.Second
}

// RetryDelay returns the base retry delay as a duration.
func (c *BackendConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMillis) * time.Millisecond
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the recipechat configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".recipechat"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// StoragePath resolves the storage location, falling back to the default
// under the config directory for the configured kind.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	switch c.Storage.Kind {
	case "sqlite":
		return filepath.Join(dir, "conversations.db"), nil
	default:
		return filepath.Join(dir, "conversations"), nil
	}
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file. A missing file is
// not an error: defaults are used. Environment overrides apply last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file, applying
// defaults for absent keys, then environment overrides, then validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies RECIPECHAT_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("RECIPECHAT_BACKEND_URL"); u != "" {
		c.Backend.URL = u
	}
	if secs := os.Getenv("RECIPECHAT_QUERY_TIMEOUT"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			c.Backend.QueryTimeoutSecs = n
		}
	}
	if kind := os.Getenv("RECIPECHAT_STORAGE"); kind != "" {
		c.Storage.Kind = kind
	}
	if debug := os.Getenv("RECIPECHAT_DEBUG"); debug != "" {
		c.Logging.Debug = debug == "1" || strings.EqualFold(debug, "true")
	}
	if theme := os.Getenv("RECIPECHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.Backend.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("backend.url %q is not a valid URL", c.Backend.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend.url scheme %q is not http or https", parsed.Scheme)
	}

	if c.Backend.TimeoutSecs <= 0 {
		return fmt.Errorf("backend.timeout_secs must be positive, got %d", c.Backend.TimeoutSecs)
	}
	if c.Backend.QueryTimeoutSecs <= 0 {
		return fmt.Errorf("backend.query_timeout_secs must be positive, got %d", c.Backend.QueryTimeoutSecs)
	}
	if c.Backend.MaxAttempts < 1 {
		return fmt.Errorf("backend.max_attempts must be at least 1, got %d", c.Backend.MaxAttempts)
	}
	if c.Backend.QueriesPerSecond < 0 {
		return fmt.Errorf("backend.queries_per_second must not be negative")
	}

	switch c.Storage.Kind {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.kind %q is not one of file, sqlite, memory", c.Storage.Kind)
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme %q is not one of dark, light, auto", c.UI.Theme)
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default config file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path as TOML with a header comment.
// The file is created 0600.
func SaveTOML(cfg *Config, path string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# recipechat configuration file")
	fmt.Fprintln(file, "# Edit by hand or via `recipechat config`")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
