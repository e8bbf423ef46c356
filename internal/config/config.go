// Package config loads runtime configuration for ownerchart.
//
// Configuration is resolved in three layers, later layers winning:
//
//  1. Built-in defaults
//  2. TOML config file (~/.config/ownerchart/config.toml by default)
//  3. OWNERCHART_* environment variables
//
// Command-line flags override all of these where a command exposes them.
// The backend base URL is deliberately a runtime setting, never a
// compiled-in constant.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jsterling/ownerchart/pkg/errors"
)

const appName = "ownerchart"

// Config holds all runtime settings.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
	Web     WebConfig     `toml:"web"`
}

// BackendConfig locates the ownership-resolution service.
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"` // request timeout; 0 = client default
}

// Timeout returns the configured request timeout, 0 for the client default.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// CacheConfig controls response caching.
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	Dir        string `toml:"dir"`         // file cache directory; empty = XDG default
	TTLMinutes int    `toml:"ttl_minutes"` // file entry TTL; 0 = backend default
	RedisAddr  string `toml:"redis_addr"`  // non-empty switches to the Redis backend
}

// HistoryConfig controls lookup-history storage.
type HistoryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`      // file store path; empty = XDG default
	MongoURI string `toml:"mongo_uri"` // non-empty switches to the MongoDB backend
}

// WebConfig controls the local web UI.
type WebConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Backend: BackendConfig{BaseURL: "http://localhost:8000"},
		Cache:   CacheConfig{Enabled: true},
		History: HistoryConfig{Enabled: true},
		Web:     WebConfig{ListenAddr: "localhost:8080"},
	}
}

// Load reads configuration from path, falling back to the default location
// when path is empty. A missing file is not an error; defaults and
// environment variables still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
	}

	applyEnv(&cfg)

	if err := errors.ValidateURL(cfg.Backend.BaseURL); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "backend base_url")
	}
	return cfg, nil
}

// applyEnv overrides settings from OWNERCHART_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OWNERCHART_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("OWNERCHART_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("OWNERCHART_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("OWNERCHART_MONGO_URI"); v != "" {
		cfg.History.MongoURI = v
	}
	if v := os.Getenv("OWNERCHART_LISTEN_ADDR"); v != "" {
		cfg.Web.ListenAddr = v
	}
}

// DefaultPath returns the default config file location using the XDG standard
// (~/.config/ownerchart/config.toml). Returns "" if no home is available.
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// CacheDir returns the file-cache directory, using the XDG standard
// (~/.cache/ownerchart/) when unset.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// TTL returns the configured file-cache TTL as a duration, 0 for default.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// HistoryPath returns the history file location, using the XDG standard
// (~/.local/state/ownerchart/history.json) when unset.
func (c HistoryConfig) HistoryPath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName, "history.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName, "history.json"), nil
}
