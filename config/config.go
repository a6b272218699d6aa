package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds persistent TUI settings stored at <profileDir>/tui.json.
type Config struct {
	Theme                 string `json:"theme,omitempty"`
	BackendURL            string `json:"backend_url,omitempty"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds,omitempty"`
	LogLevel              string `json:"log_level,omitempty"`
}

const (
	filename = "tui.json"

	// DefaultBackendURL is where the MAYA API listens in local development.
	DefaultBackendURL = "http://localhost:8000"
	// DefaultRequestTimeout bounds a single HTTP call. Agent replies can take
	// minutes when several agents run.
	DefaultRequestTimeout = 180
)

// Load reads <profileDir>/tui.json and returns the parsed Config.
// If the file is absent or unreadable, a default Config is returned.
func Load(profileDir string) Config {
	cfg := defaults()
	data, err := os.ReadFile(filepath.Join(profileDir, filename))
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaults()
	}
	cfg.fill()
	return cfg
}

// Save writes cfg to <profileDir>/tui.json, creating the directory if needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(profileDir, filename), data, 0o644)
}

// ApplyEnv overrides fields from MAYA_URL and MAYA_LOG_LEVEL.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("MAYA_URL")); v != "" {
		c.BackendURL = v
	}
	if v := strings.TrimSpace(getenv("MAYA_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

// RequestTimeout returns the configured per-request timeout.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) fill() {
	d := defaults()
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.BackendURL == "" {
		c.BackendURL = d.BackendURL
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

func defaults() Config {
	return Config{
		Theme:                 "dark",
		BackendURL:            DefaultBackendURL,
		RequestTimeoutSeconds: DefaultRequestTimeout,
		LogLevel:              "info",
	}
}
