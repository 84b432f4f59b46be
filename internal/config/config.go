// Package config handles Sentinel Ops client configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir"`

	// DeviceID identifies this install in the server's identity logs.
	// Generated once and persisted with the rest of the config.
	DeviceID string `json:"device_id"`

	// Backend
	Server ServerConfig `json:"server"`

	// Realtime channel
	Realtime RealtimeConfig `json:"realtime"`

	// Logging
	Log LogConfig `json:"log"`
}

// ServerConfig for the backend REST API
type ServerConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// RealtimeConfig for the notification channel
type RealtimeConfig struct {
	// Path of the WebSocket endpoint relative to the base URL.
	Path string `json:"path"`
	// Delay before a single reconnect attempt after a drop.
	ReconnectSeconds int `json:"reconnect_seconds"`
}

// LogConfig for client logging
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir:  filepath.Join(home, ".sentinel"),
		DeviceID: uuid.NewString(),
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Realtime: RealtimeConfig{
			Path:             "/api/ops-planner/ws",
			ReconnectSeconds: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ensureDeviceID backfills the device ID on configs written by older builds.
func (c *Config) ensureDeviceID() {
	if c.DeviceID == "" {
		c.DeviceID = uuid.NewString()
	}
}

// Load loads config from file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.ensureDeviceID()
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values from the environment
func (c *Config) applyEnv() {
	if url := os.Getenv("SENTINEL_BASE_URL"); url != "" {
		c.Server.BaseURL = url
	}
	if level := os.Getenv("SENTINEL_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// RequestTimeout returns the HTTP timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// ReconnectDelay returns the realtime reconnect delay as a duration
func (c *Config) ReconnectDelay() time.Duration {
	if c.Realtime.ReconnectSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Realtime.ReconnectSeconds) * time.Second
}

// RealtimeURL returns the WebSocket endpoint derived from the base URL.
// The token travels as a query parameter because socket handshakes from
// browser clients cannot set custom headers; the native client keeps the
// same handshake shape so the server only has to support one.
func (c *Config) RealtimeURL() string {
	url := c.Server.BaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return strings.TrimSuffix(url, "/") + c.Realtime.Path
}
