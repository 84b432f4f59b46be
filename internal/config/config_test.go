package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Default Config Tests
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, "http://localhost:8000")
	}
	if cfg.Server.TimeoutSeconds != 30 {
		t.Errorf("Server.TimeoutSeconds = %d, want 30", cfg.Server.TimeoutSeconds)
	}

	if cfg.Realtime.Path != "/api/ops-planner/ws" {
		t.Errorf("Realtime.Path = %q, want %q", cfg.Realtime.Path, "/api/ops-planner/ws")
	}
	if cfg.Realtime.ReconnectSeconds != 5 {
		t.Errorf("Realtime.ReconnectSeconds = %d, want 5", cfg.Realtime.ReconnectSeconds)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestDefault_DataDirContainsSentinel(t *testing.T) {
	cfg := Default()

	if !filepath.IsAbs(cfg.DataDir) {
		t.Error("DataDir should be an absolute path")
	}

	if filepath.Base(cfg.DataDir) != ".sentinel" {
		t.Errorf("DataDir should end with .sentinel, got %q", filepath.Base(cfg.DataDir))
	}
}

// =============================================================================
// Load Config Tests
// =============================================================================

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load("/non/existent/path/config.json")

	if err != nil {
		t.Fatalf("Load() error = %v, want nil for non-existent file", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Should have defaults
	if cfg.Server.TimeoutSeconds != 30 {
		t.Errorf("Server.TimeoutSeconds = %d, want 30 (default)", cfg.Server.TimeoutSeconds)
	}
}

func TestLoad_ValidConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testConfig := Config{
		DataDir: tmpDir,
		Server: ServerConfig{
			BaseURL:        "https://ops.example.io",
			TimeoutSeconds: 10,
		},
		Realtime: RealtimeConfig{
			Path:             "/api/ops-planner/ws",
			ReconnectSeconds: 2,
		},
		Log: LogConfig{Level: "debug"},
	}

	data, err := json.Marshal(testConfig)
	if err != nil {
		t.Fatalf("failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	os.Unsetenv("SENTINEL_BASE_URL")
	os.Unsetenv("SENTINEL_LOG_LEVEL")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "https://ops.example.io" {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, "https://ops.example.io")
	}
	if cfg.Server.TimeoutSeconds != 10 {
		t.Errorf("Server.TimeoutSeconds = %d, want 10", cfg.Server.TimeoutSeconds)
	}
	if cfg.Realtime.ReconnectSeconds != 2 {
		t.Errorf("Realtime.ReconnectSeconds = %d, want 2", cfg.Realtime.ReconnectSeconds)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	os.WriteFile(configPath, []byte(`{"server":{"base_url":"http://file.local"}}`), 0644)

	os.Setenv("SENTINEL_BASE_URL", "http://env.local")
	defer os.Unsetenv("SENTINEL_BASE_URL")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "http://env.local" {
		t.Errorf("Server.BaseURL = %q, want env override %q", cfg.Server.BaseURL, "http://env.local")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	os.WriteFile(configPath, []byte("{ invalid json }"), 0644)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid JSON")
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	os.WriteFile(configPath, []byte(`{"server":{"timeout_seconds":5}}`), 0644)
	os.Unsetenv("SENTINEL_BASE_URL")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.TimeoutSeconds != 5 {
		t.Errorf("Server.TimeoutSeconds = %d, want 5", cfg.Server.TimeoutSeconds)
	}
	// BaseURL keeps its default since the file didn't set it
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("Server.BaseURL = %q, want default", cfg.Server.BaseURL)
	}
}

func TestLoad_BackfillsDeviceID(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	// Config written before device IDs existed
	os.WriteFile(configPath, []byte(`{"server":{"base_url":"http://x"}}`), 0644)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DeviceID == "" {
		t.Error("DeviceID not backfilled on load")
	}
}

func TestLoad_KeepsPersistedDeviceID(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	os.WriteFile(configPath, []byte(`{"device_id":"dev-persisted"}`), 0644)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DeviceID != "dev-persisted" {
		t.Errorf("DeviceID = %q, want %q", cfg.DeviceID, "dev-persisted")
	}
}

// =============================================================================
// Save Config Tests
// =============================================================================

func TestSave_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.json")

	cfg := Default()
	cfg.DataDir = tmpDir
	cfg.Server.TimeoutSeconds = 99

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("failed to unmarshal saved config: %v", err)
	}
	if loaded.Server.TimeoutSeconds != 99 {
		t.Errorf("saved Server.TimeoutSeconds = %d, want 99", loaded.Server.TimeoutSeconds)
	}
}

func TestSave_FilePermissions(t *testing.T) {
	if os.Getenv("OS") == "Windows_NT" {
		t.Skip("Skipping permission test on Windows")
	}

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := Default()
	cfg.Save(configPath)

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("failed to stat config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

// =============================================================================
// Derived Value Tests
// =============================================================================

func TestRequestTimeout(t *testing.T) {
	cfg := Default()
	cfg.Server.TimeoutSeconds = 7
	if got := cfg.RequestTimeout(); got != 7*time.Second {
		t.Errorf("RequestTimeout() = %v, want 7s", got)
	}

	cfg.Server.TimeoutSeconds = 0
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s fallback", got)
	}
}

func TestReconnectDelay(t *testing.T) {
	cfg := Default()
	if got := cfg.ReconnectDelay(); got != 5*time.Second {
		t.Errorf("ReconnectDelay() = %v, want 5s", got)
	}

	cfg.Realtime.ReconnectSeconds = -1
	if got := cfg.ReconnectDelay(); got != 5*time.Second {
		t.Errorf("ReconnectDelay() = %v, want 5s fallback", got)
	}
}

func TestRealtimeURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"http", "http://localhost:8000", "ws://localhost:8000/api/ops-planner/ws"},
		{"https", "https://ops.example.io", "wss://ops.example.io/api/ops-planner/ws"},
		{"trailing slash", "http://localhost:8000/", "ws://localhost:8000/api/ops-planner/ws"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.BaseURL = tt.baseURL
			if got := cfg.RealtimeURL(); got != tt.want {
				t.Errorf("RealtimeURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSave_PrettyPrints(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := Default()
	cfg.Save(configPath)

	data, _ := os.ReadFile(configPath)
	if !strings.Contains(string(data), "\n") {
		t.Error("saved config should be pretty-printed with newlines")
	}
}
