package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "HOST", "LOG_LEVEL", "LOG_DEV",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED", "CORS_ORIGINS",
	"STORAGE_DIR", "STORAGE_COMPRESS",
	"SNAPSHOT_URL", "SNAPSHOT_DIR", "SNAPSHOT_TIMEOUT", "SNAPSHOT_IGNORE",
	"VIEWPORT_WIDTH", "VIEWPORT_HEIGHT", "GRID_SIZE", "PLACEMENT_STEP",
	"PLACEMENT_MARGIN", "CASCADE_STEP", "Z_FLOOR", "APPS_FILE", "WALLPAPER_DIR",
}

// clearEnv unsets every variable Load reads and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Persistence and snapshot
	assert.Empty(t, cfg.Storage.Dir)
	assert.Equal(t, 10*time.Second, cfg.Snapshot.Timeout)

	// Desktop
	assert.Equal(t, 8, cfg.Desktop.GridSize)
	assert.Equal(t, 20, cfg.Desktop.ZFloor)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOrDefault(t *testing.T) {
	clearEnv(t)

	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOrDefaultFallsBackOnInvalid(t *testing.T) {
	clearEnv(t)

	t.Setenv("GRID_SIZE", "0")

	cfg := LoadOrDefault()
	assert.Equal(t, 8, cfg.Desktop.GridSize)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearEnv(t)

	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"CORS_ORIGINS":       "http://localhost:3000,https://desk.example",
		"STORAGE_DIR":        "/var/lib/retrodesk",
		"STORAGE_COMPRESS":   "true",
		"SNAPSHOT_URL":       "http://assets/vfs.json",
		"SNAPSHOT_DIR":       "/srv/public",
		"SNAPSHOT_TIMEOUT":   "3s",
		"SNAPSHOT_IGNORE":    "drafts,drafts/**",
		"VIEWPORT_WIDTH":     "1920",
		"VIEWPORT_HEIGHT":    "1080",
		"GRID_SIZE":          "16",
		"PLACEMENT_STEP":     "12",
		"PLACEMENT_MARGIN":   "0",
		"CASCADE_STEP":       "40",
		"Z_FLOOR":            "100",
		"APPS_FILE":          "apps.yaml",
		"WALLPAPER_DIR":      "/srv/wallpapers",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"http://localhost:3000", "https://desk.example"}, cfg.CORS.Origins)
	assert.Equal(t, "/var/lib/retrodesk", cfg.Storage.Dir)
	assert.True(t, cfg.Storage.Compress)
	assert.Equal(t, "http://assets/vfs.json", cfg.Snapshot.URL)
	assert.Equal(t, "/srv/public", cfg.Snapshot.Dir)
	assert.Equal(t, 3*time.Second, cfg.Snapshot.Timeout)
	assert.Equal(t, []string{"drafts", "drafts/**"}, cfg.Snapshot.Ignore)
	assert.Equal(t, DesktopConfig{
		ViewportWidth:   1920,
		ViewportHeight:  1080,
		GridSize:        16,
		PlacementStep:   12,
		PlacementMargin: 0,
		CascadeStep:     40,
		ZFloor:          100,
	}, cfg.Desktop)
	assert.Equal(t, "apps.yaml", cfg.Registry.AppsFile)
	assert.Equal(t, "/srv/wallpapers", cfg.Wallpapers.Dir)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1280, cfg.Desktop.ViewportWidth)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric rps", "RATE_LIMIT_RPS", "fast"},
		{"bad duration", "SNAPSHOT_TIMEOUT", "soon"},
		{"bad bool", "LOG_DEV", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero margin", func(c *Config) { c.Desktop.PlacementMargin = 0 }, false},
		{"negative margin", func(c *Config) { c.Desktop.PlacementMargin = -1 }, true},
		{"zero viewport", func(c *Config) { c.Desktop.ViewportWidth = 0 }, true},
		{"zero grid", func(c *Config) { c.Desktop.GridSize = 0 }, true},
		{"zero step", func(c *Config) { c.Desktop.PlacementStep = 0 }, true},
		{"zero timeout", func(c *Config) { c.Snapshot.Timeout = 0 }, true},
		{"zero rps when enabled", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, true},
		{"zero rps when disabled", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.RequestsPerSecond = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
