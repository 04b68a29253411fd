package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Storage    StorageConfig
	Snapshot   SnapshotConfig
	Desktop    DesktopConfig
	Registry   RegistryConfig
	Wallpapers WallpaperConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// StorageConfig selects the persistence backend. An empty Dir keeps
// everything in memory.
type StorageConfig struct {
	Dir      string `envconfig:"STORAGE_DIR" default:""`
	Compress bool   `envconfig:"STORAGE_COMPRESS" default:"false"`
}

// SnapshotConfig selects where the bundled filesystem snapshot is read from.
// URL wins over Dir; with neither set the built-in tree is used.
type SnapshotConfig struct {
	URL     string        `envconfig:"SNAPSHOT_URL" default:""`
	Dir     string        `envconfig:"SNAPSHOT_DIR" default:""`
	Timeout time.Duration `envconfig:"SNAPSHOT_TIMEOUT" default:"10s"`
	Ignore  []string      `envconfig:"SNAPSHOT_IGNORE" default:".git,.git/**,node_modules,node_modules/**"`
}

// DesktopConfig holds window placement tunables.
type DesktopConfig struct {
	ViewportWidth   int `envconfig:"VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight  int `envconfig:"VIEWPORT_HEIGHT" default:"800"`
	GridSize        int `envconfig:"GRID_SIZE" default:"8"`
	PlacementStep   int `envconfig:"PLACEMENT_STEP" default:"24"`
	PlacementMargin int `envconfig:"PLACEMENT_MARGIN" default:"16"`
	CascadeStep     int `envconfig:"CASCADE_STEP" default:"32"`
	ZFloor          int `envconfig:"Z_FLOOR" default:"20"`
}

// RegistryConfig points at an optional application definitions file.
type RegistryConfig struct {
	AppsFile string `envconfig:"APPS_FILE" default:""`
}

// WallpaperConfig holds the wallpaper image directory.
type WallpaperConfig struct {
	Dir string `envconfig:"WALLPAPER_DIR" default:"public/wallpapers"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
		Snapshot: SnapshotConfig{
			Timeout: 10 * time.Second,
			Ignore:  []string{".git", ".git/**", "node_modules", "node_modules/**"},
		},
		Desktop: DesktopConfig{
			ViewportWidth:   1280,
			ViewportHeight:  800,
			GridSize:        8,
			PlacementStep:   24,
			PlacementMargin: 16,
			CascadeStep:     32,
			ZFloor:          20,
		},
		Wallpapers: WallpaperConfig{
			Dir: "public/wallpapers",
		},
	}
}

// Validate rejects values the desktop cannot work with.
func (c *Config) Validate() error {
	d := c.Desktop
	switch {
	case d.ViewportWidth <= 0 || d.ViewportHeight <= 0:
		return fmt.Errorf("viewport must be positive, got %dx%d", d.ViewportWidth, d.ViewportHeight)
	case d.GridSize <= 0:
		return fmt.Errorf("grid size must be positive, got %d", d.GridSize)
	case d.PlacementStep <= 0 || d.CascadeStep <= 0:
		return fmt.Errorf("placement and cascade steps must be positive")
	case d.PlacementMargin < 0:
		return fmt.Errorf("placement margin must not be negative, got %d", d.PlacementMargin)
	case c.Snapshot.Timeout <= 0:
		return fmt.Errorf("snapshot timeout must be positive, got %s", c.Snapshot.Timeout)
	case c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0):
		return fmt.Errorf("rate limit must be positive when enabled")
	}
	return nil
}
