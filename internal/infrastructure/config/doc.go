// Package config provides 12-factor configuration management for the desktop backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: Allowed browser origins
//   - Storage: Where overlay and window geometry are persisted
//   - Snapshot: Where the bundled filesystem tree comes from
//   - Desktop: Viewport, grid and placement tunables
//   - Registry, Wallpapers: Optional data files
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, CORS_ORIGINS
//   - STORAGE_DIR, STORAGE_COMPRESS
//   - SNAPSHOT_URL, SNAPSHOT_DIR, SNAPSHOT_TIMEOUT, SNAPSHOT_IGNORE
//   - VIEWPORT_WIDTH, VIEWPORT_HEIGHT, GRID_SIZE, PLACEMENT_STEP,
//     PLACEMENT_MARGIN, CASCADE_STEP, Z_FLOOR
//   - APPS_FILE, WALLPAPER_DIR
package config
