package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/retrodesk/internal/api/http"
	"github.com/GriffinCanCode/retrodesk/internal/api/middleware"
	"github.com/GriffinCanCode/retrodesk/internal/api/ws"
	"github.com/GriffinCanCode/retrodesk/internal/domain/placement"
	"github.com/GriffinCanCode/retrodesk/internal/domain/registry"
	"github.com/GriffinCanCode/retrodesk/internal/domain/settings"
	"github.com/GriffinCanCode/retrodesk/internal/domain/shell"
	"github.com/GriffinCanCode/retrodesk/internal/domain/vfs"
	"github.com/GriffinCanCode/retrodesk/internal/domain/wallpaper"
	"github.com/GriffinCanCode/retrodesk/internal/domain/window"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/storage"
	"github.com/GriffinCanCode/retrodesk/internal/shared/events"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// ShutdownTimeout bounds graceful shutdown
const ShutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	windows *window.Manager
	fs      *vfs.Filesystem
	apps    *registry.Manager
	bus     *events.Bus
	store   storage.Store
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing desktop server",
		zap.String("port", cfg.Server.Port),
		zap.String("storage_dir", cfg.Storage.Dir),
		zap.String("snapshot_url", cfg.Snapshot.URL),
		zap.String("snapshot_dir", cfg.Snapshot.Dir),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	bus := events.NewBus()

	store, err := newStore(cfg.Storage, logger.Named("storage").Logger)
	if err != nil {
		return nil, err
	}

	fs := vfs.New(store, newSnapshotSource(cfg.Snapshot), logger.Named("vfs").Logger).
		WithMetrics(metrics).
		WithEvents(bus).
		WithTimeout(cfg.Snapshot.Timeout)

	apps := registry.NewDefault().WithMetrics(metrics)
	if n, err := registry.NewSeeder(apps, logger.Named("registry").Logger).Seed(cfg.Registry.AppsFile); err != nil {
		logger.Warn("Failed to seed apps", zap.Error(err))
	} else if n > 0 {
		logger.Info("Loaded app definitions", zap.Int("count", n))
	}

	d := cfg.Desktop
	windows := window.NewManager(window.Config{
		Viewport: types.Viewport{Width: d.ViewportWidth, Height: d.ViewportHeight},
		GridSize: d.GridSize,
		ZFloor:   d.ZFloor,
		Engine:   placement.New(d.PlacementStep, d.PlacementMargin, d.CascadeStep),
	}, apps, window.NewGeometryStore(store), logger.Named("window").Logger).
		WithMetrics(metrics).
		WithEvents(bus)

	sh := shell.New(fs, logger.Named("shell").Logger).WithMetrics(metrics)
	wallpapers := wallpaper.NewLister(cfg.Wallpapers.Dir, logger.Named("wallpaper").Logger)

	images, err := wallpapers.List()
	if err != nil {
		logger.Warn("Failed to list wallpapers", zap.Error(err))
	}
	prefs := settings.New(store, settings.Defaults(images), logger.Named("settings").Logger).
		WithMetrics(metrics).
		WithEvents(bus)
	prefs.Hydrate(context.Background())

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(middleware.Recovery(logger.Logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Named("http").Logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSForOrigins(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := api.NewHandlers(api.Deps{
		Windows:    windows,
		FS:         fs,
		Apps:       apps,
		Shell:      sh,
		Wallpapers: wallpapers,
		Settings:   prefs,
		Metrics:    metrics,
		Logger:     logger.Named("api").Logger,
	})
	handlers.Routes(router)

	wsHandler := ws.NewHandler(bus, logger.Named("ws").Logger).
		WithMetrics(metrics).
		WithOrigins(cfg.CORS.Origins)
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", metrics.GinHandler())

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		windows: windows,
		fs:      fs,
		apps:    apps,
		bus:     bus,
		store:   store,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// newStore picks the file store, behind a breaker, when a directory is
// configured
func newStore(cfg config.StorageConfig, logger *zap.Logger) (storage.Store, error) {
	if cfg.Dir == "" {
		return storage.NewMemoryStore(), nil
	}
	file, err := storage.NewFileStore(cfg.Dir, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	guard := storage.DefaultGuardSettings()
	guard.OnStateChange = func(from, to storage.State) {
		logger.Warn("Storage circuit changed state",
			zap.String("dir", cfg.Dir),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	}
	return storage.NewGuarded(file, guard), nil
}

// newSnapshotSource prefers a URL, then a directory, then the built-in tree
func newSnapshotSource(cfg config.SnapshotConfig) vfs.SnapshotSource {
	switch {
	case cfg.URL != "":
		return vfs.NewHTTPSource(cfg.URL, vfs.DefaultHTTPOptions())
	case cfg.Dir != "":
		return vfs.NewDirSource(cfg.Dir, cfg.Ignore)
	default:
		return vfs.StaticSource{Tree: vfs.DefaultTree()}
	}
}

// Router exposes the handler chain, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Events returns the bus window and filesystem events are published on
func (s *Server) Events() *events.Bus {
	return s.bus
}

// Hydrate loads the persisted overlay and the bundled snapshot
func (s *Server) Hydrate(ctx context.Context) {
	s.fs.Hydrate(ctx)
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Close flushes the overlay and releases storage
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
	}

	s.fs.PersistOverlay(ctx)

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error("Failed to close storage", zap.Error(err))
			return fmt.Errorf("failed to close storage: %w", err)
		}
		s.logger.Info("Closed storage")
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}
