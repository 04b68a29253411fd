package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/retrodesk/internal/domain/registry"
	"github.com/GriffinCanCode/retrodesk/internal/domain/settings"
	"github.com/GriffinCanCode/retrodesk/internal/domain/shell"
	"github.com/GriffinCanCode/retrodesk/internal/domain/vfs"
	"github.com/GriffinCanCode/retrodesk/internal/domain/wallpaper"
	"github.com/GriffinCanCode/retrodesk/internal/domain/window"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
)

// Service identifies this backend in the root response
const (
	Service = "retrodesk"
	Version = "1.0.0"
)

// Deps are the components the handlers serve
type Deps struct {
	Windows    *window.Manager
	FS         *vfs.Filesystem
	Apps       *registry.Manager
	Shell      *shell.Shell
	Wallpapers *wallpaper.Lister
	Settings   *settings.Store
	Metrics    *monitoring.Metrics
	Logger     *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	windows    *window.Manager
	fs         *vfs.Filesystem
	apps       *registry.Manager
	shell      *shell.Shell
	wallpapers *wallpaper.Lister
	settings   *settings.Store
	metrics    *HandlerMetrics
	monitor    *monitoring.Metrics
	logger     *zap.Logger
	startedAt  time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		windows:    d.Windows,
		fs:         d.FS,
		apps:       d.Apps,
		shell:      d.Shell,
		wallpapers: d.Wallpapers,
		settings:   d.Settings,
		metrics:    NewHandlerMetrics(d.Metrics),
		monitor:    d.Metrics,
		logger:     logger,
		startedAt:  time.Now(),
	}
}

// Routes registers every endpoint on r
func (h *Handlers) Routes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics/json", h.MetricsSummary)
	r.POST("/logs", h.StreamLogs)

	// Applications
	r.GET("/apps", h.ListApps)
	r.GET("/apps/:id", h.GetApp)

	// Windows
	r.GET("/windows", h.ListWindows)
	r.POST("/windows", h.OpenWindow)
	r.GET("/windows/:id", h.GetWindow)
	r.POST("/windows/:id/focus", h.FocusWindow)
	r.PUT("/windows/:id/geometry", h.UpdateGeometry)
	r.PUT("/windows/:id/title", h.SetTitle)
	r.PUT("/windows/:id/appearance", h.SetAppearance)
	r.DELETE("/windows/:id", h.CloseWindow)
	r.GET("/desktop", h.Desktop)
	r.PUT("/desktop/viewport", h.SetViewport)

	// Filesystem
	r.GET("/fs/tree", h.Tree)
	r.GET("/fs/file", h.ReadFile)
	r.PUT("/fs/file", h.WriteFile)
	r.POST("/fs/mkdir", h.Mkdir)
	r.GET("/fs/stat", h.Stat)
	r.GET("/fs/list", h.ListDir)
	r.GET("/fs/resolve", h.Resolve)
	r.GET("/fs/overlay", h.Overlay)
	r.GET("/vfs", h.Snapshot)

	// Terminal
	r.POST("/terminal/exec", h.Exec)

	// Wallpapers
	r.GET("/wallpapers", h.ListWallpapers)
	r.GET("/wallpapers/:file", h.ServeWallpaper)

	// Desktop settings
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	r.POST("/settings/wallpapers", h.AddWallpaper)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": Service,
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"windows": h.windows.Stats(),
		"filesystem": gin.H{
			"hydrated": h.fs.Hydrated(),
			"bundled":  h.fs.Snapshot() != nil,
		},
		"apps":           h.apps.Len(),
		"uptime_seconds": time.Since(h.startedAt).Seconds(),
	})
}
