package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListWallpapers lists the available desktop backgrounds
func (h *Handlers) ListWallpapers(c *gin.Context) {
	images, err := h.wallpapers.List()
	if err != nil {
		h.logger.Warn("Wallpaper listing failed", zap.Error(err))
		images = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// ServeWallpaper streams one wallpaper image
func (h *Handlers) ServeWallpaper(c *gin.Context) {
	path, err := h.wallpapers.Path(c.Param("file"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.File(path)
}
