package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/retrodesk/internal/domain/settings"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// GetSettings returns the desktop preferences
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Get())
}

// UpdateSettings applies a partial update
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var patch settings.Patch
	if err := bind(c, &patch); err != nil {
		h.respondError(c, err)
		return
	}
	updated, err := h.settings.Update(c.Request.Context(), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AddWallpaper lists a wallpaper if new and selects it
func (h *Handlers) AddWallpaper(c *gin.Context) {
	var w types.Wallpaper
	if err := bind(c, &w); err != nil {
		h.respondError(c, err)
		return
	}
	updated, err := h.settings.AddWallpaper(c.Request.Context(), w)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
