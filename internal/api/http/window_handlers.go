package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/retrodesk/internal/domain/window"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
	"github.com/GriffinCanCode/retrodesk/internal/shared/utils"
)

// OpenRequest asks for a window of an application
type OpenRequest struct {
	AppID   string      `json:"app_id" binding:"required"`
	Payload interface{} `json:"payload"`
}

// TitleRequest sets a window title override
type TitleRequest struct {
	Title string `json:"title"`
}

// ListApps lists the registered applications
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apps":  h.apps.List(),
		"count": h.apps.Len(),
	})
}

// GetApp returns one application definition
func (h *Handlers) GetApp(c *gin.Context) {
	appID := c.Param("id")
	if err := utils.ValidateID(appID, "app_id", true); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	app, ok := h.apps.Get(appID)
	if !ok {
		h.respondError(c, fmt.Errorf("%w: %s", errUnknownApp, appID))
		return
	}
	c.JSON(http.StatusOK, app)
}

// ListWindows lists open windows in paint order
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": h.windows.List(),
		"stats":   h.windows.Stats(),
	})
}

// OpenWindow opens an application window or refocuses an existing one
// showing the same payload
func (h *Handlers) OpenWindow(c *gin.Context) {
	var req OpenRequest
	if err := bind(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if err := utils.ValidateID(req.AppID, "app_id", true); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	if size := len(utils.Canonical(req.Payload)); size > utils.MaxPayloadSize {
		h.respondError(c, fmt.Errorf("%w: payload size %d exceeds maximum %d", errBadRequest, size, utils.MaxPayloadSize))
		return
	}

	done := h.metrics.TrackWindowOperation("open")
	id, ok := h.windows.OpenApp(c.Request.Context(), req.AppID, req.Payload)
	if !ok {
		err := fmt.Errorf("%w: %s", errUnknownApp, req.AppID)
		done(err)
		h.respondError(c, err)
		return
	}
	done(nil)

	record, _ := h.windows.Get(id)
	c.JSON(http.StatusOK, gin.H{
		"id":     id,
		"window": record,
	})
}

// GetWindow returns a window, including the payload it was opened with
func (h *Handlers) GetWindow(c *gin.Context) {
	id, err := windowID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	record, ok := h.windows.Get(id)
	if !ok {
		h.respondError(c, fmt.Errorf("%w: %d", window.ErrNotFound, id))
		return
	}
	c.JSON(http.StatusOK, record)
}

// FocusWindow raises a window to the front
func (h *Handlers) FocusWindow(c *gin.Context) {
	id, err := windowID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	done := h.metrics.TrackWindowOperation("focus")
	err = h.windows.Focus(id)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWindow(c, id)
}

// UpdateGeometry applies a moved or resized rectangle; the response carries
// the grid-snapped result
func (h *Handlers) UpdateGeometry(c *gin.Context) {
	id, err := windowID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var rect types.Rect
	if err := bind(c, &rect); err != nil {
		h.respondError(c, err)
		return
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		h.respondError(c, fmt.Errorf("%w: width and height must be positive", errBadRequest))
		return
	}

	done := h.metrics.TrackWindowOperation("geometry")
	snapped, err := h.windows.UpdateGeometry(c.Request.Context(), id, rect)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"geometry": snapped,
	})
}

// SetTitle sets a window's title override
func (h *Handlers) SetTitle(c *gin.Context) {
	id, err := windowID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req TitleRequest
	if err := bind(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if err := utils.ValidateTitle(req.Title); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	changed, err := h.windows.SetTitle(id, req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"changed": changed,
	})
}

// SetAppearance applies visual overrides to a window
func (h *Handlers) SetAppearance(c *gin.Context) {
	id, err := windowID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var a types.Appearance
	if err := bind(c, &a); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.windows.SetAppearance(id, a); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWindow(c, id)
}

// CloseWindow closes a window
func (h *Handlers) CloseWindow(c *gin.Context) {
	id, err := windowID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	done := h.metrics.TrackWindowOperation("close")
	err = h.windows.CloseWindow(id)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}

// Desktop returns the window manager state
func (h *Handlers) Desktop(c *gin.Context) {
	c.JSON(http.StatusOK, h.windows.Stats())
}

// SetViewport records the shell's visible desktop size
func (h *Handlers) SetViewport(c *gin.Context) {
	var vp types.Viewport
	if err := bind(c, &vp); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.windows.SetViewport(vp.Width, vp.Height); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.windows.Viewport())
}

func (h *Handlers) respondWindow(c *gin.Context, id int) {
	record, ok := h.windows.Get(id)
	if !ok {
		h.respondError(c, fmt.Errorf("%w: %d", window.ErrNotFound, id))
		return
	}
	c.JSON(http.StatusOK, record)
}
