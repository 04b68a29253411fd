package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/retrodesk/internal/domain/settings"
	"github.com/GriffinCanCode/retrodesk/internal/domain/vfs"
	"github.com/GriffinCanCode/retrodesk/internal/domain/wallpaper"
	"github.com/GriffinCanCode/retrodesk/internal/domain/window"
	"github.com/GriffinCanCode/retrodesk/internal/shared/paths"
)

var (
	errUnknownApp = errors.New("unknown app")
	errBadRequest = errors.New("bad request")
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, window.ErrNotFound),
		errors.Is(err, vfs.ErrNotFound),
		errors.Is(err, paths.ErrNotFound),
		errors.Is(err, wallpaper.ErrNotFound),
		errors.Is(err, errUnknownApp):
		return http.StatusNotFound
	case errors.Is(err, vfs.ErrIsDirectory),
		errors.Is(err, vfs.ErrNotDirectory):
		return http.StatusConflict
	case errors.Is(err, vfs.ErrInvalidPath),
		errors.Is(err, vfs.ErrInvalidContent),
		errors.Is(err, paths.ErrInvalidPath),
		errors.Is(err, window.ErrInvalidViewport),
		errors.Is(err, window.ErrInvalidAppearance),
		errors.Is(err, settings.ErrInvalid),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...} with the mapped status
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// bind decodes the JSON body into v
func bind(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// windowID parses the :id path parameter
func windowID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid window id %q", errBadRequest, c.Param("id"))
	}
	return id, nil
}

// queryPath parses a wire path from the named query parameter
func queryPath(c *gin.Context, name string) ([]string, error) {
	return paths.Parse(c.Query(name))
}
