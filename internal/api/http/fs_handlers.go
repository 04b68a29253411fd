package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/retrodesk/internal/domain/vfs"
	"github.com/GriffinCanCode/retrodesk/internal/shared/paths"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
	"github.com/GriffinCanCode/retrodesk/internal/shared/utils"
)

// WriteRequest sets the content of a file
type WriteRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// MkdirRequest creates a directory
type MkdirRequest struct {
	Path string `json:"path" binding:"required"`
}

// Tree returns the whole live tree
func (h *Handlers) Tree(c *gin.Context) {
	h.respondTree(c, h.fs.Tree())
}

// Overlay returns the user's changes relative to the bundled tree
func (h *Handlers) Overlay(c *gin.Context) {
	h.respondTree(c, h.fs.Overlay())
}

// Snapshot serves the bundled tree so other instances can hydrate from it
func (h *Handlers) Snapshot(c *gin.Context) {
	snapshot := h.fs.Snapshot()
	if snapshot == nil {
		h.respondError(c, fmt.Errorf("%w: snapshot not loaded", vfs.ErrNotFound))
		return
	}
	h.respondTree(c, snapshot)
}

// ReadFile returns a file's content
func (h *Handlers) ReadFile(c *gin.Context) {
	path, err := queryPath(c, "path")
	if err != nil {
		h.respondError(c, err)
		return
	}

	content, err := h.fs.ReadFile(path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":    paths.Join(path),
		"content": content,
		"bundled": h.fs.IsBundledFile(path),
	})
}

// WriteFile creates or replaces a file, creating parent directories
func (h *Handlers) WriteFile(c *gin.Context) {
	var req WriteRequest
	if err := bind(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	path, err := paths.Parse(req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := utils.ValidateContent(req.Content); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	done := h.metrics.TrackFilesystemOperation("write")
	err = h.fs.WriteFile(c.Request.Context(), path, req.Content)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.fs.Stat(path))
}

// Mkdir creates a directory and its parents
func (h *Handlers) Mkdir(c *gin.Context) {
	var req MkdirRequest
	if err := bind(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	path, err := paths.Parse(req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}

	done := h.metrics.TrackFilesystemOperation("mkdir")
	err = h.fs.Mkdir(c.Request.Context(), path)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.fs.Stat(path))
}

// Stat describes a path; missing paths are reported, not errors
func (h *Handlers) Stat(c *gin.Context) {
	path, err := queryPath(c, "path")
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.fs.Stat(path))
}

// ListDir lists a directory's entry names
func (h *Handlers) ListDir(c *gin.Context) {
	path, err := queryPath(c, "path")
	if err != nil {
		h.respondError(c, err)
		return
	}

	names, err := h.fs.ListDir(path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":    paths.Join(path),
		"entries": names,
	})
}

// Resolve turns a shell-style expression into an absolute path
func (h *Handlers) Resolve(c *gin.Context) {
	cwd := []string{paths.Home}
	if raw := c.Query("cwd"); raw != "" {
		parsed, err := paths.Parse(raw)
		if err != nil {
			h.respondError(c, err)
			return
		}
		cwd = parsed
	}

	resolved, err := h.fs.Resolve(c.Query("expr"), cwd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":     paths.Join(resolved),
		"segments": resolved,
		"dir":      h.fs.IsDir(resolved),
	})
}

func (h *Handlers) respondTree(c *gin.Context, tree types.Directory) {
	data, err := vfs.EncodeTree(tree)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
