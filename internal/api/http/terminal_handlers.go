package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/retrodesk/internal/shared/paths"
	"github.com/GriffinCanCode/retrodesk/internal/shared/utils"
)

// ExecRequest runs one terminal line. Cwd is a wire path and defaults to home.
type ExecRequest struct {
	Cwd  string `json:"cwd"`
	Line string `json:"line"`
}

// ExecResponse mirrors shell.Result with the cwd in wire form
type ExecResponse struct {
	Output   []string `json:"output"`
	Cwd      string   `json:"cwd"`
	Segments []string `json:"segments"`
	Clear    bool     `json:"clear"`
}

// Exec runs a terminal command against the virtual filesystem
func (h *Handlers) Exec(c *gin.Context) {
	var req ExecRequest
	if err := bind(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if err := utils.ValidateString(req.Line, "line", 0, utils.MaxCommandLine, false); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	cwd := []string{paths.Home}
	if req.Cwd != "" {
		parsed, err := paths.Parse(req.Cwd)
		if err != nil {
			h.respondError(c, err)
			return
		}
		cwd = parsed
	}

	done := h.metrics.TrackTerminalOperation("exec")
	res := h.shell.Exec(c.Request.Context(), cwd, req.Line)
	done(nil)

	output := res.Output
	if output == nil {
		output = []string{}
	}
	c.JSON(http.StatusOK, ExecResponse{
		Output:   output,
		Cwd:      paths.Join(res.Cwd),
		Segments: res.Cwd,
		Clear:    res.Clear,
	})
}
