package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// MetricsSnapshot is the JSON view of backend metrics
type MetricsSnapshot struct {
	Timestamp time.Time                  `json:"timestamp"`
	Backend   monitoring.MetricsSnapshot `json:"backend"`
	Desktop   types.WindowStats          `json:"desktop"`
	Summary   Summary                    `json:"summary"`
}

// Summary provides high-level metrics
type Summary struct {
	TotalRequests     int64   `json:"total_requests"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorRate         float64 `json:"error_rate"`
	ActiveConnections int64   `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// MetricsSummary returns metrics as JSON for dashboards that cannot scrape
func (h *Handlers) MetricsSummary(c *gin.Context) {
	backend := h.monitor.Snapshot()
	c.JSON(http.StatusOK, MetricsSnapshot{
		Timestamp: time.Now(),
		Backend:   backend,
		Desktop:   h.windows.Stats(),
		Summary:   summarize(backend),
	})
}

func summarize(s monitoring.MetricsSnapshot) Summary {
	summary := Summary{
		TotalRequests:     s.TotalRequests,
		ActiveConnections: s.ActiveConnections,
		UptimeSeconds:     s.UptimeSeconds,
	}
	if s.RequestCount > 0 {
		summary.AverageLatencyMs = s.TotalDuration / float64(s.RequestCount) * 1000
	}
	if s.TotalRequests > 0 {
		summary.ErrorRate = float64(s.TotalErrors) / float64(s.TotalRequests)
	}
	return summary
}
