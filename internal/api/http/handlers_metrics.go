package http

import (
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with metrics tracking
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// Track starts timing an operation; call the returned function with the
// operation's error
func (hm *HandlerMetrics) Track(component, operation string) func(error) {
	timer := monitoring.NewTimer(hm.metrics, component, operation)
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		timer.Stop(status)
	}
}

// TrackWindowOperation tracks window manager operations
func (hm *HandlerMetrics) TrackWindowOperation(operation string) func(error) {
	return hm.Track("window_manager", operation)
}

// TrackFilesystemOperation tracks virtual filesystem operations
func (hm *HandlerMetrics) TrackFilesystemOperation(operation string) func(error) {
	return hm.Track("filesystem", operation)
}

// TrackTerminalOperation tracks shell commands
func (hm *HandlerMetrics) TrackTerminalOperation(operation string) func(error) {
	return hm.Track("terminal", operation)
}
