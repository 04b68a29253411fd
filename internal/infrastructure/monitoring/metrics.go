package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for one desktop backend instance.
// Every Record/Set/Inc method is safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Window metrics
	WindowsOpen         prometheus.Gauge
	WindowsOpened       prometheus.Counter
	WindowsDeduplicated prometheus.Counter

	// Filesystem metrics
	VFSWrites             *prometheus.CounterVec
	StorageErrors         *prometheus.CounterVec
	SnapshotFetchSeconds  prometheus.Histogram
	SnapshotFetchFailures prometheus.Counter

	// Operation timings
	OperationDuration *prometheus.HistogramVec

	// Registry metrics
	RegistryApps prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	OpenWindows       int64   `json:"open_windows"`
	VFSWrites         int64   `json:"vfs_writes"`
	StorageErrors     int64   `json:"storage_errors"`
	ActiveConnections int64   `json:"active_connections"`
	TotalDuration     float64 `json:"total_duration_seconds"`
	RequestCount      int64   `json:"request_count"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Window metrics
		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "windows_open",
				Help: "Number of open windows",
			},
		),
		WindowsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "windows_opened_total",
				Help: "Total number of windows created",
			},
		),
		WindowsDeduplicated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "windows_deduplicated_total",
				Help: "Open requests answered by refocusing an existing window",
			},
		),

		// Filesystem metrics
		VFSWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vfs_writes_total",
				Help: "Total number of filesystem mutations",
			},
			[]string{"op"},
		),
		StorageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_errors_total",
				Help: "Persistence failures swallowed by the stores",
			},
			[]string{"op"},
		),
		SnapshotFetchSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "snapshot_fetch_seconds",
				Help:    "Bundled snapshot fetch duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		SnapshotFetchFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "snapshot_fetch_failures_total",
				Help: "Bundled snapshot fetches that fell back to the default tree",
			},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_operation_duration_seconds",
				Help:    "Duration of internal operations in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"component", "op", "status"},
		),

		// Registry metrics
		RegistryApps: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "registry_apps",
				Help: "Number of registered applications",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "desktop_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry for the /metrics handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records the duration of an internal operation
func (m *Metrics) RecordOperation(component, op, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(component, op, status).Observe(duration.Seconds())
}

// SetWindowsOpen sets the number of open windows
func (m *Metrics) SetWindowsOpen(count int) {
	if m == nil {
		return
	}
	m.WindowsOpen.Set(float64(count))
	m.mu.Lock()
	m.snapshot.OpenWindows = int64(count)
	m.mu.Unlock()
}

// IncWindowsOpened increments the created windows counter
func (m *Metrics) IncWindowsOpened() {
	if m == nil {
		return
	}
	m.WindowsOpened.Inc()
}

// IncWindowsDeduplicated counts an open request that refocused an existing window
func (m *Metrics) IncWindowsDeduplicated() {
	if m == nil {
		return
	}
	m.WindowsDeduplicated.Inc()
}

// IncVFSWrite counts a filesystem mutation (write, mkdir)
func (m *Metrics) IncVFSWrite(op string) {
	if m == nil {
		return
	}
	m.VFSWrites.WithLabelValues(op).Inc()
	m.mu.Lock()
	m.snapshot.VFSWrites++
	m.mu.Unlock()
}

// IncStorageError counts a swallowed persistence failure
func (m *Metrics) IncStorageError(op string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(op).Inc()
	m.mu.Lock()
	m.snapshot.StorageErrors++
	m.mu.Unlock()
}

// ObserveSnapshotFetch records a snapshot fetch and whether it failed
func (m *Metrics) ObserveSnapshotFetch(duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.SnapshotFetchSeconds.Observe(duration.Seconds())
	if failed {
		m.SnapshotFetchFailures.Inc()
	}
}

// SetRegistryApps sets the number of apps in registry
func (m *Metrics) SetRegistryApps(count int) {
	if m == nil {
		return
	}
	m.RegistryApps.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
