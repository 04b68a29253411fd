/*
Package monitoring provides Prometheus metrics for the desktop backend.

# Overview

Each Metrics value owns its own registry, so several backends (or tests) can
live in one process. Domain stores take a *Metrics and call the Record/Set/Inc
helpers, all of which tolerate a nil receiver.

# Metrics

- HTTP request count, latency and sizes per route template
- windows_open, windows_opened_total, windows_deduplicated_total
- vfs_writes_total{op}, storage_errors_total{op}
- snapshot_fetch_seconds, snapshot_fetch_failures_total
- WebSocket connections and messages

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", metrics.GinHandler())

	timer := monitoring.NewTimer(metrics, "vfs", "persist")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring
