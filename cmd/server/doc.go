// Package main is the entry point for the retrodesk backend.
//
// The server keeps the state of a retro desktop: open windows and their
// placement, a virtual filesystem overlaid on a bundled snapshot, a small
// terminal shell and the wallpaper catalog. The shell UI drives it over
// REST and follows changes on the /stream WebSocket.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Persist to disk and hydrate from a published snapshot
//	./server -port 8000 -storage ./data -snapshot-url https://example.com/vfs.json
//
//	# Development mode (colored logs, debug level)
//	./server -dev -snapshot-dir ./public/vfs
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
