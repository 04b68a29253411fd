// Package window implements the desktop window manager: window identity and
// deduplication by payload, placement of new windows, z-order and focus, and
// per-application geometry persisted across sessions.
//
// A Manager is safe for concurrent use; every mutation is serialized behind
// one mutex.
package window
