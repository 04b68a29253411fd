// Package storage provides the key/value persistence used for the filesystem
// overlay and per-application window geometry.
//
// Two backends are available: MemoryStore keeps everything in process, FileStore
// writes one file per key under a directory. Missing keys return ErrNotFound and
// every other failure wraps ErrUnavailable.
package storage
