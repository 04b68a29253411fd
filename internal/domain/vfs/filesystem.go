package vfs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/storage"
	"github.com/GriffinCanCode/retrodesk/internal/shared/events"
	"github.com/GriffinCanCode/retrodesk/internal/shared/paths"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// OverlayKey is the storage key holding the serialized overlay
const OverlayKey = "vfs_overlay"

// DefaultFetchTimeout bounds the snapshot fetch during Hydrate
const DefaultFetchTimeout = 10 * time.Second

var (
	ErrNotFound       = errors.New("no such file or directory")
	ErrIsDirectory    = errors.New("is a directory")
	ErrNotDirectory   = errors.New("not a directory")
	ErrInvalidPath    = errors.New("invalid path")
	ErrSnapshotFetch  = errors.New("snapshot fetch failed")
	ErrInvalidContent = errors.New("content is not valid UTF-8")
)

// Info describes the node at a path
type Info struct {
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Dir     bool   `json:"dir"`
	Bundled bool   `json:"bundled"`
	Size    int    `json:"size"`
	Entries int    `json:"entries"`
}

// Filesystem owns the live tree and the snapshot it was built from
type Filesystem struct {
	mu       sync.RWMutex
	live     types.Directory // Protected by mu
	base     types.Directory // diff base: the snapshot, or DefaultTree until one loads
	snapshot types.Directory // nil until a snapshot has been fetched
	hydrated bool

	store   storage.Store
	source  SnapshotSource
	timeout time.Duration
	logger  *zap.Logger
	metrics *monitoring.Metrics
	bus     *events.Bus
}

// New creates a filesystem holding DefaultTree. Call Hydrate to load the
// persisted overlay and the bundled snapshot.
func New(store storage.Store, source SnapshotSource, logger *zap.Logger) *Filesystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filesystem{
		live:    DefaultTree(),
		base:    DefaultTree(),
		store:   store,
		source:  source,
		timeout: DefaultFetchTimeout,
		logger:  logger,
	}
}

// WithMetrics adds metrics tracking to the filesystem
func (f *Filesystem) WithMetrics(metrics *monitoring.Metrics) *Filesystem {
	f.metrics = metrics
	return f
}

// WithEvents publishes mutations on bus
func (f *Filesystem) WithEvents(bus *events.Bus) *Filesystem {
	f.bus = bus
	return f
}

// WithTimeout sets the snapshot fetch timeout
func (f *Filesystem) WithTimeout(timeout time.Duration) *Filesystem {
	if timeout > 0 {
		f.timeout = timeout
	}
	return f
}

// Hydrate loads the persisted overlay, fetches the snapshot and rebuilds the
// live tree. It never fails: a bad overlay is treated as empty and a failed
// fetch falls back to DefaultTree. Writes made before Hydrate are kept.
func (f *Filesystem) Hydrate(ctx context.Context) {
	persisted := f.loadOverlay(ctx)
	snapshot, fetched := f.fetchSnapshot(ctx)

	f.mu.Lock()
	base := DefaultTree()
	if fetched {
		base = snapshot.Clone()
	}

	// Pending writes are newer than the persisted overlay
	overlay := Merge(Diff(f.live, f.base), persisted)

	f.live = Merge(base, overlay)
	f.base = base
	if fetched {
		f.snapshot = snapshot.Clone()
	} else {
		f.snapshot = nil
	}
	f.hydrated = true
	f.persistLocked(ctx)
	f.mu.Unlock()

	f.logger.Info("Filesystem hydrated",
		zap.Bool("snapshot", fetched),
		zap.Int("overlay_files", countFiles(overlay)))
	f.bus.Publish(types.Event{Type: types.EventFilesystemReady})
}

func (f *Filesystem) loadOverlay(ctx context.Context) types.Directory {
	if f.store == nil {
		return types.Directory{}
	}

	data, err := f.store.Get(ctx, OverlayKey)
	if errors.Is(err, storage.ErrNotFound) {
		return types.Directory{}
	}
	if err != nil {
		f.logger.Warn("Overlay load failed", zap.String("key", OverlayKey), zap.Error(err))
		f.metrics.IncStorageError("get")
		return types.Directory{}
	}

	overlay, err := DecodeTree(data)
	if err != nil {
		if len(data) > 0 && string(data) != "{}" {
			f.logger.Warn("Discarding corrupt overlay", zap.String("key", OverlayKey), zap.Error(err))
		}
		return types.Directory{}
	}
	return overlay
}

func (f *Filesystem) fetchSnapshot(ctx context.Context) (types.Directory, bool) {
	if f.source == nil {
		return nil, false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	timer := monitoring.NewTimer(f.metrics, "vfs", "snapshot_fetch")
	tree, err := f.source.Fetch(fetchCtx)
	if err == nil {
		err = validateRoot(tree)
	}
	if err != nil {
		duration := timer.Stop("error")
		f.metrics.ObserveSnapshotFetch(duration, true)
		f.logger.Warn("Snapshot fetch failed, using default tree",
			zap.String("source", fmt.Sprintf("%T", f.source)),
			zap.Error(fmt.Errorf("%w: %v", ErrSnapshotFetch, err)))
		return nil, false
	}

	duration := timer.Stop("success")
	f.metrics.ObserveSnapshotFetch(duration, false)
	return tree, true
}

// Hydrated reports whether Hydrate has completed
func (f *Filesystem) Hydrated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.hydrated
}

// ReadFile returns the content of the file at path. Anything other than a
// file, directories included, is ErrNotFound.
func (f *Filesystem) ReadFile(path []string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	file, ok := f.nodeLocked(path).(types.File)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, paths.Join(path))
	}
	return string(file), nil
}

// WriteFile creates missing parent directories and sets the file content.
// It fails without mutating anything when a parent is a file, the target is
// a directory or content is not valid UTF-8.
func (f *Filesystem) WriteFile(ctx context.Context, path []string, content string) error {
	if err := validateMutationPath(path); err != nil {
		return err
	}
	if len(path) < 2 {
		return fmt.Errorf("%w: %s", ErrIsDirectory, paths.Join(path))
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: %s", ErrInvalidContent, paths.Join(path))
	}

	f.mu.Lock()
	parentPath, name := path[:len(path)-1], path[len(path)-1]
	if err := f.checkParents(parentPath); err != nil {
		f.mu.Unlock()
		return err
	}
	if _, isDir := f.nodeLocked(path).(types.Directory); isDir {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrIsDirectory, paths.Join(path))
	}

	parent := ensureDir(f.live, parentPath)
	parent[name] = types.File(content)
	f.persistLocked(ctx)
	f.mu.Unlock()

	f.metrics.IncVFSWrite("write")
	f.bus.Publish(types.Event{Type: types.EventFileWritten, Path: paths.Join(path)})
	return nil
}

// Mkdir creates path and any missing parents. If path already exists as a
// file nothing changes and no error is returned. A file in a parent position
// is ErrNotDirectory.
func (f *Filesystem) Mkdir(ctx context.Context, path []string) error {
	if err := validateMutationPath(path); err != nil {
		return err
	}

	f.mu.Lock()
	if err := f.checkParents(path[:len(path)-1]); err != nil {
		f.mu.Unlock()
		return err
	}
	switch f.nodeLocked(path).(type) {
	case types.File:
		f.mu.Unlock()
		f.logger.Debug("Mkdir over existing file ignored", zap.String("path", paths.Join(path)))
		return nil
	case types.Directory:
		f.mu.Unlock()
		return nil
	}

	ensureDir(f.live, path)
	f.persistLocked(ctx)
	f.mu.Unlock()

	f.metrics.IncVFSWrite("mkdir")
	f.bus.Publish(types.Event{Type: types.EventDirCreated, Path: paths.Join(path)})
	return nil
}

// IsDir reports whether path is a directory
func (f *Filesystem) IsDir(path []string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.nodeLocked(path).(types.Directory)
	return ok
}

// IsBundledFile reports whether path is a file in the fetched snapshot.
// Always false until a snapshot has loaded.
func (f *Filesystem) IsBundledFile(path []string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bundledLocked(path)
}

func (f *Filesystem) bundledLocked(path []string) bool {
	if f.snapshot == nil || len(path) == 0 {
		return false
	}
	node, ok := paths.GetNode(path, f.snapshot)
	if !ok {
		return false
	}
	_, isFile := node.(types.File)
	return isFile
}

// Stat describes the node at path
func (f *Filesystem) Stat(path []string) Info {
	f.mu.RLock()
	defer f.mu.RUnlock()

	info := Info{Path: paths.Join(path)}
	switch n := f.nodeLocked(path).(type) {
	case types.File:
		info.Exists = true
		info.Size = len(n)
		info.Bundled = f.bundledLocked(path)
	case types.Directory:
		info.Exists = true
		info.Dir = true
		info.Entries = len(n)
	}
	return info
}

// ListDir returns the entry names of the directory at path in lexical order
func (f *Filesystem) ListDir(path []string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	switch n := f.nodeLocked(path).(type) {
	case types.Directory:
		return n.Names(), nil
	case types.File:
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, paths.Join(path))
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, paths.Join(path))
	}
}

// Tree returns a deep copy of the live tree
func (f *Filesystem) Tree() types.Directory {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.live.Clone()
}

// Snapshot returns a deep copy of the fetched snapshot, or nil
func (f *Filesystem) Snapshot() types.Directory {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot.Clone()
}

// Overlay returns the current diff of the live tree against its base
func (f *Filesystem) Overlay() types.Directory {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Diff(f.live, f.base)
}

// Resolve resolves expr relative to cwd against the live tree
func (f *Filesystem) Resolve(expr string, cwd []string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return paths.Resolve(expr, cwd, f.live)
}

// PersistOverlay serializes the current overlay to storage. Failures are
// logged and counted, never returned.
func (f *Filesystem) PersistOverlay(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persistLocked(ctx)
}

// persistLocked must be called with mu held. The write is not bound to the
// caller's cancellation.
func (f *Filesystem) persistLocked(ctx context.Context) {
	if f.store == nil {
		return
	}

	timer := monitoring.NewTimer(f.metrics, "vfs", "persist")
	data, err := EncodeTree(Diff(f.live, f.base))
	if err != nil {
		timer.Stop("error")
		f.logger.Warn("Overlay encode failed", zap.Error(err))
		f.metrics.IncStorageError("encode")
		return
	}
	ctx, cancel := storage.Detach(ctx)
	defer cancel()
	if err := f.store.Set(ctx, OverlayKey, data); err != nil {
		timer.Stop("error")
		f.logger.Warn("Overlay persist failed", zap.String("key", OverlayKey), zap.Error(err))
		f.metrics.IncStorageError("set")
		return
	}
	timer.Stop("success")
}

// nodeLocked returns the node at path or nil
func (f *Filesystem) nodeLocked(path []string) types.Node {
	if len(path) == 0 {
		return nil
	}
	node, _ := paths.GetNode(path, f.live)
	return node
}

// checkParents fails if any existing node along parent is a file
func (f *Filesystem) checkParents(parent []string) error {
	var current types.Node = f.live
	for i, seg := range parent {
		dir, ok := current.(types.Directory)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotDirectory, paths.Join(parent[:i]))
		}
		next, exists := dir[seg]
		if !exists {
			return nil
		}
		current = next
	}
	if _, ok := current.(types.Directory); !ok {
		return fmt.Errorf("%w: %s", ErrNotDirectory, paths.Join(parent))
	}
	return nil
}

func validateMutationPath(path []string) error {
	if len(path) == 0 || path[0] != paths.Home {
		return fmt.Errorf("%w: must start with %s: %q", ErrInvalidPath, paths.Home, paths.Join(path))
	}
	for i, seg := range path {
		if err := paths.ValidateSegment(seg); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
		if i > 0 && seg == paths.Home {
			return fmt.Errorf("%w: %q may only appear first", ErrInvalidPath, paths.Home)
		}
	}
	return nil
}
