package window

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/retrodesk/internal/domain/placement"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/storage"
	"github.com/GriffinCanCode/retrodesk/internal/shared/events"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
	"github.com/GriffinCanCode/retrodesk/internal/shared/utils"
)

// CloseSound is the effect hint attached to window.closed events
const CloseSound = "close"

// DefaultSizeRatio sizes windows of apps without their own defaults
const DefaultSizeRatio = 0.8

var (
	// ErrNotFound is returned for operations on unknown window ids
	ErrNotFound = errors.New("window not found")
	// ErrInvalidViewport is returned for non-positive viewport dimensions
	ErrInvalidViewport = errors.New("invalid viewport")
	// ErrInvalidAppearance is returned for out-of-range appearance values
	ErrInvalidAppearance = errors.New("invalid appearance")
)

// Registry resolves application definitions
type Registry interface {
	Get(appID string) (types.AppDefinition, bool)
}

// Config holds the desktop geometry settings
type Config struct {
	Viewport types.Viewport
	GridSize int
	ZFloor   int
	Engine   placement.Engine
}

// DefaultConfig returns the settings used when none are configured
func DefaultConfig() Config {
	return Config{
		Viewport: types.Viewport{Width: 1280, Height: 800},
		GridSize: placement.DefaultGridSize,
		ZFloor:   20,
		Engine:   placement.Default(),
	}
}

// Manager orchestrates window lifecycle
type Manager struct {
	mu        sync.RWMutex
	windows   map[int]*types.WindowRecord // Protected by mu
	nextID    int                         // Protected by mu
	focusedID *int                        // Protected by mu
	viewport  types.Viewport              // Protected by mu

	cfg      Config
	registry Registry
	geometry *GeometryStore
	hasher   *utils.Hasher
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	bus      *events.Bus
}

// NewManager creates a new window manager
func NewManager(cfg Config, registry Registry, geometry *GeometryStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = DefaultConfig().Viewport
	}
	if cfg.GridSize <= 0 {
		cfg.GridSize = placement.DefaultGridSize
	}
	if cfg.Engine == (placement.Engine{}) {
		cfg.Engine = placement.Default()
	}

	return &Manager{
		windows:  make(map[int]*types.WindowRecord),
		nextID:   1,
		viewport: cfg.Viewport,
		cfg:      cfg,
		registry: registry,
		geometry: geometry,
		hasher:   utils.DefaultHasher(),
		logger:   logger,
		bus:      events.NewBus(),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithEvents publishes window changes on a shared bus
func (m *Manager) WithEvents(bus *events.Bus) *Manager {
	m.bus = bus
	return m
}

// Subscribe registers h for window events and returns its cancel function
func (m *Manager) Subscribe(h events.Handler) func() {
	return m.bus.Subscribe(h)
}

// OpenApp opens a window for appID, or refocuses the window already showing
// an equal payload for that app. Unknown apps are ignored and report false.
func (m *Manager) OpenApp(ctx context.Context, appID string, payload any) (int, bool) {
	def, ok := m.lookup(appID)
	if !ok {
		m.logger.Debug("Ignoring open for unknown app", zap.String("app_id", appID))
		return 0, false
	}

	payload = utils.ClonePayload(payload)
	key := m.hasher.PayloadKey(payload)

	// Geometry is read outside the lock; it only matters for an app's first window
	saved, hasSaved, err := m.geometry.Load(ctx, appID)
	if err != nil {
		m.logger.Warn("Window geometry load failed", zap.String("key", Key(appID)), zap.Error(err))
		m.metrics.IncStorageError("geometry_get")
	}

	m.mu.Lock()
	if existing := m.findLocked(appID, key); existing != nil {
		id := existing.ID
		changed := m.focusLocked(existing)
		snapshot := copyRecord(existing)
		m.mu.Unlock()

		m.metrics.IncWindowsDeduplicated()
		if changed {
			m.publish(types.EventWindowFocused, &snapshot)
		}
		return id, true
	}

	width, height := m.defaultSizeLocked(def)
	var preferred *types.Point
	if hasSaved && !m.hasAppLocked(appID) {
		width, height = m.fitLocked(saved.Width, saved.Height)
		preferred = &types.Point{X: saved.X, Y: saved.Y}
	}

	rects := make([]types.Rect, 0, len(m.windows))
	for _, w := range m.windows {
		rects = append(rects, w.Geometry)
	}
	pos, found := m.cfg.Engine.FindNonOverlapping(width, height, rects, m.viewport, preferred)
	if !found {
		pos = m.cfg.Engine.ComputeCascade(width, height, len(m.windows), m.viewport)
	}

	record := &types.WindowRecord{
		ID:         m.nextID,
		AppID:      appID,
		Geometry:   types.Rect{X: pos.X, Y: pos.Y, Width: width, Height: height},
		ZIndex:     m.nextZLocked(),
		Payload:    payload,
		PayloadKey: key,
		Appearance: defaultAppearance(def),
		CreatedAt:  time.Now(),
	}
	m.nextID++
	m.windows[record.ID] = record
	id := record.ID
	m.focusedID = &id
	count := len(m.windows)
	snapshot := copyRecord(record)
	m.mu.Unlock()

	m.metrics.IncWindowsOpened()
	m.metrics.SetWindowsOpen(count)
	m.logger.Debug("Window opened",
		zap.Int("id", id),
		zap.String("app_id", appID),
		zap.Bool("cascaded", !found))
	m.publish(types.EventWindowOpened, &snapshot)
	return id, true
}

// Focus raises a window above every other. Focusing the frontmost window
// changes nothing.
func (m *Manager) Focus(id int) error {
	m.mu.Lock()
	record, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	changed := m.focusLocked(record)
	snapshot := copyRecord(record)
	m.mu.Unlock()

	if changed {
		m.publish(types.EventWindowFocused, &snapshot)
	}
	return nil
}

// CloseWindow removes a window. Persisted geometry for its app is kept.
func (m *Manager) CloseWindow(id int) error {
	m.mu.Lock()
	record, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(m.windows, id)

	if m.focusedID != nil && *m.focusedID == id {
		m.focusedID = nil
		if top := m.topLocked(); top != nil {
			topID := top.ID
			m.focusedID = &topID
		}
	}
	count := len(m.windows)
	snapshot := copyRecord(record)
	m.mu.Unlock()

	m.metrics.SetWindowsOpen(count)
	m.bus.Publish(types.Event{
		Type:     types.EventWindowClosed,
		WindowID: id,
		Window:   &snapshot,
		Sound:    CloseSound,
	})
	return nil
}

// saveGeometry persists rect outside the caller's cancellation. Failures are
// logged and counted.
func (m *Manager) saveGeometry(ctx context.Context, appID string, rect types.Rect) {
	ctx, cancel := storage.Detach(ctx)
	defer cancel()
	if err := m.geometry.Save(ctx, appID, rect); err != nil {
		m.logger.Warn("Window geometry persist failed", zap.String("key", Key(appID)), zap.Error(err))
		m.metrics.IncStorageError("geometry_set")
	}
}

// UpdateGeometry snaps rect to the grid, applies it and persists it for the
// window's app. Returns the snapped rectangle.
func (m *Manager) UpdateGeometry(ctx context.Context, id int, rect types.Rect) (types.Rect, error) {
	snapped := placement.SnapRect(rect, m.cfg.GridSize)

	m.mu.Lock()
	record, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return types.Rect{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	record.Geometry = snapped
	snapshot := copyRecord(record)
	m.mu.Unlock()

	m.saveGeometry(ctx, snapshot.AppID, snapped)

	m.publish(types.EventWindowGeometry, &snapshot)
	return snapped, nil
}

// SetTitle sets the title override. Setting the current title again is a
// no-op and reports false.
func (m *Manager) SetTitle(id int, title string) (bool, error) {
	m.mu.Lock()
	record, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if record.TitleOverride != nil && *record.TitleOverride == title {
		m.mu.Unlock()
		return false, nil
	}
	record.TitleOverride = &title
	snapshot := copyRecord(record)
	m.mu.Unlock()

	m.publish(types.EventWindowTitle, &snapshot)
	return true, nil
}

// SetAppearance applies the non-nil fields of a as visual overrides
func (m *Manager) SetAppearance(id int, a types.Appearance) error {
	if err := utils.ValidateOpacity(a.Opacity); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAppearance, err)
	}
	if a.BackdropBlurPx != nil && *a.BackdropBlurPx < 0 {
		return fmt.Errorf("%w: backdrop blur must not be negative", ErrInvalidAppearance)
	}
	if a.Theme != nil {
		if err := utils.ValidateString(*a.Theme, "theme", 0, utils.MaxThemeLength, false); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAppearance, err)
		}
	}

	m.mu.Lock()
	record, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if a.Opacity != nil {
		v := *a.Opacity
		record.Opacity = &v
	}
	if a.Theme != nil {
		v := *a.Theme
		record.Theme = &v
	}
	if a.BackdropBlurPx != nil {
		v := *a.BackdropBlurPx
		record.BackdropBlurPx = &v
	}
	snapshot := copyRecord(record)
	m.mu.Unlock()

	m.publish(types.EventWindowAppearance, &snapshot)
	return nil
}

// SetViewport records the desktop size used for sizing and placing new windows
func (m *Manager) SetViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = types.Viewport{Width: width, Height: height}
	return nil
}

// Viewport returns the current desktop size
func (m *Manager) Viewport() types.Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// Get retrieves a window by id
func (m *Manager) Get(id int) (types.WindowRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.windows[id]
	if !ok {
		return types.WindowRecord{}, false
	}
	// Return a copy to prevent external modifications
	return copyRecord(record), true
}

// List returns copies of all windows in paint order (lowest zIndex first)
func (m *Manager) List() []types.WindowRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.WindowRecord, 0, len(m.windows))
	for _, record := range m.windows {
		out = append(out, copyRecord(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Stats returns manager statistics
func (m *Manager) Stats() types.WindowStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Copy pointer to avoid race
	var focusedID *int
	if m.focusedID != nil {
		id := *m.focusedID
		focusedID = &id
	}

	return types.WindowStats{
		OpenWindows: len(m.windows),
		FocusedID:   focusedID,
		NextID:      m.nextID,
		MaxZIndex:   m.maxZLocked(),
		Viewport:    m.viewport,
	}
}

func (m *Manager) lookup(appID string) (types.AppDefinition, bool) {
	if m.registry == nil || appID == "" {
		return types.AppDefinition{}, false
	}
	return m.registry.Get(appID)
}

// findLocked returns the live window showing key for appID
func (m *Manager) findLocked(appID, key string) *types.WindowRecord {
	for _, w := range m.windows {
		if w.AppID == appID && w.PayloadKey == key {
			return w
		}
	}
	return nil
}

func (m *Manager) hasAppLocked(appID string) bool {
	for _, w := range m.windows {
		if w.AppID == appID {
			return true
		}
	}
	return false
}

// focusLocked raises record unless it is already frontmost; reports whether
// anything changed
func (m *Manager) focusLocked(record *types.WindowRecord) bool {
	id := record.ID
	m.focusedID = &id

	for _, w := range m.windows {
		if w.ID != id && w.ZIndex >= record.ZIndex {
			record.ZIndex = m.nextZLocked()
			return true
		}
	}
	return false
}

func (m *Manager) maxZLocked() int {
	maxZ := 0
	for _, w := range m.windows {
		if w.ZIndex > maxZ {
			maxZ = w.ZIndex
		}
	}
	return maxZ
}

// nextZLocked returns a zIndex above every open window and never below the floor
func (m *Manager) nextZLocked() int {
	return max(m.maxZLocked()+1, m.cfg.ZFloor)
}

func (m *Manager) topLocked() *types.WindowRecord {
	var top *types.WindowRecord
	for _, w := range m.windows {
		if top == nil || w.ZIndex > top.ZIndex || (w.ZIndex == top.ZIndex && w.ID > top.ID) {
			top = w
		}
	}
	return top
}

// defaultSizeLocked sizes a window from the app's ratios, falling back to 80%
func (m *Manager) defaultSizeLocked(def types.AppDefinition) (int, int) {
	wr, hr := DefaultSizeRatio, DefaultSizeRatio
	if dw := def.DefaultWindow; dw != nil {
		if dw.WidthRatio > 0 {
			wr = dw.WidthRatio
		}
		if dw.HeightRatio > 0 {
			hr = dw.HeightRatio
		}
	}
	return m.fitLocked(
		int(math.Round(float64(m.viewport.Width)*wr)),
		int(math.Round(float64(m.viewport.Height)*hr)),
	)
}

// fitLocked clamps a size to the viewport, keeping at least one grid cell
func (m *Manager) fitLocked(width, height int) (int, int) {
	minSize := m.cfg.GridSize
	width = max(min(width, m.viewport.Width), minSize)
	height = max(min(height, m.viewport.Height), minSize)
	return width, height
}

func (m *Manager) publish(t types.EventType, record *types.WindowRecord) {
	m.bus.Publish(types.Event{Type: t, WindowID: record.ID, Window: record})
}

func defaultAppearance(def types.AppDefinition) types.Appearance {
	var a types.Appearance
	dw := def.DefaultWindow
	if dw == nil {
		return a
	}
	if dw.Opacity != nil {
		v := *dw.Opacity
		a.Opacity = &v
	}
	if dw.Theme != nil {
		v := *dw.Theme
		a.Theme = &v
	}
	if dw.BackdropBlurPx != nil {
		v := *dw.BackdropBlurPx
		a.BackdropBlurPx = &v
	}
	return a
}

// copyRecord returns a copy that shares no pointers or payload with r
func copyRecord(r *types.WindowRecord) types.WindowRecord {
	c := *r
	c.Payload = utils.ClonePayload(r.Payload)
	if r.TitleOverride != nil {
		v := *r.TitleOverride
		c.TitleOverride = &v
	}
	if r.Opacity != nil {
		v := *r.Opacity
		c.Opacity = &v
	}
	if r.Theme != nil {
		v := *r.Theme
		c.Theme = &v
	}
	if r.BackdropBlurPx != nil {
		v := *r.BackdropBlurPx
		c.BackdropBlurPx = &v
	}
	return c
}
