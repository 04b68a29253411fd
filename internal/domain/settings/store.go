package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/storage"
	"github.com/GriffinCanCode/retrodesk/internal/shared/events"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// Key is the storage key of the settings record
const Key = "desktop_settings_v1"

// Window opacity bounds; 1 is opaque
const (
	MinOpacity = 0.6
	MaxOpacity = 1.0
)

// FallbackColor is the default wallpaper when no images are available
const FallbackColor = "#008080"

// ErrInvalid is returned for values outside their allowed set
var ErrInvalid = errors.New("invalid settings")

// Patch carries the fields to change; nil fields are left alone
type Patch struct {
	Wallpaper     *types.Wallpaper `json:"wallpaper,omitempty"`
	IconSize      *types.IconSize  `json:"iconSize,omitempty"`
	Mode          *types.Mode      `json:"mode,omitempty"`
	WindowOpacity *float64         `json:"windowOpacity,omitempty"`
}

// Defaults builds the initial settings from the available wallpaper image
// URLs. The first image is selected.
func Defaults(imageURLs []string) types.Settings {
	s := types.Settings{
		IconSize:      types.IconRegular,
		Mode:          types.ModeLight,
		WindowOpacity: MaxOpacity,
	}
	for _, u := range imageURLs {
		s.Wallpapers = append(s.Wallpapers, types.Wallpaper{Type: types.WallpaperImage, Value: u})
	}
	if len(s.Wallpapers) == 0 {
		s.Wallpapers = []types.Wallpaper{{Type: types.WallpaperColor, Value: FallbackColor}}
	}
	s.Wallpaper = s.Wallpapers[0]
	return s
}

// Store holds the current settings
type Store struct {
	writeMu  sync.Mutex // orders mutations with their writes; readers skip it
	mu       sync.RWMutex
	current  types.Settings // Protected by mu
	defaults types.Settings

	store   storage.Store
	logger  *zap.Logger
	metrics *monitoring.Metrics
	bus     *events.Bus
}

// New creates a store starting at defaults. A nil backend disables persistence.
func New(backend storage.Store, defaults types.Settings, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		current:  defaults.Clone(),
		defaults: defaults.Clone(),
		store:    backend,
		logger:   logger,
		bus:      events.NewBus(),
	}
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// WithEvents publishes settings changes on a shared bus
func (s *Store) WithEvents(bus *events.Bus) *Store {
	s.bus = bus
	return s
}

// Hydrate loads the persisted record over the defaults. Fields missing from
// the record keep their default. An unreadable or invalid record is ignored.
func (s *Store) Hydrate(ctx context.Context) {
	if s.store == nil {
		return
	}

	data, err := s.store.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("Settings load failed", zap.String("key", Key), zap.Error(err))
		s.metrics.IncStorageError("settings_get")
		return
	}

	merged := s.defaults.Clone()
	if err := sonic.Unmarshal(data, &merged); err != nil {
		s.logger.Warn("Settings record unreadable, using defaults", zap.Error(err))
		return
	}
	if err := validate(merged); err != nil {
		s.logger.Warn("Settings record rejected, using defaults", zap.Error(err))
		return
	}
	if len(merged.Wallpapers) == 0 {
		merged.Wallpapers = s.defaults.Clone().Wallpapers
	}

	s.writeMu.Lock()
	s.mu.Lock()
	s.current = merged
	s.mu.Unlock()
	s.writeMu.Unlock()
}

// Get returns a copy of the current settings
func (s *Store) Get() types.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update applies patch. Nothing changes unless every given field is valid.
func (s *Store) Update(ctx context.Context, patch Patch) (types.Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.current.Clone()
	if patch.Wallpaper != nil {
		next.Wallpaper = *patch.Wallpaper
	}
	if patch.IconSize != nil {
		next.IconSize = *patch.IconSize
	}
	if patch.Mode != nil {
		next.Mode = *patch.Mode
	}
	if patch.WindowOpacity != nil {
		next.WindowOpacity = *patch.WindowOpacity
	}
	if err := validate(next); err != nil {
		s.mu.Unlock()
		return types.Settings{}, err
	}
	s.current = next
	s.mu.Unlock()

	s.commit(ctx, next)
	return next.Clone(), nil
}

// AddWallpaper appends w to the wallpaper list unless a wallpaper with the
// same value is listed, then selects it
func (s *Store) AddWallpaper(ctx context.Context, w types.Wallpaper) (types.Settings, error) {
	if err := validateWallpaper(w); err != nil {
		return types.Settings{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.current.Clone()
	listed := false
	for _, existing := range next.Wallpapers {
		if existing.Value == w.Value {
			listed = true
			break
		}
	}
	if !listed {
		next.Wallpapers = append(next.Wallpapers, w)
	}
	next.Wallpaper = w
	s.current = next
	s.mu.Unlock()

	s.commit(ctx, next)
	return next.Clone(), nil
}

// commit persists and announces a new state. Persistence failures are logged
// and counted, never returned.
func (s *Store) commit(ctx context.Context, next types.Settings) {
	if s.store != nil {
		if err := s.persist(ctx, next); err != nil {
			s.logger.Warn("Settings persist failed", zap.String("key", Key), zap.Error(err))
			s.metrics.IncStorageError("settings_set")
		}
	}
	published := next.Clone()
	s.bus.Publish(types.Event{Type: types.EventSettingsChanged, Settings: &published})
}

func (s *Store) persist(ctx context.Context, next types.Settings) error {
	data, err := sonic.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	ctx, cancel := storage.Detach(ctx)
	defer cancel()
	return s.store.Set(ctx, Key, data)
}

func validate(s types.Settings) error {
	if err := validateWallpaper(s.Wallpaper); err != nil {
		return err
	}
	for _, w := range s.Wallpapers {
		if err := validateWallpaper(w); err != nil {
			return err
		}
	}
	switch s.IconSize {
	case types.IconSmall, types.IconRegular, types.IconLarge:
	default:
		return fmt.Errorf("%w: icon size %q", ErrInvalid, s.IconSize)
	}
	switch s.Mode {
	case types.ModeLight, types.ModeDark:
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalid, s.Mode)
	}
	if s.WindowOpacity < MinOpacity || s.WindowOpacity > MaxOpacity {
		return fmt.Errorf("%w: window opacity %v outside [%v, %v]", ErrInvalid, s.WindowOpacity, MinOpacity, MaxOpacity)
	}
	return nil
}

func validateWallpaper(w types.Wallpaper) error {
	switch w.Type {
	case types.WallpaperColor, types.WallpaperImage:
	default:
		return fmt.Errorf("%w: wallpaper type %q", ErrInvalid, w.Type)
	}
	if w.Value == "" {
		return fmt.Errorf("%w: empty wallpaper value", ErrInvalid)
	}
	return nil
}
