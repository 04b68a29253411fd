package window

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/storage"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// GeometryKeyPrefix prefixes the storage key of each application's geometry
const GeometryKeyPrefix = "window_geometry:"

// storedGeometry is the persisted record. Numbers may arrive as floats from
// older clients.
type storedGeometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// GeometryStore persists the last snapped geometry per application id
type GeometryStore struct {
	store storage.Store
}

// NewGeometryStore wraps a key/value store. A nil store disables persistence.
func NewGeometryStore(store storage.Store) *GeometryStore {
	return &GeometryStore{store: store}
}

// Key returns the storage key for appID
func Key(appID string) string {
	return GeometryKeyPrefix + appID
}

// Load returns the saved geometry for appID. Missing, unreadable or
// nonsensical records report false.
func (g *GeometryStore) Load(ctx context.Context, appID string) (types.Rect, bool, error) {
	if g == nil || g.store == nil {
		return types.Rect{}, false, nil
	}

	data, err := g.store.Get(ctx, Key(appID))
	if errors.Is(err, storage.ErrNotFound) {
		return types.Rect{}, false, nil
	}
	if err != nil {
		return types.Rect{}, false, err
	}

	var sg storedGeometry
	if err := sonic.Unmarshal(data, &sg); err != nil {
		return types.Rect{}, false, fmt.Errorf("decode geometry for %s: %w", appID, err)
	}

	rect := types.Rect{
		X:      int(math.Round(sg.X)),
		Y:      int(math.Round(sg.Y)),
		Width:  int(math.Round(sg.Width)),
		Height: int(math.Round(sg.Height)),
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return types.Rect{}, false, nil
	}
	return rect, true, nil
}

// Save stores rect for appID
func (g *GeometryStore) Save(ctx context.Context, appID string, rect types.Rect) error {
	if g == nil || g.store == nil {
		return nil
	}

	data, err := sonic.Marshal(storedGeometry{
		Width:  float64(rect.Width),
		Height: float64(rect.Height),
		X:      float64(rect.X),
		Y:      float64(rect.Y),
	})
	if err != nil {
		return fmt.Errorf("encode geometry for %s: %w", appID, err)
	}
	return g.store.Set(ctx, Key(appID), data)
}
