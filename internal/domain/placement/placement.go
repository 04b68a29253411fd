package placement

import (
	"math"

	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// Defaults used when an Engine is built with zero values.
const (
	DefaultStep        = 24
	DefaultMargin      = 16
	DefaultCascadeStep = 32
	DefaultGridSize    = 8
)

// Engine holds the tunables for placement. The zero value is not usable;
// build one with New.
type Engine struct {
	Step        int // grid scan step
	Margin      int // inset from every viewport edge
	CascadeStep int // diagonal offset per open window
}

// New creates an engine, replacing non-positive values with defaults.
func New(step, margin, cascadeStep int) Engine {
	if step <= 0 {
		step = DefaultStep
	}
	if margin < 0 {
		margin = DefaultMargin
	}
	if cascadeStep <= 0 {
		cascadeStep = DefaultCascadeStep
	}
	return Engine{Step: step, Margin: margin, CascadeStep: cascadeStep}
}

// Default returns an engine with the default tunables.
func Default() Engine {
	return New(DefaultStep, DefaultMargin, DefaultCascadeStep)
}

// RectsIntersect reports whether a and b overlap. Touching edges is not overlap.
func RectsIntersect(a, b types.Rect) bool {
	return a.X < b.X+b.Width &&
		a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height &&
		a.Y+a.Height > b.Y
}

func intersectsAny(r types.Rect, existing []types.Rect) bool {
	for _, e := range existing {
		if RectsIntersect(r, e) {
			return true
		}
	}
	return false
}

// bounds returns the inclusive range of valid top-left coordinates along one
// axis. When the window does not fit inside the margins the range collapses
// to the margin (or zero when even that is impossible).
func (e Engine) bounds(size, extent int) (lo, hi int) {
	lo = e.Margin
	hi = extent - e.Margin - size
	if hi < lo {
		if extent-size >= 0 {
			lo = min(lo, extent-size)
		} else {
			lo = 0
		}
		hi = lo
	}
	return lo, hi
}

// Clamp keeps a top-left point inside the margin-inset viewport.
func (e Engine) Clamp(p types.Point, width, height int, viewport types.Viewport) types.Point {
	loX, hiX := e.bounds(width, viewport.Width)
	loY, hiY := e.bounds(height, viewport.Height)
	return types.Point{
		X: max(loX, min(p.X, hiX)),
		Y: max(loY, min(p.Y, hiY)),
	}
}

// FindNonOverlapping returns the first position where a width x height window
// overlaps none of existing. A preferred point is clamped and tried first.
// It returns false when no grid cell qualifies; callers fall back to ComputeCascade.
func (e Engine) FindNonOverlapping(width, height int, existing []types.Rect, viewport types.Viewport, preferred *types.Point) (types.Point, bool) {
	if preferred != nil {
		p := e.Clamp(*preferred, width, height, viewport)
		if !intersectsAny(types.Rect{X: p.X, Y: p.Y, Width: width, Height: height}, existing) {
			return p, true
		}
	}

	loX, hiX := e.bounds(width, viewport.Width)
	loY, hiY := e.bounds(height, viewport.Height)

	for y := loY; y <= hiY; y += e.Step {
		for x := loX; x <= hiX; x += e.Step {
			if !intersectsAny(types.Rect{X: x, Y: y, Width: width, Height: height}, existing) {
				return types.Point{X: x, Y: y}, true
			}
		}
	}
	return types.Point{}, false
}

// ComputeCascade offsets each new window diagonally by the number already
// open, wrapping within the room left after the window size so the result is
// always on screen.
func (e Engine) ComputeCascade(width, height, existingCount int, viewport types.Viewport) types.Point {
	offset := max(existingCount, 0) * e.CascadeStep
	return types.Point{
		X: e.wrap(offset, width, viewport.Width),
		Y: e.wrap(offset, height, viewport.Height),
	}
}

func (e Engine) wrap(offset, size, extent int) int {
	lo, hi := e.bounds(size, extent)
	room := hi - lo
	if room <= 0 {
		return lo
	}
	return lo + offset%(room+1)
}

// SnapToGrid rounds value to the nearest multiple of gridSize. Halves round
// away from zero. A non-positive gridSize leaves value unchanged.
func SnapToGrid(value, gridSize int) int {
	if gridSize <= 0 {
		return value
	}
	return int(math.Round(float64(value)/float64(gridSize))) * gridSize
}

// SnapRect snaps every component of r and keeps the size at least one cell.
func SnapRect(r types.Rect, gridSize int) types.Rect {
	out := types.Rect{
		X:      SnapToGrid(r.X, gridSize),
		Y:      SnapToGrid(r.Y, gridSize),
		Width:  SnapToGrid(r.Width, gridSize),
		Height: SnapToGrid(r.Height, gridSize),
	}
	if gridSize > 0 {
		out.Width = max(out.Width, gridSize)
		out.Height = max(out.Height, gridSize)
	}
	return out
}
