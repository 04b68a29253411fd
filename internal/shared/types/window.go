package types

import "time"

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a top-left window position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Viewport is the visible desktop area reported by the shell.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Appearance holds optional visual overrides. Nil fields mean "unchanged".
type Appearance struct {
	Opacity        *float64 `json:"opacity,omitempty"`
	Theme          *string  `json:"theme,omitempty"`
	BackdropBlurPx *int     `json:"backdrop_blur_px,omitempty"`
}

// WindowRecord represents one open application window
type WindowRecord struct {
	ID            int       `json:"id"`
	AppID         string    `json:"app_id"`
	Geometry      Rect      `json:"geometry"`
	ZIndex        int       `json:"z_index"`
	Payload       any       `json:"payload,omitempty"`
	PayloadKey    string    `json:"payload_key"`
	TitleOverride *string   `json:"title_override,omitempty"`
	Appearance              // opacity, theme, blur
	CreatedAt     time.Time `json:"created_at"`
}

// WindowStats contains window manager statistics
type WindowStats struct {
	OpenWindows int      `json:"open_windows"`
	FocusedID   *int     `json:"focused_id,omitempty"`
	NextID      int      `json:"next_id"`
	MaxZIndex   int      `json:"max_z_index"`
	Viewport    Viewport `json:"viewport"`
}
