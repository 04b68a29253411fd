package types

// WindowDefaults describes how a new window of an application is sized and styled.
type WindowDefaults struct {
	WidthRatio     float64  `json:"width_ratio,omitempty" yaml:"width_ratio" toml:"width_ratio"`
	HeightRatio    float64  `json:"height_ratio,omitempty" yaml:"height_ratio" toml:"height_ratio"`
	Opacity        *float64 `json:"opacity,omitempty" yaml:"opacity" toml:"opacity"`
	BackdropBlurPx *int     `json:"backdrop_blur_px,omitempty" yaml:"backdrop_blur_px" toml:"backdrop_blur_px"`
	Theme          *string  `json:"theme,omitempty" yaml:"theme" toml:"theme"`
}

// AppDefinition is an application registry entry
type AppDefinition struct {
	ID            string          `json:"id" yaml:"id" toml:"id"`
	Name          string          `json:"name" yaml:"name" toml:"name"`
	Icon          string          `json:"icon,omitempty" yaml:"icon" toml:"icon"`
	DefaultWindow *WindowDefaults `json:"default_window,omitempty" yaml:"default_window" toml:"default_window"`
}
