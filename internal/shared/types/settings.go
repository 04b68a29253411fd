package types

// WallpaperKind tells the shell how to paint a wallpaper value
type WallpaperKind string

const (
	WallpaperColor WallpaperKind = "color"
	WallpaperImage WallpaperKind = "image"
)

// Wallpaper is a solid color or an image URL
type Wallpaper struct {
	Type  WallpaperKind `json:"type"`
	Value string        `json:"value"`
}

// IconSize scales the desktop icons
type IconSize string

const (
	IconSmall   IconSize = "small"
	IconRegular IconSize = "regular"
	IconLarge   IconSize = "large"
)

// Mode is the shell color scheme
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Settings are the persisted desktop preferences
type Settings struct {
	Wallpaper     Wallpaper   `json:"wallpaper"`
	Wallpapers    []Wallpaper `json:"wallpapers"`
	IconSize      IconSize    `json:"iconSize"`
	Mode          Mode        `json:"mode"`
	WindowOpacity float64     `json:"windowOpacity"`
}

// Clone returns a copy that shares no slices with s
func (s Settings) Clone() Settings {
	s.Wallpapers = append([]Wallpaper(nil), s.Wallpapers...)
	return s
}
