// Package settings keeps the desktop preferences (wallpaper, icon size,
// color mode and window opacity) and persists them as one record.
package settings
