// Package wallpaper lists the desktop background images shipped in a
// directory and maps their names to URL paths.
package wallpaper
