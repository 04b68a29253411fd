// Package registry holds the application definitions the window manager opens
// windows for: id, display name, icon and default window sizing and styling.
//
// NewDefault seeds the built-in applications. A Seeder can add or override
// definitions from a YAML, TOML or JSON file.
package registry
