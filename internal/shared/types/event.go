package types

import "time"

// EventType identifies a desktop notification
type EventType string

const (
	EventWindowOpened     EventType = "window.opened"
	EventWindowFocused    EventType = "window.focused"
	EventWindowClosed     EventType = "window.closed"
	EventWindowGeometry   EventType = "window.geometry"
	EventWindowTitle      EventType = "window.title"
	EventWindowAppearance EventType = "window.appearance"
	EventFileWritten      EventType = "fs.written"
	EventDirCreated       EventType = "fs.mkdir"
	EventFilesystemReady  EventType = "fs.hydrated"
	EventSettingsChanged  EventType = "settings.changed"
)

// Event is pushed to the desktop shell over the stream endpoint
type Event struct {
	Type     EventType     `json:"type"`
	WindowID int           `json:"window_id,omitempty"`
	Window   *WindowRecord `json:"window,omitempty"`
	Path     string        `json:"path,omitempty"`
	Settings *Settings     `json:"settings,omitempty"`
	Sound    string        `json:"sound,omitempty"` // effect hint for the shell's player
	Time     time.Time     `json:"time"`
}
