// Package http exposes the desktop over a JSON REST API. Handlers translate
// requests into window manager, filesystem and shell calls and map domain
// errors onto status codes.
package http
