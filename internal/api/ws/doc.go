// Package ws streams desktop events to the shell over a WebSocket.
//
// Every connection subscribes to the event bus and receives window and
// filesystem events as JSON text frames in publish order.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Sent once after the upgrade
//   - pong: Reply to ping
//   - window.* and fs.*: Desktop events
//   - error: Unknown or malformed client message
//
// Example Usage:
//
//	handler := ws.NewHandler(bus, logger).WithMetrics(metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
