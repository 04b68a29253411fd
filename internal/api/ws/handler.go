package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/shared/events"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

const (
	// SendBuffer is the per-connection queue; events beyond it are dropped
	SendBuffer = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 4096
)

// ClientMessage is a frame sent by the shell
type ClientMessage struct {
	Type string `json:"type"`
}

// Handler manages WebSocket connections
type Handler struct {
	bus      *events.Bus
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	upgrader websocket.Upgrader
}

// NewHandler creates a handler that streams events published on bus
func NewHandler(bus *events.Bus, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WithMetrics adds metrics collection
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// WithOrigins restricts upgrades to the given origins. "*" or an empty list
// allows any origin.
func (h *Handler) WithOrigins(origins []string) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return h
		}
		allowed[o] = true
	}
	if len(allowed) == 0 {
		return h
	}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
	return h
}

// client holds the queues of one connection. done closes when the reader
// exits, stopped when the writer does.
type client struct {
	outbound chan interface{}
	done     chan struct{}
	stopped  chan struct{}
}

func newClient() *client {
	return &client{
		outbound: make(chan interface{}, SendBuffer),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// send queues msg, waiting for room until either loop exits
func (cl *client) send(msg interface{}) {
	select {
	case cl.outbound <- msg:
	case <-cl.done:
	case <-cl.stopped:
	}
}

// offer queues msg without waiting. It reports false when the queue is full;
// a closed connection swallows msg.
func (cl *client) offer(msg interface{}) bool {
	select {
	case <-cl.done:
		return true
	case <-cl.stopped:
		return true
	default:
	}
	select {
	case cl.outbound <- msg:
		return true
	default:
		return false
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	cl := newClient()

	// Subscribe before the greeting so nothing published after it is missed
	unsubscribe := h.bus.Subscribe(func(evt types.Event) {
		if !cl.offer(evt) {
			h.metrics.RecordWSMessage("out", "dropped")
			h.logger.Warn("WebSocket client too slow, event dropped", zap.String("type", string(evt.Type)))
		}
	})
	defer unsubscribe()

	go h.writeLoop(conn, cl)
	cl.send(gin.H{
		"type":    "system",
		"message": "Connected to desktop event stream",
	})
	h.readLoop(conn, cl)
}

// readLoop handles client frames until the connection fails
func (h *Handler) readLoop(conn *websocket.Conn, cl *client) {
	defer close(cl.done)

	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.metrics.RecordWSMessage("in", "malformed")
			cl.send(errorMessage("malformed message"))
			continue
		}
		switch msg.Type {
		case "ping":
			h.metrics.RecordWSMessage("in", "ping")
			cl.send(gin.H{"type": "pong", "timestamp": time.Now().Unix()})
		default:
			h.metrics.RecordWSMessage("in", "unknown")
			cl.send(errorMessage("unknown message type"))
		}
	}
}

// writeLoop is the only writer on conn. Closing conn on exit unblocks the
// reader.
func (h *Handler) writeLoop(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(cl.stopped)
		conn.Close()
	}()

	for {
		select {
		case msg := <-cl.outbound:
			if err := h.write(conn, msg); err != nil {
				h.logger.Debug("WebSocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cl.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, msg interface{}) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	h.metrics.RecordWSMessage("out", messageType(msg))
	return nil
}

func errorMessage(message string) gin.H {
	return gin.H{"type": "error", "message": message}
}

func messageType(msg interface{}) string {
	switch m := msg.(type) {
	case types.Event:
		return string(m.Type)
	case gin.H:
		if t, ok := m["type"].(string); ok {
			return t
		}
	}
	return "unknown"
}
