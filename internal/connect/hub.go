package connect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Xevion/go-buzz/internal"
	"github.com/Xevion/go-buzz/internal/telemetry"
	"github.com/Xevion/go-buzz/types"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type client struct {
	id   int64
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes the clock state to every connected browser. A client that
// connects late first receives the current state, then live updates.
// Publishing never blocks: a client whose buffer is full is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[int64]*client
	closed  bool
	onTest  func()

	// last published state, replayed on connect
	timeText      string
	countdownText string
	flashing      bool
	times         []types.BuzzTime
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger,
		clients: make(map[int64]*client),
		times:   []types.BuzzTime{},
	}
}

// OnTest registers the callback run when a client asks for a test buzz.
func (h *Hub) OnTest(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTest = fn
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an error status
		h.logger.Warn("Websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := &client{
		id:   internal.NextId(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	// replay happens under the lock so no broadcast can slip in between
	for _, msg := range h.stateMessages() {
		c.send <- msg
	}

	h.clients[c.id] = c
	telemetry.WebsocketClients.Set(float64(len(h.clients)))
	h.logger.Debug("Websocket client connected", "client", c.id, "clients", len(h.clients))
	return true
}

// unregister must be called with h.mu held.
func (h *Hub) unregister(c *client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	telemetry.WebsocketClients.Set(float64(len(h.clients)))
	h.logger.Debug("Websocket client disconnected", "client", c.id, "clients", len(h.clients))
}

// stateMessages must be called with h.mu held.
func (h *Hub) stateMessages() [][]byte {
	msgs := make([][]byte, 0, 4)
	for _, v := range []any{
		TimesMessage{Type: TypeTimes, Times: h.times},
		FlashMessage{Type: TypeFlash, Active: h.flashing},
		TextMessage{Type: TypeTime, Text: h.timeText},
		TextMessage{Type: TypeCountdown, Text: h.countdownText},
	} {
		if raw, err := json.Marshal(v); err == nil {
			msgs = append(msgs, raw)
		}
	}
	return msgs
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.unregister(c)
		h.mu.Unlock()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		raw, err := ReadMessageRaw(c.conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Websocket read failed", "client", c.id, "error", err)
			}
			return
		}

		var msg BaseMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Warn("Ignoring malformed websocket message", "client", c.id, "error", err)
			continue
		}

		switch msg.Type {
		case TypeTest:
			h.mu.Lock()
			onTest := h.onTest
			h.mu.Unlock()
			if onTest != nil {
				onTest()
			}
		default:
			h.logger.Debug("Ignoring websocket message", "client", c.id, "type", msg.Type)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// broadcast must be called with h.mu held.
func (h *Hub) broadcast(v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode websocket message", "error", err)
		return
	}

	for _, c := range h.clients {
		select {
		case c.send <- raw:
		default:
			h.logger.Warn("Dropping slow websocket client", "client", c.id)
			h.unregister(c)
		}
	}
}

func (h *Hub) ShowCurrentTime(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeText = text
	h.broadcast(TextMessage{Type: TypeTime, Text: text})
}

func (h *Hub) ShowCountdown(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.countdownText = text
	h.broadcast(TextMessage{Type: TypeCountdown, Text: text})
}

func (h *Hub) SetFlashing(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flashing = active
	h.broadcast(FlashMessage{Type: TypeFlash, Active: active})
}

func (h *Hub) RenderTimesList(times []types.BuzzTime) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.times = append([]types.BuzzTime{}, times...)
	h.broadcast(TimesMessage{Type: TypeTimes, Times: h.times})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, c := range h.clients {
		h.unregister(c)
	}
}
