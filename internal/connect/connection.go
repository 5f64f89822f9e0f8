package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/Xevion/go-buzz/internal"
	"github.com/gorilla/websocket"
)

// Connection is a client side wrapper around a WebSocket connection that provides a mutex for thread safety.
type Connection struct {
	Conn  *websocket.Conn // Note: this is not thread safe except for Close() and WriteControl()
	mutex sync.Mutex
}

// WriteMessage writes a message to the WebSocket connection.
func (w *Connection) WriteMessage(msg any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.Conn.WriteJSON(msg)
}

// RequestTest asks the server to fire a test buzz.
func (w *Connection) RequestTest() error {
	return w.WriteMessage(BaseMessage{Type: TypeTest})
}

func (w *Connection) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	_ = w.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	return w.Conn.Close()
}

// ReadMessageRaw reads a raw message from the WebSocket connection.
func ReadMessageRaw(conn *websocket.Conn) ([]byte, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ReadMessage reads a message from the WebSocket connection and unmarshals it into the given type.
func ReadMessage[T any](conn *websocket.Conn) (T, error) {
	var result T
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return result, err
	}

	err = json.Unmarshal(msg, &result)
	if err != nil {
		return result, err
	}

	return result, nil
}

// Dial connects to the /ws endpoint of the daemon at baseUrl.
func Dial(ctx context.Context, baseUrl *url.URL) (*Connection, error) {
	// Build the WebSocket URL
	urlWebsockets := *baseUrl
	urlWebsockets.Path = "/ws"
	scheme, err := internal.GetEquivalentWebsocketScheme(baseUrl.Scheme)
	if err != nil {
		return nil, fmt.Errorf("failed to build WebSocket URL: %w", err)
	}
	urlWebsockets.Scheme = scheme

	// Create a short timeout context for the connection only
	connCtx, connCtxCancel := context.WithTimeout(ctx, time.Second*3)
	defer connCtxCancel()

	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(connCtx, urlWebsockets.String(), nil)
	if err != nil {
		slog.Error("Failed to connect to WebSocket. Check the server address", "url", urlWebsockets.String())
		return nil, err
	}

	return &Connection{Conn: conn}, nil
}
