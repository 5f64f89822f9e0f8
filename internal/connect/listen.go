package connect

import (
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/Xevion/go-buzz/types"
)

// Frame is any server frame decoded into one struct. Only the fields of its Type are set.
type Frame struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Active bool             `json:"active,omitempty"`
	Times  []types.BuzzTime `json:"times,omitempty"`
}

// ListenWebsocket decodes frames from conn into c until the connection fails.
// c is closed on return. Frames that do not decode are skipped, and the listener
// gives up if c is full so a stalled reader cannot hold the socket open.
func ListenWebsocket(conn *websocket.Conn, c chan<- Frame) {
	defer close(c)
	for {
		raw, err := ReadMessageRaw(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("Error reading from websocket", "err", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			slog.Debug("Skipping undecodable frame", "err", err, "message", string(raw))
			continue
		}

		select {
		case c <- frame:
		default:
			slog.Warn("Frame channel is full, stopping listener", "capacity", cap(c))
			return
		}
	}
}
