package connect

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Xevion/go-buzz/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, srv *httptest.Server) *Connection {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	conn, err := Dial(context.Background(), u)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msg, err := ReadMessage[map[string]any](conn)
	require.NoError(t, err)
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ReplaysStateOnConnect(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	hub.RenderTimesList([]types.BuzzTime{{Hour: 8, Minute: 0}, {Hour: 20, Minute: 30}})
	hub.SetFlashing(true)
	hub.ShowCurrentTime("08:00:02")
	hub.ShowCountdown("12h 29m 58s")

	conn := dialHub(t, srv)

	times := readFrame(t, conn.Conn)
	assert.Equal(t, TypeTimes, times["type"])
	assert.Equal(t, []any{"08:00", "20:30"}, times["times"])

	flash := readFrame(t, conn.Conn)
	assert.Equal(t, TypeFlash, flash["type"])
	assert.Equal(t, true, flash["active"])

	clock := readFrame(t, conn.Conn)
	assert.Equal(t, map[string]any{"type": TypeTime, "text": "08:00:02"}, clock)

	countdown := readFrame(t, conn.Conn)
	assert.Equal(t, map[string]any{"type": TypeCountdown, "text": "12h 29m 58s"}, countdown)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	first := dialHub(t, srv)
	second := dialHub(t, srv)
	waitForClients(t, hub, 2)

	// drain the replay
	for _, c := range []*Connection{first, second} {
		for i := 0; i < 4; i++ {
			readFrame(t, c.Conn)
		}
	}

	hub.ShowCountdown("--:--")

	for _, c := range []*Connection{first, second} {
		msg := readFrame(t, c.Conn)
		assert.Equal(t, "--:--", msg["text"])
	}
}

func TestHub_EmptyTimesIsAList(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dialHub(t, srv)
	require.NoError(t, conn.Conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	raw, err := ReadMessageRaw(conn.Conn)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"times","times":[]}`, string(raw))
}

func TestHub_TestRequest(t *testing.T) {
	hub := NewHub(nil)
	fired := make(chan struct{}, 1)
	hub.OnTest(func() { fired <- struct{}{} })

	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dialHub(t, srv)
	require.NoError(t, conn.Conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.RequestTest())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("test callback was not called")
	}
}

func TestHub_DisconnectAndClose(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)

	other := dialHub(t, srv)
	waitForClients(t, hub, 1)
	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	// the server closes the connection after the replay
	require.NoError(t, other.Conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, err := ReadMessageRaw(other.Conn); err != nil {
			break
		}
	}

	// new clients are turned away once closed
	late := dialHub(t, srv)
	require.NoError(t, late.Conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := ReadMessageRaw(late.Conn)
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Clients())
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	hub.ShowCurrentTime("10:00:00")
	hub.SetFlashing(false)
	hub.RenderTimesList(nil)
	assert.Equal(t, 0, hub.Clients())

	var msg TimesMessage
	require.NoError(t, json.Unmarshal(hub.stateMessages()[0], &msg))
	assert.Empty(t, msg.Times)
}

func TestListenWebsocket(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.RenderTimesList([]types.BuzzTime{{Hour: 7, Minute: 15}})
	hub.ShowCurrentTime("07:00:00")

	conn := dialHub(t, srv)
	frames := make(chan Frame, 16)
	go ListenWebsocket(conn.Conn, frames)

	next := func() Frame {
		t.Helper()
		select {
		case f, ok := <-frames:
			require.True(t, ok, "listener stopped early")
			return f
		case <-time.After(2 * time.Second):
			t.Fatal("no frame received")
			return Frame{}
		}
	}

	assert.Equal(t, Frame{Type: TypeTimes, Times: []types.BuzzTime{{Hour: 7, Minute: 15}}}, next())
	assert.Equal(t, Frame{Type: TypeFlash}, next())
	assert.Equal(t, Frame{Type: TypeTime, Text: "07:00:00"}, next())
	assert.Equal(t, TypeCountdown, next().Type)

	hub.SetFlashing(true)
	assert.Equal(t, Frame{Type: TypeFlash, Active: true}, next())

	hub.Close()
	select {
	case _, ok := <-frames:
		for ok {
			_, ok = <-frames
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after the hub closed")
	}
}
