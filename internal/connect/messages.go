package connect

import "github.com/Xevion/go-buzz/types"

// Frame types pushed to presentation clients.
const (
	TypeTime      = "time"
	TypeCountdown = "countdown"
	TypeFlash     = "flash"
	TypeTimes     = "times"

	// TypeTest is sent by a client to fire a test buzz.
	TypeTest = "test"
)

// BaseMessage is the base message type for all messages exchanged over the websocket.
type BaseMessage struct {
	Type string `json:"type"`
}

type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type FlashMessage struct {
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

type TimesMessage struct {
	Type  string           `json:"type"`
	Times []types.BuzzTime `json:"times"`
}
