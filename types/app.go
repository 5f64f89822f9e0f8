package types

import (
	"log/slog"
	"time"
)

// NewAppRequest contains the configuration for creating a new App instance.
type NewAppRequest struct {
	// Optional
	// Directory holding buzz_times.json and the custom alert clip.
	// Used by the "file" store backend.
	DataDir string

	// Optional
	// Store backend, "file" (default), "sqlite" or "memory".
	StoreBackend string

	// Optional
	// Path of the sqlite database. Defaults to DataDir/buzz.db.
	SQLitePath string

	// Optional
	// Command used to play a rendered alert file, the file path is appended.
	// Defaults to "aplay -q".
	PlayerCommand []string

	// Optional
	// Initial volume between 0.0 and 1.0. Defaults to 1.0.
	Volume *float64

	// Optional
	// How often the clock is sampled. Defaults to one second.
	TickInterval time.Duration

	// Optional
	// Times added to the store on first start, when it holds none.
	SeedTimes []TimeString

	// Optional
	// Coordinates used to resolve sunrise/sunset into a fixed time.
	Latitude  float64
	Longitude float64

	// Optional
	Logger *slog.Logger
}

// Status is a point in time view of the daemon.
type Status struct {
	Version   string     `json:"version"`
	Store     string     `json:"store"`
	Now       string     `json:"now"`
	Countdown string     `json:"countdown"`
	Next      *BuzzTime  `json:"next,omitempty"`
	NextAt    *time.Time `json:"next_at,omitempty"`
	Flashing  bool       `json:"flashing"`
	Times     []BuzzTime `json:"times"`
	Volume    float64    `json:"volume"`
	ClipName  string     `json:"clip_name,omitempty"`
}
