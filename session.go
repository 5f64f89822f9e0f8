package buzz

import (
	"time"

	"github.com/google/uuid"
)

// AlertDuration is how long the flash lasts, regardless of the audio length.
const AlertDuration = 5 * time.Second

// Trigger sources, used in logs and metrics.
const (
	SourceSchedule = "schedule"
	SourceTest     = "test"
)

// AlertSession is an alert currently being presented.
type AlertSession struct {
	ID        uuid.UUID
	StartedAt time.Time
	Source    string

	timer Timer // ends the session after AlertDuration
}

// EndsAt is when the terminator fires.
func (s AlertSession) EndsAt() time.Time {
	return s.StartedAt.Add(AlertDuration)
}
