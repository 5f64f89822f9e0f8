package scheduling

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/Xevion/go-buzz/internal"
	"github.com/Xevion/go-buzz/types"
)

type Trigger interface {
	// NextTime calculates the next occurrence of this trigger relative to the given time
	NextTime(now time.Time) *time.Time
	Hash() uint64
}

// FixedTimeTrigger represents a trigger at a specific hour and minute each day
type FixedTimeTrigger struct {
	Hour   int // 0-23
	Minute int // 0-59
}

func NewFixedTimeTrigger(t types.BuzzTime) *FixedTimeTrigger {
	return &FixedTimeTrigger{Hour: t.Hour, Minute: t.Minute}
}

// NextTime returns today's HH:MM:00 in the location of now, or tomorrow's if
// today's is strictly before now. A target equal to now is not advanced.
// Times skipped by a DST gap are normalised forward by time.Date.
func (t *FixedTimeTrigger) NextTime(now time.Time) *time.Time {
	y, m, d := now.Date()
	next := time.Date(y, m, d, t.Hour, t.Minute, 0, 0, now.Location())

	if next.Before(now) {
		next = time.Date(y, m, d+1, t.Hour, t.Minute, 0, 0, now.Location())
	}

	return internal.Ptr(next)
}

// BuzzTime returns the trigger's time of day.
func (t *FixedTimeTrigger) BuzzTime() types.BuzzTime {
	return types.BuzzTime{Hour: t.Hour, Minute: t.Minute}
}

func (t *FixedTimeTrigger) minutes() int {
	return t.Hour*60 + t.Minute
}

// Hash returns a stable hash value for the FixedTimeTrigger
func (t *FixedTimeTrigger) Hash() uint64 {
	h := fnv.New64()
	fmt.Fprintf(h, "%d:%d", t.Hour, t.Minute)
	return h.Sum64()
}

func (t *FixedTimeTrigger) String() string {
	return t.BuzzTime().String()
}
