package buzz

import (
	"fmt"
	"time"

	"github.com/Xevion/go-buzz/types"
	"github.com/dromara/carbon/v2"
)

// ClockSample is one reading of the host wall clock, taken once per tick.
type ClockSample struct {
	Hour    int
	Minute  int
	Second  int
	Instant time.Time
}

// SampleOf reads the wall clock fields of t in t's location.
func SampleOf(t time.Time) ClockSample {
	c := carbon.NewCarbon(t)
	return ClockSample{
		Hour:    c.Hour(),
		Minute:  c.Minute(),
		Second:  c.Second(),
		Instant: t,
	}
}

// String formats the sample as "HH:MM:SS".
func (s ClockSample) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", s.Hour, s.Minute, s.Second)
}

// BuzzTime drops the seconds.
func (s ClockSample) BuzzTime() types.BuzzTime {
	return types.BuzzTime{Hour: s.Hour, Minute: s.Minute}
}
