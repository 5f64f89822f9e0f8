package scheduling

import (
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/Xevion/go-buzz/types"
	"github.com/nathan-osman/go-sunrise"
)

// ErrNoSunEvent is returned when the sun does not rise or set on the given day.
var ErrNoSunEvent = errors.New("sun does not rise or set on this day")

// SunTrigger represents a trigger based on sunrise or sunset with optional offset
type SunTrigger struct {
	latitude  float64        // latitude of the location
	longitude float64        // longitude of the location
	sunset    bool           // true for sunset, false for sunrise
	offset    *time.Duration // offset from sun event (can be negative)
}

func NewSunTrigger(latitude, longitude float64, sunset bool, offset time.Duration) *SunTrigger {
	return &SunTrigger{
		latitude:  latitude,
		longitude: longitude,
		sunset:    sunset,
		offset:    &offset,
	}
}

// NextTime returns the time the sun rises or sets on the day of now, in now's location.
// If an offset is provided, it will be added to the calculated time.
func (t *SunTrigger) NextTime(now time.Time) *time.Time {
	var sun time.Time

	if t.sunset {
		_, sun = sunrise.SunriseSunset(t.latitude, t.longitude, now.Year(), now.Month(), now.Day())
	} else {
		sun, _ = sunrise.SunriseSunset(t.latitude, t.longitude, now.Year(), now.Month(), now.Day())
	}

	// In the case that the sun does not rise or set on the given day, return nil
	if sun.IsZero() {
		return nil
	}

	sun = sun.In(now.Location())
	if t.offset != nil && *t.offset != 0 {
		sun = sun.Add(*t.offset) // Add the offset if provided and not zero
	}

	return &sun
}

// Resolve converts the sun event on the day of now into a fixed daily time.
// Seconds are truncated.
func (t *SunTrigger) Resolve(now time.Time) (types.BuzzTime, error) {
	at := t.NextTime(now)
	if at == nil {
		return types.BuzzTime{}, fmt.Errorf("%w (lat=%f lon=%f)", ErrNoSunEvent, t.latitude, t.longitude)
	}
	return types.NewBuzzTime(at.Hour(), at.Minute())
}

// Hash returns a stable hash value for the SunTrigger
func (t *SunTrigger) Hash() uint64 {
	h := fnv.New64()
	fmt.Fprintf(h, "%f:%f:%t", t.latitude, t.longitude, t.sunset)
	if t.offset != nil {
		fmt.Fprintf(h, ":%d", t.offset.Nanoseconds())
	}
	return h.Sum64()
}

func (t *SunTrigger) String() string {
	event := "sunrise"
	if t.sunset {
		event = "sunset"
	}
	if t.offset != nil && *t.offset != 0 {
		return fmt.Sprintf("%s%+v", event, *t.offset)
	}
	return event
}
