package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/Xevion/go-buzz/internal"
	"github.com/Xevion/go-buzz/types"
)

var ErrDuplicateTrigger = errors.New("duplicate trigger")

type DailyScheduleBuilder struct {
	errors   []error
	hashes   map[uint64]bool
	triggers []Trigger

	latitude    float64
	longitude   float64
	hasLocation bool
	now         func() time.Time
}

func NewSchedule() *DailyScheduleBuilder {
	return &DailyScheduleBuilder{
		hashes: make(map[uint64]bool),
		now:    time.Now,
	}
}

// WithLocation sets the coordinates used by sun triggers.
func (b *DailyScheduleBuilder) WithLocation(latitude, longitude float64) *DailyScheduleBuilder {
	b.latitude = latitude
	b.longitude = longitude
	b.hasLocation = true
	return b
}

// WithNow overrides the clock used to resolve sun triggers.
func (b *DailyScheduleBuilder) WithNow(now func() time.Time) *DailyScheduleBuilder {
	b.now = now
	return b
}

// tryAddTrigger adds a trigger to the builder if it is not already present.
// If the trigger is already present, an error will be added to the builder's errors.
// It will return the builder for chaining.
func (b *DailyScheduleBuilder) tryAddTrigger(trigger Trigger) *DailyScheduleBuilder {
	hash := trigger.Hash()
	if _, ok := b.hashes[hash]; ok {
		b.errors = append(b.errors, fmt.Errorf("%w: %v", ErrDuplicateTrigger, trigger))
		return b
	}

	b.triggers = append(b.triggers, trigger)
	b.hashes[hash] = true

	return b
}

func (b *DailyScheduleBuilder) onSun(sunset bool, offset ...types.DurationString) *DailyScheduleBuilder {
	if !b.hasLocation {
		b.errors = append(b.errors, fmt.Errorf("no location provided for sun trigger"))
		return b
	}

	var offsetDuration time.Duration
	if len(offset) > 0 {
		d, err := internal.ParseDuration(string(offset[0]))
		if err != nil {
			b.errors = append(b.errors, err)
			return b
		}
		offsetDuration = d
	}

	return b.tryAddTrigger(NewSunTrigger(b.latitude, b.longitude, sunset, offsetDuration))
}

// OnSunrise adds a trigger for sunrise with an optional offset.
// Only the first offset is considered. The trigger is resolved to a fixed time on Build.
func (b *DailyScheduleBuilder) OnSunrise(offset ...types.DurationString) *DailyScheduleBuilder {
	return b.onSun(false, offset...)
}

// OnSunset adds a trigger for sunset with an optional offset.
// Only the first offset is considered.
func (b *DailyScheduleBuilder) OnSunset(offset ...types.DurationString) *DailyScheduleBuilder {
	return b.onSun(true, offset...)
}

// OnFixedTime adds a trigger for a fixed time each day.
// The time is in the local timezone.
// This will error if the integer values are not in the range 0-23 for the hour and 0-59 for the minute.
func (b *DailyScheduleBuilder) OnFixedTime(hour, minute int) *DailyScheduleBuilder {
	errored := false
	if hour < 0 || hour > 23 {
		b.errors = append(b.errors, fmt.Errorf("hour must be between 0 and 23"))
		errored = true
	}

	if minute < 0 || minute > 59 {
		b.errors = append(b.errors, fmt.Errorf("minute must be between 0 and 59"))
		errored = true
	}

	if errored {
		return b
	}

	return b.tryAddTrigger(&FixedTimeTrigger{
		Hour:   hour,
		Minute: minute,
	})
}

// OnTime adds a trigger for a "HH:MM" time string.
func (b *DailyScheduleBuilder) OnTime(s types.TimeString) *DailyScheduleBuilder {
	t, err := types.ParseBuzzTime(string(s))
	if err != nil {
		b.errors = append(b.errors, err)
		return b
	}
	return b.OnFixedTime(t.Hour, t.Minute)
}

// Build resolves every trigger to a fixed daily time and returns the resulting Plan.
// It will return an error if any errors occurred during configuration, or if two
// triggers resolve to the same minute.
func (b *DailyScheduleBuilder) Build() (*Plan, error) {
	// If there are no triggers, add an error.
	if len(b.triggers) == 0 {
		b.errors = append(b.errors, fmt.Errorf("no triggers provided"))
	}

	now := b.now()
	times := make([]types.BuzzTime, 0, len(b.triggers))
	seen := make(map[types.BuzzTime]bool, len(b.triggers))
	for _, trigger := range b.triggers {
		var t types.BuzzTime
		switch tr := trigger.(type) {
		case *FixedTimeTrigger:
			t = tr.BuzzTime()
		case *SunTrigger:
			resolved, err := tr.Resolve(now)
			if err != nil {
				b.errors = append(b.errors, err)
				continue
			}
			t = resolved
		default:
			b.errors = append(b.errors, fmt.Errorf("unsupported trigger %T", trigger))
			continue
		}
		if seen[t] {
			b.errors = append(b.errors, fmt.Errorf("%w: %v resolves to %s", ErrDuplicateTrigger, trigger, t))
			continue
		}
		seen[t] = true
		times = append(times, t)
	}

	// If there are errors, return an error.
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("errors occurred: %w", errors.Join(b.errors...))
	}

	return NewPlan(times), nil
}
