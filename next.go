package buzz

import (
	"fmt"
	"time"

	"github.com/Xevion/go-buzz/internal/scheduling"
	"github.com/Xevion/go-buzz/types"
)

// NoCountdown is displayed when no times are configured.
const NoCountdown = "--:--"

// NextEventEstimate is the next configured time and how long until it.
type NextEventEstimate struct {
	Target    types.BuzzTime
	At        time.Time
	Remaining time.Duration // never negative
}

// Countdown formats Remaining as "{h}h {m}m {s}s".
func (e NextEventEstimate) Countdown() string {
	return FormatCountdown(e.Remaining)
}

// FormatCountdown floors d to whole seconds and splits it into hours, minutes and seconds.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", total/3600, total%3600/60, total%60)
}

// ComputeNextEvent finds the first configured time whose minute is strictly
// after the sample's minute, wrapping to the earliest time tomorrow. The
// target is that time at :00.000 today, or tomorrow when today's has passed.
// ok is false when nothing is configured.
func ComputeNextEvent(sample ClockSample, configured []types.BuzzTime) (estimate NextEventEstimate, ok bool) {
	target, at, ok := scheduling.NewPlan(configured).Next(sample.Instant)
	if !ok {
		return NextEventEstimate{}, false
	}

	remaining := at.Sub(sample.Instant)
	if remaining < 0 {
		remaining = 0
	}

	return NextEventEstimate{
		Target:    target,
		At:        at,
		Remaining: remaining,
	}, true
}
