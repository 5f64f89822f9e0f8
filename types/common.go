package types

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidTime is returned when a string is not a zero-padded 24-hr "HH:MM" time.
var ErrInvalidTime = errors.New("invalid time, format must be HH:MM")

// DurationString represents a duration, such as "-30m" or "1h".
// See https://pkg.go.dev/time#ParseDuration for all valid time units.
type DurationString string

// TimeString is a 24-hr format time "HH:MM" such as "07:30".
type TimeString string

// BuzzTime is a daily alarm time with minute granularity.
type BuzzTime struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// ParseBuzzTime parses a zero-padded "HH:MM" string.
func ParseBuzzTime(s string) (BuzzTime, error) {
	// time.Parse accepts "9:05" for "15:04", the canonical form does not
	if len(s) != 5 || s[2] != ':' {
		return BuzzTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return BuzzTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return BuzzTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// NewBuzzTime validates hour and minute.
func NewBuzzTime(hour, minute int) (BuzzTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return BuzzTime{}, fmt.Errorf("%w: hour=%d minute=%d", ErrInvalidTime, hour, minute)
	}
	return BuzzTime{Hour: hour, Minute: minute}, nil
}

// String returns the canonical "HH:MM" form.
func (b BuzzTime) String() string {
	return fmt.Sprintf("%02d:%02d", b.Hour, b.Minute)
}

// TimeString returns the canonical form as a TimeString.
func (b BuzzTime) TimeString() TimeString {
	return TimeString(b.String())
}

// Minutes returns the number of minutes since midnight.
func (b BuzzTime) Minutes() int {
	return b.Hour*60 + b.Minute
}

func (b BuzzTime) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BuzzTime) UnmarshalText(text []byte) error {
	parsed, err := ParseBuzzTime(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// SortBuzzTimes returns a sorted, deduplicated copy of times.
func SortBuzzTimes(times []BuzzTime) []BuzzTime {
	seen := make(map[BuzzTime]struct{}, len(times))
	out := make([]BuzzTime, 0, len(times))
	for _, t := range times {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minutes() < out[j].Minutes() })
	return out
}

// Clip is a user supplied alert sound.
type Clip struct {
	Name string
	Data []byte
}
