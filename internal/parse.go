package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a signed duration string such as "-30m" or "+1h".
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("couldn't parse string duration: \"%s\" see https://pkg.go.dev/time#ParseDuration for valid time units: %w", s, err)
	}
	return d, nil
}

// ParseLevel parses a volume level. Accepts "0.5" or a percentage such as "50%".
func ParseLevel(s string) (float64, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse level \"%s\": %w", s, err)
	}
	if percent {
		v /= 100
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("level %q must be between 0 and 1 (or 0%% and 100%%)", s)
	}
	return v, nil
}
