package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidClock = errors.New("invalid clock")

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a strict 24-hour "HH:MM" value. Single-digit hours
// ("7:45") and out-of-range values ("25:00") are rejected.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, fmt.Errorf("%w: expected HH:MM, got %q", ErrInvalidClock, s)
	}
	h, ok := twoDigits(s[0], s[1])
	if !ok || h > 23 {
		return Clock{}, fmt.Errorf("%w: invalid hour in %q", ErrInvalidClock, s)
	}
	m, ok := twoDigits(s[3], s[4])
	if !ok || m > 59 {
		return Clock{}, fmt.Errorf("%w: invalid minute in %q", ErrInvalidClock, s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// String returns HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ValidateTZ checks that the tz is a valid IANA location.
// An empty tz means the process-local zone.
func ValidateTZ(tz string) (*time.Location, error) {
	if tz == "" {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}
