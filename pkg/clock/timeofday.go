package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned when a time of day cannot be parsed.
var ErrInvalidTime = errors.New("invalid time of day")

// TimeOfDay is a number of seconds since local midnight.
type TimeOfDay uint32

// NewTimeOfDay returns the [TimeOfDay] for the given components.
func NewTimeOfDay(hour, minute, second uint32) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// TimeOfDayFrom returns the [TimeOfDay] of t in t's location.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	//nolint:gosec // G115: bounded by time package.
	return NewTimeOfDay(uint32(t.Hour()), uint32(t.Minute()), uint32(t.Second()))
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	limits := []uint64{24, 60, 60}
	values := make([]uint32, 3)

	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil || v >= limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}

		values[i] = uint32(v)
	}

	return NewTimeOfDay(values[0], values[1], values[2]), nil
}

func (t TimeOfDay) Hour() uint32   { return uint32(t) / 3600 }
func (t TimeOfDay) Minute() uint32 { return uint32(t) % 3600 / 60 }
func (t TimeOfDay) Second() uint32 { return uint32(t) % 60 }

// String formats t as "HH:MM", adding seconds only when they are set.
func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}

	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
