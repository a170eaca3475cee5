// Package clock provides the wall-clock components used by schedule matching
// and time window conditions.
package clock

import "time"

// Clock returns the current local time.
type Clock interface {
	Now() time.Time
}

// Instant holds the local wall-clock components of a point in time.
type Instant struct {
	TimeOfDay  TimeOfDay
	Minute     uint32
	Hour       uint32
	DayOfMonth uint32
	Month      uint32
	// Weekday counts from Sunday (0) to Saturday (6).
	Weekday time.Weekday
}

// FromTime extracts an [Instant] from t in t's location.
func FromTime(t time.Time) Instant {
	return Instant{
		Minute:     uint32(t.Minute()), //nolint:gosec // G115: bounded by time package.
		Hour:       uint32(t.Hour()),   //nolint:gosec // G115: bounded by time package.
		DayOfMonth: uint32(t.Day()),    //nolint:gosec // G115: bounded by time package.
		Month:      uint32(t.Month()),  //nolint:gosec // G115: bounded by time package.
		Weekday:    t.Weekday(),
		TimeOfDay:  TimeOfDayFrom(t),
	}
}

// Now returns the current [Instant] of c.
func Now(c Clock) Instant {
	return FromTime(c.Now())
}

// System reads the local system clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same time.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Func adapts a function to the [Clock] interface.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}
