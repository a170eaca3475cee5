package rules

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/macropower/netswitch/pkg/clock"
)

// ErrInvalidDay is returned for unrecognized weekday names.
var ErrInvalidDay = errors.New("invalid day")

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// TimeWindow is a daily time range, optionally restricted to some weekdays.
//
// A window whose start is after its end spans midnight.
type TimeWindow struct {
	// Start is the inclusive start time, "HH:MM" or "HH:MM:SS".
	Start string `json:"start" jsonschema:"title=Start,pattern=^[0-9]?[0-9]:[0-9][0-9](:[0-9][0-9])?$"`
	// End is the inclusive end time, "HH:MM" or "HH:MM:SS".
	End string `json:"end" jsonschema:"title=End,pattern=^[0-9]?[0-9]:[0-9][0-9](:[0-9][0-9])?$"`
	// Days restricts the window to the named weekdays. Empty means every day.
	Days []string `json:"days,omitempty" jsonschema:"title=Days" yaml:"days,flow,omitempty"`
}

// ParseWeekday parses a weekday name ("mon", "Monday") or number (0-7, where
// both 0 and 7 are Sunday).
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdayNames[name]; ok {
		return d, nil
	}

	n, err := strconv.Atoi(name)
	if err == nil && n >= 0 && n <= 7 {
		return time.Weekday(n % 7), nil
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// Bounds parses the start and end times.
func (w TimeWindow) Bounds() (clock.TimeOfDay, clock.TimeOfDay, error) {
	start, err := clock.ParseTimeOfDay(w.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}

	end, err := clock.ParseTimeOfDay(w.End)
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}

	return start, end, nil
}

// Weekdays parses Days.
func (w TimeWindow) Weekdays() ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(w.Days))
	for _, s := range w.Days {
		d, err := ParseWeekday(s)
		if err != nil {
			return nil, err
		}

		days = append(days, d)
	}

	return days, nil
}

// Validate checks that the times and days parse.
func (w TimeWindow) Validate() error {
	if _, _, err := w.Bounds(); err != nil {
		return err
	}

	if _, err := w.Weekdays(); err != nil {
		return err
	}

	return nil
}

// IsActive reports whether now falls inside the window. Malformed windows
// are never active.
func (w TimeWindow) IsActive(now clock.Instant) bool {
	start, end, err := w.Bounds()
	if err != nil {
		return false
	}

	days, err := w.Weekdays()
	if err != nil {
		return false
	}

	if len(days) > 0 && !slices.Contains(days, now.Weekday) {
		return false
	}

	t := now.TimeOfDay
	if start <= end {
		return t >= start && t <= end
	}

	// Overnight, e.g. 22:00 - 06:00.
	return t >= start || t <= end
}

func (w TimeWindow) String() string {
	s := w.Start + " - " + w.End
	if len(w.Days) > 0 {
		s += " (" + strings.Join(w.Days, ", ") + ")"
	}

	return s
}
