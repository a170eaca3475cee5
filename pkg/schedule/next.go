package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/macropower/netswitch/pkg/clock"
)

// ErrNoNextTrigger is returned when no upcoming trigger time can be found.
var ErrNoNextTrigger = errors.New("no upcoming trigger")

// maxCandidates bounds the search in [Next].
const maxCandidates = 2048

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// fieldBounds are the inclusive value ranges of each field.
var fieldBounds = [FieldCount][2]uint32{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}

// Next returns the first minute after from at which s triggers.
//
// Each field is expanded to the values [MatchesField] accepts before it is
// handed to the standard cron parser, whose steps count from the start of
// the range instead of from zero. The parser treats a restricted
// day-of-month and day-of-week as alternatives, so each candidate is then
// checked with [ShouldTrigger], where all fields must match.
func Next(s Schedule, from time.Time) (time.Time, error) {
	if !s.IsEnabled() {
		return time.Time{}, fmt.Errorf("schedule %q: disabled", s.Key())
	}

	spec, err := expand(s)
	if err != nil {
		return time.Time{}, err
	}

	sched, err := parser.Parse(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s.CronExpression, err)
	}

	t := from
	for range maxCandidates {
		t = sched.Next(t)
		if t.IsZero() {
			break
		}

		if ShouldTrigger(s, clock.FromTime(t)) {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("schedule %q: %w", s.Key(), ErrNoNextTrigger)
}

// expand rewrites the expression of s as explicit value lists.
func expand(s Schedule) (string, error) {
	fields := s.Fields()
	if len(fields) != FieldCount {
		return "", fmt.Errorf("schedule %q: %w, got %d", s.Key(), ErrFieldCount, len(fields))
	}

	out := make([]string, FieldCount)

	for i, f := range fields {
		if !validField(f) {
			return "", fmt.Errorf("schedule %q: %w: %s %q", s.Key(), ErrInvalidField, fieldNames[i], f)
		}

		if f == "*" {
			out[i] = f
			continue
		}

		var values []string

		for v := fieldBounds[i][0]; v <= fieldBounds[i][1]; v++ {
			if MatchesField(f, v) {
				values = append(values, strconv.FormatUint(uint64(v), 10))
			}
		}

		if len(values) == 0 {
			return "", fmt.Errorf("schedule %q: %s %q: %w", s.Key(), fieldNames[i], f, ErrNoNextTrigger)
		}

		out[i] = strings.Join(values, ",")
	}

	return strings.Join(out, " "), nil
}
