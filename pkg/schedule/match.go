package schedule

import (
	"strconv"
	"strings"

	"github.com/macropower/netswitch/pkg/clock"
)

// MatchesField reports whether value satisfies a single cron field.
// Malformed fields never match.
func MatchesField(field string, value uint32) bool {
	switch {
	case field == "*":
		return true

	case strings.Contains(field, ","):
		for part := range strings.SplitSeq(field, ",") {
			if MatchesField(part, value) {
				return true
			}
		}

		return false

	case strings.HasPrefix(field, "*/"):
		step, ok := parseUint(field[2:])
		return ok && step > 0 && value%step == 0

	case strings.Contains(field, "-"):
		lo, hi, found := strings.Cut(field, "-")
		if !found {
			return false
		}

		start, ok := parseUint(lo)
		if !ok {
			return false
		}

		end, ok := parseUint(hi)
		if !ok {
			return false
		}

		return value >= start && value <= end
	}

	n, ok := parseUint(field)

	return ok && n == value
}

// ShouldTrigger reports whether s is enabled and every field of its
// expression matches now.
func ShouldTrigger(s Schedule, now clock.Instant) bool {
	if !s.IsEnabled() {
		return false
	}

	fields := s.Fields()
	if len(fields) != FieldCount {
		return false
	}

	values := [FieldCount]uint32{
		now.Minute,
		now.Hour,
		now.DayOfMonth,
		now.Month,
		uint32(now.Weekday), //nolint:gosec // G115: weekday is 0-6.
	}

	for i, f := range fields {
		if !MatchesField(f, values[i]) {
			return false
		}
	}

	return true
}

// Due returns the schedules that trigger at now, in input order.
func Due(schedules []Schedule, now clock.Instant) []Schedule {
	var due []Schedule

	for _, s := range schedules {
		if ShouldTrigger(s, now) {
			due = append(due, s)
		}
	}

	return due
}

// CheckSchedules returns the profile IDs of every schedule that triggers at
// now, in input order. Duplicates are kept.
func CheckSchedules(schedules []Schedule, now clock.Instant) []string {
	var ids []string

	for _, s := range Due(schedules, now) {
		ids = append(ids, s.ProfileID)
	}

	return ids
}

// validField reports whether f uses only the supported grammar.
func validField(f string) bool {
	if f == "*" {
		return true
	}

	if strings.Contains(f, ",") {
		for part := range strings.SplitSeq(f, ",") {
			if !validField(part) {
				return false
			}
		}

		return true
	}

	if rest, ok := strings.CutPrefix(f, "*/"); ok {
		step, ok := parseUint(rest)
		return ok && step > 0
	}

	if lo, hi, ok := strings.Cut(f, "-"); ok {
		_, okLo := parseUint(lo)
		_, okHi := parseUint(hi)

		return okLo && okHi
	}

	_, ok := parseUint(f)

	return ok
}

func parseUint(s string) (uint32, bool) {
	if s == "" || s[0] == '+' {
		return 0, false
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}

	return uint32(n), true
}
