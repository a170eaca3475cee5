package rules_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/netswitch/pkg/clock"
	"github.com/macropower/netswitch/pkg/rules"
)

func at(hour, minute uint32, day time.Weekday) clock.Instant {
	return clock.Instant{
		Hour:      hour,
		Minute:    minute,
		Weekday:   day,
		TimeOfDay: clock.NewTimeOfDay(hour, minute, 0),
	}
}

func TestTimeWindowIsActive(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		window rules.TimeWindow
		now    clock.Instant
		want   bool
	}{
		"inside day window": {
			window: rules.TimeWindow{Start: "09:00", End: "17:00"},
			now:    at(12, 0, time.Wednesday),
			want:   true,
		},
		"start is inclusive": {
			window: rules.TimeWindow{Start: "09:00", End: "17:00"},
			now:    at(9, 0, time.Wednesday),
			want:   true,
		},
		"end is inclusive": {
			window: rules.TimeWindow{Start: "09:00", End: "17:00"},
			now:    at(17, 0, time.Wednesday),
			want:   true,
		},
		"outside day window": {
			window: rules.TimeWindow{Start: "09:00", End: "17:00"},
			now:    at(18, 0, time.Wednesday),
		},
		"overnight late": {
			window: rules.TimeWindow{Start: "22:00", End: "06:00"},
			now:    at(23, 0, time.Monday),
			want:   true,
		},
		"overnight early": {
			window: rules.TimeWindow{Start: "22:00", End: "06:00"},
			now:    at(3, 0, time.Monday),
			want:   true,
		},
		"overnight midday": {
			window: rules.TimeWindow{Start: "22:00", End: "06:00"},
			now:    at(12, 0, time.Monday),
		},
		"day restricted match": {
			window: rules.TimeWindow{Start: "09:00", End: "17:00", Days: []string{"mon", "tue"}},
			now:    at(10, 0, time.Tuesday),
			want:   true,
		},
		"day restricted miss": {
			window: rules.TimeWindow{Start: "09:00", End: "17:00", Days: []string{"mon", "tue"}},
			now:    at(10, 0, time.Saturday),
		},
		"numeric sunday": {
			window: rules.TimeWindow{Start: "00:00", End: "23:59", Days: []string{"7"}},
			now:    at(10, 0, time.Sunday),
			want:   true,
		},
		"malformed start": {
			window: rules.TimeWindow{Start: "nine", End: "17:00"},
			now:    at(10, 0, time.Monday),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.window.IsActive(tc.now))
		})
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]time.Weekday{
		"sun":      time.Sunday,
		"Monday":   time.Monday,
		" WED ":    time.Wednesday,
		"0":        time.Sunday,
		"6":        time.Saturday,
		"7":        time.Sunday,
		"saturday": time.Saturday,
	} {
		got, err := rules.ParseWeekday(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := rules.ParseWeekday("8")
	require.ErrorIs(t, err, rules.ErrInvalidDay)
}
