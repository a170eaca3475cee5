package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTime parses "HH:MM" into its hour and minute.
func ParseTime(s string) (uint32, uint32, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}

	hour, err := strconv.ParseUint(h, 10, 32)
	if err != nil || hour >= 24 {
		return 0, 0, false
	}

	minute, err := strconv.ParseUint(m, 10, 32)
	if err != nil || minute >= 60 {
		return 0, 0, false
	}

	return uint32(hour), uint32(minute), true
}

// DailyAt returns an expression that triggers every day at hour:minute.
func DailyAt(hour, minute uint32) string {
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// WeekdaysAt returns an expression that triggers at hour:minute on the given
// days. With no days it is equivalent to [DailyAt].
func WeekdaysAt(hour, minute uint32, days ...time.Weekday) string {
	if len(days) == 0 {
		return DailyAt(hour, minute)
	}

	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}

	return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(parts, ","))
}
