package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// FieldCount is the number of fields in a cron expression.
const FieldCount = 5

var (
	// ErrFieldCount is returned when an expression does not have five fields.
	ErrFieldCount = errors.New("cron expression must have 5 fields")
	// ErrInvalidField is returned when a field uses unsupported syntax.
	ErrInvalidField = errors.New("invalid cron field")
	// ErrMissingProfile is returned when a schedule has no profile ID.
	ErrMissingProfile = errors.New("missing profile id")
)

var fieldNames = [FieldCount]string{"minute", "hour", "day of month", "month", "day of week"}

// Schedule activates a profile whenever its cron expression matches.
type Schedule struct {
	// Enabled defaults to true when unset.
	Enabled *bool `json:"enabled,omitempty" jsonschema:"title=Enabled,default=true"`
	// ID identifies the schedule.
	ID string `json:"id,omitempty" jsonschema:"title=ID"`
	// ProfileID is the profile to activate.
	ProfileID string `json:"profileId" jsonschema:"title=Profile ID"`
	// CronExpression is "minute hour day-of-month month day-of-week".
	// Day of week counts from Sunday (0).
	CronExpression string `json:"cronExpression" jsonschema:"title=Cron Expression"`
	// Description is free text shown in listings.
	Description string `json:"description,omitempty" jsonschema:"title=Description"`
	// OneShot schedules fire at most once.
	OneShot bool `json:"oneShot,omitempty" jsonschema:"title=One Shot"`
}

// New creates an enabled [Schedule].
func New(id, profileID, expr string) Schedule {
	enabled := true

	return Schedule{
		ID:             id,
		ProfileID:      profileID,
		CronExpression: expr,
		Enabled:        &enabled,
	}
}

// IsEnabled reports whether the schedule is enabled.
func (s Schedule) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// SetEnabled sets the enabled flag.
func (s *Schedule) SetEnabled(enabled bool) {
	s.Enabled = &enabled
}

// Key returns the ID, or a key derived from the profile and expression when
// the ID is empty.
func (s Schedule) Key() string {
	if s.ID != "" {
		return s.ID
	}

	return s.ProfileID + "@" + s.CronExpression
}

// Fields splits the expression on whitespace.
func (s Schedule) Fields() []string {
	return strings.Fields(s.CronExpression)
}

// Validate reports whether the schedule would ever be able to match. It is
// intended for configuration checks; matching itself treats a bad schedule
// as never due.
func (s Schedule) Validate() error {
	if s.ProfileID == "" {
		return fmt.Errorf("schedule %q: %w", s.Key(), ErrMissingProfile)
	}

	fields := s.Fields()
	if len(fields) != FieldCount {
		return fmt.Errorf("schedule %q: %w, got %d", s.Key(), ErrFieldCount, len(fields))
	}

	for i, f := range fields {
		if !validField(f) {
			return fmt.Errorf("schedule %q: %w: %s %q", s.Key(), ErrInvalidField, fieldNames[i], f)
		}
	}

	if _, err := parser.Parse(s.CronExpression); err != nil {
		return fmt.Errorf("schedule %q: %w: %w", s.Key(), ErrInvalidField, err)
	}

	return nil
}

func (s Schedule) String() string {
	if s.Description != "" {
		return fmt.Sprintf("%s (%s): %s", s.Key(), s.CronExpression, s.Description)
	}

	return fmt.Sprintf("%s (%s)", s.Key(), s.CronExpression)
}
