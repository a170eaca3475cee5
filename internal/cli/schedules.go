package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/macropower/netswitch/pkg/schedule"
)

func NewSchedulesCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "List schedules and when they trigger next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := ra.openStore()
			if err != nil {
				return err
			}

			cfg := store.Current()
			if !cfg.SchedulingEnabled() {
				fmt.Fprintln(cmd.ErrOrStderr(), "scheduling is disabled in the configuration") //nolint:errcheck // Best effort.
			}

			return renderSchedules(cmd.OutOrStdout(), cfg.Schedules, time.Now())
		},
	}

	return cmd
}

// nextTrigger describes when s triggers next after now.
func nextTrigger(s schedule.Schedule, now time.Time) string {
	if !s.IsEnabled() {
		return "disabled"
	}

	next, err := schedule.Next(s, now)
	if errors.Is(err, schedule.ErrNoNextTrigger) {
		return "never"
	}
	if err != nil {
		return "invalid: " + err.Error()
	}

	return fmt.Sprintf("%s (%s)", next.Format("Mon Jan 2 15:04"), humanize.RelTime(next, now, "ago", "from now"))
}

func renderSchedules(w io.Writer, schedules []schedule.Schedule, now time.Time) error {
	st := newStyles(w)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "PROFILE", "CRON", "ONE SHOT", "NEXT").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.Header
			}

			return st.Cell
		})

	for _, s := range schedules {
		oneShot := "no"
		if s.OneShot {
			oneShot = "yes"
		}

		t.Row(s.Key(), s.ProfileID, s.CronExpression, oneShot, nextTrigger(s, now))
	}

	_, err := fmt.Fprintln(w, t.Render())
	if err != nil {
		return fmt.Errorf("write schedules: %w", err)
	}

	return nil
}
