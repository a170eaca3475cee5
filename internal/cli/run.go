package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/netswitch/pkg/config"
	"github.com/macropower/netswitch/pkg/dispatch"
	"github.com/macropower/netswitch/pkg/schedule"
)

const runExamples = `  # Run the engine with the default configuration file:
  netswitch run

  # Log what would be activated without running any command:
  netswitch run --dry-run --log-level debug

  # Check schedules and rules once, then exit:
  netswitch run --once`

type RunArgs struct {
	*RootArgs

	Once    bool
	DryRun  bool
	NoWatch bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{RootArgs: rootArgs}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&ra.Once, "once", false, "Check schedules and evaluate rules once, then exit")
	cmd.Flags().BoolVar(&ra.DryRun, "dry-run", false, "Log activations instead of running the activation command")
	cmd.Flags().BoolVar(&ra.NoWatch, "no-watch", false, "Do not reload the configuration file when it changes")
}

func NewRunCmd(rootArgs *RootArgs) *cobra.Command {
	ra := NewRunArgs(rootArgs)

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the schedule and rule loops",
		Example: runExamples,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTracing(cmd.Context(), ra.RootArgs, func(ctx context.Context) error {
				return run(ctx, ra)
			})
		},
	}
	ra.AddFlags(cmd)

	return cmd
}

func run(ctx context.Context, ra *RunArgs) error {
	var d *dispatch.Dispatcher

	store, err := ra.openStore(config.WithOnChange(func(*config.Config) {
		// Patterns and the last selection may no longer apply.
		if d != nil {
			d.ProfileChanged()
		}
	}))
	if err != nil {
		return err
	}

	cfg := store.Current()
	p := newProbe(cfg)

	d = dispatch.New(
		newEvaluator(cfg, p),
		store,
		store,
		newActivator(store, ra.DryRun),
		dispatch.WithScheduleInterval(cfg.Engine.ScheduleInterval()),
		dispatch.WithRuleInterval(cfg.Engine.RuleInterval()),
		dispatch.WithRunRulesOnStart(*cfg.Engine.EvaluateOnStart),
		dispatch.WithOnScheduleFired(func(s schedule.Schedule) {
			if ra.DryRun {
				return
			}

			err := store.DisableSchedule(ctx, s.Key())
			if err != nil {
				slog.WarnContext(ctx, "disable one-shot schedule",
					slog.String("schedule", s.Key()),
					slog.Any("error", err),
				)
			}
		}),
	)

	if ra.Once {
		return d.RunOnce(ctx)
	}

	if !ra.NoWatch {
		go func() {
			err := store.Watch(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "config watcher stopped", slog.Any("error", err))
			}
		}()
	}

	slog.InfoContext(ctx, "loaded configuration",
		slog.String("path", store.Path()),
		slog.Int("profiles", len(cfg.Profiles)),
		slog.Int("schedules", len(cfg.Schedules)),
		slog.Bool("dry_run", ra.DryRun),
	)

	err = d.Run(ctx)
	d.Wait()

	return err
}
