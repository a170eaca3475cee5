// Package activation hands selected profile IDs to whatever applies them.
package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/macropower/netswitch/pkg/execs"
	"github.com/macropower/netswitch/pkg/log"
)

// DefaultTimeout bounds a single activation command.
const DefaultTimeout = 30 * time.Second

// ErrNoCommand is returned when no activation command is configured.
var ErrNoCommand = errors.New("no activation command")

// Trigger says why a profile is being activated.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerRules    Trigger = "rules"
	TriggerManual   Trigger = "manual"
)

// Activator applies a profile.
type Activator interface {
	Activate(ctx context.Context, profileID string, trigger Trigger) error
}

// Func adapts a function to the [Activator] interface.
type Func func(ctx context.Context, profileID string, trigger Trigger) error

func (f Func) Activate(ctx context.Context, profileID string, trigger Trigger) error {
	return f(ctx, profileID, trigger)
}

// Logger only logs activations.
type Logger struct{}

func (Logger) Activate(ctx context.Context, profileID string, trigger Trigger) error {
	log.WithContext(ctx).InfoContext(ctx, "activate profile (dry run)",
		slog.String("profile", profileID),
		slog.String("trigger", string(trigger)),
	)

	return nil
}

// CommandLookup returns the command line template for a profile, or an
// empty string if none is configured.
type CommandLookup func(profileID string) string

// Command runs a shell-style command line to apply a profile.
//
// The command line is split into words first; "{profile}" and "{trigger}"
// are then replaced inside each word, so substituted values never change
// word boundaries. The child also receives NETSWITCH_PROFILE and
// NETSWITCH_TRIGGER in its environment. No shell is involved.
type Command struct {
	runner  execs.Runner
	lookup  CommandLookup
	env     []string
	timeout time.Duration
}

// CommandOpt configures a [Command].
type CommandOpt func(*Command)

// WithRunner sets the command runner.
func WithRunner(r execs.Runner) CommandOpt {
	return func(c *Command) {
		c.runner = r
	}
}

// WithTimeout sets the maximum run time of one activation.
func WithTimeout(d time.Duration) CommandOpt {
	return func(c *Command) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithEnv sets the base environment. Defaults to [os.Environ].
func WithEnv(env []string) CommandOpt {
	return func(c *Command) {
		c.env = env
	}
}

// NewCommand creates a [Command] activator.
func NewCommand(lookup CommandLookup, opts ...CommandOpt) *Command {
	c := &Command{
		runner:  execs.NewExecutor(),
		lookup:  lookup,
		env:     os.Environ(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Build returns the command that would activate profileID.
func (c *Command) Build(profileID string, trigger Trigger) (execs.Command, error) {
	line := strings.TrimSpace(c.lookup(profileID))
	if line == "" {
		return execs.Command{}, fmt.Errorf("profile %q: %w", profileID, ErrNoCommand)
	}

	words, err := shellwords.Parse(line)
	if err != nil {
		return execs.Command{}, fmt.Errorf("parse command %q: %w", line, err)
	}
	if len(words) == 0 {
		return execs.Command{}, fmt.Errorf("profile %q: %w", profileID, ErrNoCommand)
	}

	r := strings.NewReplacer("{profile}", profileID, "{trigger}", string(trigger))
	for i, w := range words {
		words[i] = r.Replace(w)
	}

	cmd := execs.NewCommand(c.env, words[0], words[1:]...)
	cmd.AddEnvVar("NETSWITCH_PROFILE", profileID)
	cmd.AddEnvVar("NETSWITCH_TRIGGER", string(trigger))

	return cmd, nil
}

// Activate runs the activation command for profileID.
func (c *Command) Activate(ctx context.Context, profileID string, trigger Trigger) error {
	cmd, err := c.Build(profileID, trigger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logger := log.WithContext(ctx).With(
		slog.String("profile", profileID),
		slog.String("trigger", string(trigger)),
	)

	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		attrs := []any{slog.Any("error", err)}
		if res != nil && res.Stderr != "" {
			attrs = append(attrs, slog.String("stderr", strings.TrimSpace(res.Stderr)))
		}

		logger.ErrorContext(ctx, "activation failed", attrs...)

		return fmt.Errorf("activate %q: %w", profileID, err)
	}

	logger.InfoContext(ctx, "profile activated")

	return nil
}
