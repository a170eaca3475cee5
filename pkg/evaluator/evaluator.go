package evaluator

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/netswitch/pkg/clock"
	"github.com/macropower/netswitch/pkg/log"
	"github.com/macropower/netswitch/pkg/probe"
	"github.com/macropower/netswitch/pkg/profile"
)

// DefaultProbeTimeout bounds each probe call other than ping.
const DefaultProbeTimeout = 5 * time.Second

// Evaluator selects the highest-priority profile whose rule set matches.
type Evaluator struct {
	probe        probe.NetworkProbe
	clock        clock.Clock
	tracer       trace.Tracer
	patterns     *PatternCache
	lastSelected string
	snapshot     probe.Snapshot
	probeTimeout time.Duration
	hasLast      bool
}

// Opt configures an [Evaluator].
type Opt func(*Evaluator)

// WithClock sets the clock used by time window conditions.
func WithClock(c clock.Clock) Opt {
	return func(e *Evaluator) {
		e.clock = c
	}
}

// WithProbeTimeout sets the timeout for each probe call. Ping calls get their
// own wait on top of this.
func WithProbeTimeout(d time.Duration) Opt {
	return func(e *Evaluator) {
		if d > 0 {
			e.probeTimeout = d
		}
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Opt {
	return func(e *Evaluator) {
		e.tracer = tp.Tracer("evaluator")
	}
}

// WithMaxPatternProgramSize sets the instruction limit for SSID regexes.
func WithMaxPatternProgramSize(n int) Opt {
	return func(e *Evaluator) {
		e.patterns = NewPatternCache(n)
	}
}

// New creates an [Evaluator] reading the environment from p.
func New(p probe.NetworkProbe, opts ...Opt) *Evaluator {
	e := &Evaluator{
		probe:        p,
		clock:        clock.System{},
		tracer:       otel.Tracer("evaluator"),
		patterns:     NewPatternCache(MaxPatternProgramSize),
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// EvaluateProfiles runs one evaluation pass and returns the ID of the
// matching profile with the highest priority. Ties keep input order.
//
// It returns false when nothing matches, when the winner is the profile
// selected by the previous pass, or when ctx ends during the pass.
func (e *Evaluator) EvaluateProfiles(ctx context.Context, profiles []profile.Profile) (string, bool) {
	ctx, span := e.tracer.Start(ctx, "evaluate", trace.WithAttributes(
		attribute.Int("profiles", len(profiles)),
	))
	defer span.End()

	logger := e.logger(ctx)

	e.refreshSnapshot(ctx)

	var (
		winner string
		found  bool
	)

	for _, p := range eligible(profiles) {
		if ctx.Err() != nil {
			break
		}

		if e.evaluateRuleSet(ctx, p.AutoSwitch) {
			winner, found = p.ID, true

			break
		}
	}

	if ctx.Err() != nil {
		logger.DebugContext(ctx, "evaluation interrupted", slog.Any("error", ctx.Err()))

		return "", false
	}

	if !found {
		logger.DebugContext(ctx, "no rule set matched")

		return "", false
	}

	span.SetAttributes(attribute.String("matched", winner))

	if e.hasLast && winner == e.lastSelected {
		logger.DebugContext(ctx, "matched profile already selected", slog.String("profile", winner))

		return "", false
	}

	e.lastSelected, e.hasLast = winner, true

	logger.InfoContext(ctx, "rule set matched", slog.String("profile", winner))

	return winner, true
}

// ClearMemory forgets the last selected profile and every compiled pattern.
func (e *Evaluator) ClearMemory() {
	e.lastSelected, e.hasLast = "", false
	e.patterns.Clear()
}

// LastSelected returns the profile selected by the latest successful pass.
func (e *Evaluator) LastSelected() (string, bool) {
	return e.lastSelected, e.hasLast
}

// Snapshot returns the network snapshot taken by the latest pass.
func (e *Evaluator) Snapshot() probe.Snapshot {
	return e.snapshot
}

// Patterns returns the pattern cache.
func (e *Evaluator) Patterns() *PatternCache {
	return e.patterns
}

func (e *Evaluator) refreshSnapshot(ctx context.Context) {
	snap, err := probe.TakeSnapshot(ctx, e.probe, e.probeTimeout)
	if err != nil {
		e.logger(ctx).DebugContext(ctx, "incomplete network snapshot", slog.Any("error", err))
	}

	e.snapshot = snap
}

func (e *Evaluator) logger(ctx context.Context) *slog.Logger {
	return log.WithContext(ctx).With(slog.String("component", "evaluator"))
}

// eligible returns the profiles with an enabled, non-empty rule set, sorted
// by descending priority. The sort is stable.
func eligible(profiles []profile.Profile) []profile.Profile {
	out := make([]profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.AutoSwitch.Eligible() {
			out = append(out, p)
		}
	}

	slices.SortStableFunc(out, func(a, b profile.Profile) int {
		return cmp.Compare(b.AutoSwitch.Priority, a.AutoSwitch.Priority)
	})

	return out
}
