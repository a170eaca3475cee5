// Package dispatch drives schedule checks and rule evaluation on timers and
// hands the results to an [activation.Activator].
//
// The goroutine calling [Dispatcher.Run] is the only one that reads the
// tickers, checks schedules and activates profiles. Rule evaluation probes
// the network and can be slow, so it runs on a worker goroutine. At most one
// worker exists at a time and it owns the evaluator until it posts its
// result back to the control loop.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/netswitch/pkg/activation"
	"github.com/macropower/netswitch/pkg/clock"
	"github.com/macropower/netswitch/pkg/log"
	"github.com/macropower/netswitch/pkg/profile"
	"github.com/macropower/netswitch/pkg/schedule"
)

const (
	DefaultScheduleInterval = 60 * time.Second
	DefaultRuleInterval     = 30 * time.Second
)

// ErrAlreadyRunning is returned by [Dispatcher.Run] when called twice.
var ErrAlreadyRunning = errors.New("dispatcher already running")

// Evaluator selects a profile from a list.
type Evaluator interface {
	EvaluateProfiles(ctx context.Context, profiles []profile.Profile) (string, bool)
	ClearMemory()
}

// ScheduleSource provides the current set of schedules.
type ScheduleSource interface {
	CurrentSchedules() []schedule.Schedule
}

// ScheduleSourceFunc adapts a function to the [ScheduleSource] interface.
type ScheduleSourceFunc func() []schedule.Schedule

func (f ScheduleSourceFunc) CurrentSchedules() []schedule.Schedule {
	return f()
}

// StaticSchedules is a fixed list of schedules.
type StaticSchedules []schedule.Schedule

func (s StaticSchedules) CurrentSchedules() []schedule.Schedule {
	return s
}

type result struct {
	profileID string
	found     bool
}

// Dispatcher runs the schedule and rule loops.
type Dispatcher struct {
	evaluator  Evaluator
	profiles   profile.Source
	schedules  ScheduleSource
	activator  activation.Activator
	clock      clock.Clock
	tracer     trace.Tracer
	onFired    func(schedule.Schedule)
	onResult   func(profileID string, found bool)
	scheduleC  <-chan time.Time
	ruleC      <-chan time.Time
	lastMinute time.Time
	fired      map[string]struct{}
	results    chan result
	workers    sync.WaitGroup

	scheduleInterval time.Duration
	ruleInterval     time.Duration

	clearRequested atomic.Bool
	running        atomic.Bool
	inFlight       bool
	runOnStart     bool
}

// Opt configures a [Dispatcher].
type Opt func(*Dispatcher)

// WithScheduleInterval sets how often schedules are checked.
func WithScheduleInterval(d time.Duration) Opt {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.scheduleInterval = d
		}
	}
}

// WithRuleInterval sets how often rules are evaluated.
func WithRuleInterval(d time.Duration) Opt {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.ruleInterval = d
		}
	}
}

// WithScheduleTicks replaces the schedule ticker with c.
func WithScheduleTicks(c <-chan time.Time) Opt {
	return func(d *Dispatcher) {
		d.scheduleC = c
	}
}

// WithRuleTicks replaces the rule ticker with c.
func WithRuleTicks(c <-chan time.Time) Opt {
	return func(d *Dispatcher) {
		d.ruleC = c
	}
}

// WithClock sets the clock used for schedule checks.
func WithClock(c clock.Clock) Opt {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

// WithRunRulesOnStart starts a rule evaluation as soon as [Dispatcher.Run]
// is called instead of waiting for the first tick.
func WithRunRulesOnStart(enabled bool) Opt {
	return func(d *Dispatcher) {
		d.runOnStart = enabled
	}
}

// WithOnScheduleFired sets a hook called on the control goroutine after a
// one-shot schedule fires.
func WithOnScheduleFired(fn func(schedule.Schedule)) Opt {
	return func(d *Dispatcher) {
		d.onFired = fn
	}
}

// WithOnResult sets a hook called on the control goroutine with every
// evaluation result, before any activation.
func WithOnResult(fn func(profileID string, found bool)) Opt {
	return func(d *Dispatcher) {
		d.onResult = fn
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Opt {
	return func(d *Dispatcher) {
		d.tracer = tp.Tracer("dispatch")
	}
}

// New creates a [Dispatcher].
func New(
	e Evaluator,
	profiles profile.Source,
	schedules ScheduleSource,
	activator activation.Activator,
	opts ...Opt,
) *Dispatcher {
	d := &Dispatcher{
		evaluator:        e,
		profiles:         profiles,
		schedules:        schedules,
		activator:        activator,
		clock:            clock.System{},
		tracer:           otel.Tracer("dispatch"),
		fired:            map[string]struct{}{},
		scheduleInterval: DefaultScheduleInterval,
		ruleInterval:     DefaultRuleInterval,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// ProfileChanged tells the dispatcher that the active profile was changed
// outside of it. The evaluator's memory is cleared before the next
// evaluation. It is safe to call from any goroutine.
func (d *Dispatcher) ProfileChanged() {
	d.clearRequested.Store(true)
}

// Run blocks until ctx is done. It returns nil on cancellation.
//
// A result that arrives after ctx is done is discarded. Run does not wait
// for an in-flight worker; use [Dispatcher.Wait] for that.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)

	// A worker left over from a previous run still owns the evaluator.
	d.Wait()

	scheduleC, stopSchedule := d.ticks(d.scheduleC, d.scheduleInterval)
	defer stopSchedule()

	ruleC, stopRule := d.ticks(d.ruleC, d.ruleInterval)
	defer stopRule()

	d.results = make(chan result, 1)
	d.inFlight = false

	logger := d.logger(ctx)
	logger.InfoContext(ctx, "dispatcher started",
		slog.Duration("schedule_interval", d.scheduleInterval),
		slog.Duration("rule_interval", d.ruleInterval),
	)

	if d.runOnStart {
		d.startWorker(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "dispatcher stopped")

			return nil

		case <-scheduleC:
			d.checkSchedules(ctx)

		case <-ruleC:
			if d.inFlight {
				logger.DebugContext(ctx, "rule evaluation still running, skipping tick")

				continue
			}

			d.startWorker(ctx)

		case res := <-d.results:
			d.inFlight = false
			if ctx.Err() != nil {
				continue
			}

			d.handleResult(ctx, res)
		}
	}
}

// Wait blocks until no worker is running.
func (d *Dispatcher) Wait() {
	d.workers.Wait()
}

// RunOnce checks schedules and evaluates rules once on the calling
// goroutine, activating whatever is selected. It must not be called while
// [Dispatcher.Run] is active.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	if d.running.Load() {
		return ErrAlreadyRunning
	}

	d.checkSchedules(ctx)

	if d.clearRequested.Swap(false) {
		d.evaluator.ClearMemory()
	}

	id, found := d.evaluate(ctx, d.profiles.CurrentProfiles())
	if ctx.Err() != nil {
		return ctx.Err()
	}

	d.handleResult(ctx, result{profileID: id, found: found})

	return nil
}

// ticks returns c if set, or a new ticker channel for interval.
func (d *Dispatcher) ticks(c <-chan time.Time, interval time.Duration) (<-chan time.Time, func()) {
	if c != nil {
		return c, func() {}
	}

	t := time.NewTicker(interval)

	return t.C, t.Stop
}

func (d *Dispatcher) checkSchedules(ctx context.Context) {
	now := d.clock.Now()

	minute := now.Truncate(time.Minute)
	if minute.Equal(d.lastMinute) {
		return
	}
	d.lastMinute = minute

	ctx, span := d.tracer.Start(ctx, "check schedules")
	defer span.End()

	logger := d.logger(ctx)

	for _, s := range schedule.Due(d.schedules.CurrentSchedules(), clock.FromTime(now)) {
		if s.OneShot {
			if _, ok := d.fired[s.Key()]; ok {
				continue
			}
			d.fired[s.Key()] = struct{}{}
		}

		logger.InfoContext(ctx, "schedule triggered",
			slog.String("schedule", s.Key()),
			slog.String("profile", s.ProfileID),
		)
		span.AddEvent("schedule triggered", trace.WithAttributes(
			attribute.String("schedule", s.Key()),
			attribute.String("profile", s.ProfileID),
		))

		d.activate(ctx, s.ProfileID, activation.TriggerSchedule)

		if s.OneShot && d.onFired != nil {
			d.onFired(s)
		}
	}
}

func (d *Dispatcher) startWorker(ctx context.Context) {
	profiles := d.profiles.CurrentProfiles()
	clearMemory := d.clearRequested.Swap(false)
	results := d.results

	d.inFlight = true
	d.workers.Add(1)

	go func() {
		defer d.workers.Done()

		if clearMemory {
			d.evaluator.ClearMemory()
		}

		id, found := d.evaluate(ctx, profiles)

		results <- result{profileID: id, found: found}
	}()
}

func (d *Dispatcher) evaluate(ctx context.Context, profiles []profile.Profile) (string, bool) {
	ctx, span := d.tracer.Start(ctx, "evaluate rules",
		trace.WithAttributes(attribute.Int("profiles", len(profiles))),
	)
	defer span.End()

	id, found := d.evaluator.EvaluateProfiles(ctx, profiles)
	if found {
		span.SetAttributes(attribute.String("selected", id))
	}

	return id, found
}

func (d *Dispatcher) handleResult(ctx context.Context, res result) {
	if d.onResult != nil {
		d.onResult(res.profileID, res.found)
	}

	if !res.found {
		d.logger(ctx).DebugContext(ctx, "no profile change from rules")

		return
	}

	d.logger(ctx).InfoContext(ctx, "rules selected profile", slog.String("profile", res.profileID))
	d.activate(ctx, res.profileID, activation.TriggerRules)
}

func (d *Dispatcher) activate(ctx context.Context, profileID string, trigger activation.Trigger) {
	err := d.activator.Activate(ctx, profileID, trigger)
	if err != nil {
		d.logger(ctx).WarnContext(ctx, "activate profile",
			slog.String("profile", profileID),
			slog.String("trigger", string(trigger)),
			slog.Any("error", err),
		)
	}
}

func (d *Dispatcher) logger(ctx context.Context) *slog.Logger {
	return log.WithContext(ctx).With(slog.String("component", "dispatch"))
}
