package evaluator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/netswitch/pkg/probe"
	"github.com/macropower/netswitch/pkg/profile"
	"github.com/macropower/netswitch/pkg/rules"
)

// ConditionResult is the outcome of one condition.
type ConditionResult struct {
	Error       error
	Description string
	Duration    time.Duration
	Matched     bool
}

// ProfileReport is the outcome of one profile's rule set.
type ProfileReport struct {
	ProfileID  string
	Name       string
	Operator   rules.Operator
	Conditions []ConditionResult
	Duration   time.Duration
	Priority   int32
	Matched    bool
}

// Report is the outcome of an [Evaluator.Explain] pass.
type Report struct {
	// Selected is the profile an evaluation pass would pick, ignoring the
	// last selected profile.
	Selected string
	Profiles []ProfileReport
	Snapshot probe.Snapshot
}

// Explain evaluates every condition of every eligible profile, in priority
// order, without short-circuiting. It does not change the last selected
// profile.
func (e *Evaluator) Explain(ctx context.Context, profiles []profile.Profile) Report {
	ctx, span := e.tracer.Start(ctx, "explain", trace.WithAttributes(
		attribute.Int("profiles", len(profiles)),
	))
	defer span.End()

	e.refreshSnapshot(ctx)

	report := Report{Snapshot: e.snapshot}

	for _, p := range eligible(profiles) {
		start := time.Now()
		rs := p.AutoSwitch
		or := rs.Op() == rules.OperatorOr

		pr := ProfileReport{
			ProfileID: p.ID,
			Name:      p.DisplayName(),
			Priority:  rs.Priority,
			Operator:  rs.Op(),
			Matched:   !or,
		}

		for _, c := range rs.Conditions {
			cStart := time.Now()
			ok, err := e.evaluateCondition(ctx, c)

			pr.Conditions = append(pr.Conditions, ConditionResult{
				Description: c.Description(),
				Matched:     ok,
				Error:       err,
				Duration:    time.Since(cStart),
			})

			if or {
				pr.Matched = pr.Matched || ok
			} else {
				pr.Matched = pr.Matched && ok
			}
		}

		pr.Duration = time.Since(start)

		if pr.Matched && report.Selected == "" {
			report.Selected = p.ID
		}

		report.Profiles = append(report.Profiles, pr)
	}

	return report
}
