package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/macropower/netswitch/pkg/clock"
	"github.com/macropower/netswitch/pkg/probe"
	"github.com/macropower/netswitch/pkg/rules"
)

var (
	// ErrNoSSID is reported when no Wi-Fi network is connected.
	ErrNoSSID = errors.New("no ssid")
	// ErrNoGateway is reported when the gateway MAC is unknown.
	ErrNoGateway = errors.New("no gateway mac")
	// ErrMalformedCondition is reported for conditions missing required data.
	ErrMalformedCondition = errors.New("malformed condition")
)

// evaluateCondition evaluates c against the current snapshot. The boolean is
// the result; the error only explains a failed read or bad pattern.
func (e *Evaluator) evaluateCondition(ctx context.Context, c rules.Condition) (bool, error) {
	switch c.Type {
	case rules.TypeWifiSSID:
		return e.matchSSID(ctx, c)

	case rules.TypeGatewayMAC:
		if e.snapshot.GatewayMAC == "" {
			return false, ErrNoGateway
		}

		return strings.EqualFold(probe.NormalizeMAC(c.MAC), e.snapshot.GatewayMAC), nil

	case rules.TypePingTarget:
		wait := c.PingTimeout()

		ctx, cancel := context.WithTimeout(ctx, wait+e.probeTimeout)
		defer cancel()

		ok, err := e.probe.Ping(ctx, c.Host, wait)
		if err != nil {
			return false, fmt.Errorf("ping %s: %w", c.Host, err)
		}

		return ok, nil

	case rules.TypeInterfaceState:
		return e.matchInterface(ctx, c)

	case rules.TypeTimeWindow:
		if c.Window == nil {
			return false, ErrMalformedCondition
		}

		return c.Window.IsActive(clock.Now(e.clock)), nil

	case rules.TypeNetworkAvailable:
		ctx, cancel := context.WithTimeout(ctx, e.probeTimeout)
		defer cancel()

		ok, err := e.probe.NetworkAvailable(ctx)
		if err != nil {
			return false, fmt.Errorf("network available: %w", err)
		}

		return ok, nil

	case rules.TypeNot:
		if c.Condition == nil {
			return false, ErrMalformedCondition
		}

		ok, err := e.evaluateCondition(ctx, *c.Condition)

		return !ok, err
	}

	return false, fmt.Errorf("%w: %q", rules.ErrUnknownConditionType, c.Type)
}

func (e *Evaluator) matchSSID(ctx context.Context, c rules.Condition) (bool, error) {
	ssid := e.snapshot.SSID
	if ssid == "" {
		return false, ErrNoSSID
	}

	if !c.Regex && !strings.Contains(c.SSID, "*") {
		return ssid == c.SSID, nil
	}

	m, err := e.patterns.Get(c.SSID, c.Regex)
	if err != nil {
		e.logger(ctx).WarnContext(ctx, "invalid ssid pattern",
			slog.String("pattern", c.SSID),
			slog.Bool("regex", c.Regex),
			slog.Any("error", err),
		)

		return false, err
	}

	return m.Match(ssid), nil
}

func (e *Evaluator) matchInterface(ctx context.Context, c rules.Condition) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	st, err := e.probe.InterfaceStatus(ctx, c.Interface)
	if err != nil {
		err = fmt.Errorf("interface %s: %w", c.Interface, err)
	}

	switch c.State {
	case rules.StateUp:
		return err == nil && st.Up(), err
	case rules.StateDown:
		return err == nil && st.Down(), err
	case rules.StateCarrier:
		return err == nil && st.HasCarrier(), err
	case rules.StateNoCarrier:
		// An unreadable carrier counts as no carrier.
		return err != nil || !st.HasCarrier(), err
	}

	return false, fmt.Errorf("%w: %q", rules.ErrInvalidState, c.State)
}

// evaluateRuleSet applies the rule set's operator with short-circuiting.
func (e *Evaluator) evaluateRuleSet(ctx context.Context, rs *rules.RuleSet) bool {
	if rs.IsEmpty() {
		return false
	}

	logger := e.logger(ctx)
	or := rs.Op() == rules.OperatorOr

	for _, c := range rs.Conditions {
		ok, err := e.evaluateCondition(ctx, c)
		if err != nil {
			logger.DebugContext(ctx, "condition error",
				slog.String("condition", c.Description()),
				slog.Any("error", err),
			)
		}

		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}

	return !or
}
