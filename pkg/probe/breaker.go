package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultFailureThreshold = 3
	DefaultOpenTimeout      = 60 * time.Second
)

var errUnreachable = errors.New("unreachable")

// BreakerSettings configures [Breaker].
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failed pings that opens
	// the circuit for a host. Zero disables the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long an open circuit short-circuits pings before a
	// trial ping is allowed.
	OpenTimeout time.Duration
}

// Breaker wraps a [NetworkProbe] with a circuit breaker per ping target, so
// that a host that keeps timing out does not stall every evaluation pass.
type Breaker struct {
	NetworkProbe

	breakers map[string]*gobreaker.CircuitBreaker
	settings BreakerSettings
	mu       sync.Mutex
}

// NewBreaker wraps p.
func NewBreaker(p NetworkProbe, settings BreakerSettings) *Breaker {
	return &Breaker{
		NetworkProbe: p,
		settings:     settings,
		breakers:     make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Ping pings host through its circuit breaker. While the circuit is open the
// host is reported unreachable along with [gobreaker.ErrOpenState].
func (b *Breaker) Ping(ctx context.Context, host string, timeout time.Duration) (bool, error) {
	if b.settings.FailureThreshold == 0 {
		return b.NetworkProbe.Ping(ctx, host, timeout)
	}

	out, err := b.get(host).Execute(func() (any, error) {
		ok, err := b.NetworkProbe.Ping(ctx, host, timeout)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, errUnreachable
		}

		return true, nil
	})

	switch {
	case err == nil:
		ok, _ := out.(bool)
		return ok, nil
	case errors.Is(err, errUnreachable):
		return false, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false, fmt.Errorf("ping %s: %w", host, err)
	}

	return false, err
}

// State returns the circuit state for host.
func (b *Breaker) State(host string) gobreaker.State {
	return b.get(host).State()
}

func (b *Breaker) get(host string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	cb, ok := b.breakers[host]
	if ok {
		return cb
	}

	threshold := b.settings.FailureThreshold
	cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ping:" + host,
		MaxRequests: 1,
		Timeout:     b.settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// A canceled pass says nothing about the host.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("ping circuit state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	b.breakers[host] = cb

	return cb
}
