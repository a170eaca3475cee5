package probe

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/macropower/netswitch/pkg/execs"
)

// System probes the local host.
type System struct {
	runner        execs.Runner
	wifiInterface string
	env           []string
}

// SystemOpt configures a [System].
type SystemOpt func(*System)

// WithRunner sets the command runner. Defaults to [execs.NewExecutor].
func WithRunner(r execs.Runner) SystemOpt {
	return func(s *System) {
		s.runner = r
	}
}

// WithWifiInterface sets the wireless interface used when falling back to iw.
// By default the first interface reported by `iw dev` is used.
func WithWifiInterface(name string) SystemOpt {
	return func(s *System) {
		s.wifiInterface = name
	}
}

// WithEnv sets the base environment for child processes.
// Defaults to [os.Environ].
func WithEnv(env []string) SystemOpt {
	return func(s *System) {
		s.env = env
	}
}

// NewSystem creates a [System] probe.
func NewSystem(opts ...SystemOpt) *System {
	s := &System{
		runner: execs.NewExecutor(),
		env:    os.Environ(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *System) run(ctx context.Context, name string, args ...string) (*execs.Result, error) {
	cmd := execs.NewCommand(s.env, name, args...)
	// Keep tool output stable for parsing.
	cmd.AddEnvVar("LC_ALL", "C")

	res, err := s.runner.Run(ctx, cmd)
	if err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}

	return res, nil
}

// Ping sends a single echo request to host. An unreachable host is not an
// error. The wait is rounded down to whole seconds with a one second minimum.
func (s *System) Ping(ctx context.Context, host string, timeout time.Duration) (bool, error) {
	if err := ValidateHost(host); err != nil {
		return false, fmt.Errorf("%w: %q", err, host)
	}

	secs := max(int(timeout/time.Second), 1)

	// The process gets a little longer than its own wait to exit cleanly.
	ctx, cancel := context.WithTimeout(ctx, time.Duration(secs)*time.Second+2*time.Second)
	defer cancel()

	_, err := s.run(ctx, "ping", "-n", "-c", "1", "-W", strconv.Itoa(secs), host)
	if err == nil {
		return true, nil
	}

	if execs.ExitCode(err) > 0 {
		return false, nil
	}

	return false, err
}

var _ NetworkProbe = (*System)(nil)
