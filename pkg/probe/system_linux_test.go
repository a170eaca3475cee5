//go:build linux

package probe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/netswitch/pkg/execs"
	"github.com/macropower/netswitch/pkg/probe"
)

type fakeRunner struct {
	results map[string]fakeResult
	calls   []string
	mu      sync.Mutex
}

type fakeResult struct {
	err    error
	stdout string
}

func (f *fakeRunner) Run(_ context.Context, cmd execs.Command) (*execs.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := cmd.String()
	f.calls = append(f.calls, key)

	r, ok := f.results[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", execs.ErrCommandExecution, cmd.Command)
	}

	return &execs.Result{Stdout: r.stdout}, r.err
}

func TestSystemCurrentSSID(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		results map[string]fakeResult
		opts    []probe.SystemOpt
		want    string
		err     bool
	}{
		"nmcli": {
			results: map[string]fakeResult{
				"nmcli -t -f active,ssid dev wifi": {stdout: "no:Other\nyes:Home\n"},
			},
			want: "Home",
		},
		"iw fallback": {
			results: map[string]fakeResult{
				"iw dev":            {stdout: "phy#0\n\tInterface wlan0\n"},
				"iw dev wlan0 link": {stdout: "Connected to aa\n\tSSID: Cafe\n"},
			},
			want: "Cafe",
		},
		"iw with configured interface": {
			results: map[string]fakeResult{
				"iw dev wlp3s0 link": {stdout: "\tSSID: Office\n"},
			},
			opts: []probe.SystemOpt{probe.WithWifiInterface("wlp3s0")},
			want: "Office",
		},
		"no tools": {
			results: map[string]fakeResult{},
			err:     true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := &fakeRunner{results: tc.results}
			s := probe.NewSystem(append(tc.opts, probe.WithRunner(r), probe.WithEnv(nil))...)

			got, err := s.CurrentSSID(t.Context())
			if tc.err {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSystemPing(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{results: map[string]fakeResult{
		"ping -n -c 1 -W 1 10.0.0.1": {},
		"ping -n -c 1 -W 3 10.0.0.2": {},
	}}
	s := probe.NewSystem(probe.WithRunner(r), probe.WithEnv(nil))

	ok, err := s.Ping(t.Context(), "10.0.0.1", 200*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Ping(t.Context(), "10.0.0.2", 3500*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Ping(t.Context(), "-f", time.Second)
	require.ErrorIs(t, err, probe.ErrInvalidHost)

	for _, call := range r.calls {
		assert.False(t, strings.Contains(call, "-f"), "invalid host must not reach the runner")
	}
}

func TestSystemPingUnreachable(t *testing.T) {
	t.Parallel()

	s := probe.NewSystem(probe.WithEnv([]string{"PATH=/usr/bin:/bin"}))

	// 192.0.2.0/24 is reserved for documentation. If ping is missing or not
	// permitted the probe reports an error instead.
	ok, err := s.Ping(t.Context(), "192.0.2.1", time.Second)
	assert.False(t, ok)
	if err != nil {
		t.Skipf("ping unavailable: %v", err)
	}
}

func TestSystemNetworkAvailableNmcli(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{results: map[string]fakeResult{
		"nmcli -t -f STATE general": {stdout: "connected\n"},
	}}
	s := probe.NewSystem(probe.WithRunner(r), probe.WithEnv(nil))

	ok, err := s.NetworkAvailable(t.Context())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSystemInterfaceStatusLoopback(t *testing.T) {
	t.Parallel()

	s := probe.NewSystem()

	st, err := s.InterfaceStatus(t.Context(), "lo")
	if err != nil {
		t.Skipf("netlink unavailable: %v", err)
	}

	assert.NotEmpty(t, st.OperState)
	require.NotNil(t, st.Carrier)

	_, err = s.InterfaceStatus(t.Context(), "does-not-exist0")
	require.Error(t, err)
}
