package evaluator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/macropower/netswitch/pkg/clock"
	"github.com/macropower/netswitch/pkg/evaluator"
	"github.com/macropower/netswitch/pkg/probe"
	"github.com/macropower/netswitch/pkg/probe/probemock"
	"github.com/macropower/netswitch/pkg/profile"
	"github.com/macropower/netswitch/pkg/rules"
)

var errProbe = errors.New("probe failed")

type fakeProbe struct {
	ssidErr      error
	reachable    map[string]bool
	links        map[string]probe.LinkStatus
	ssid         string
	mac          string
	pingTimeouts []time.Duration
	ssidCalls    int
	pingCalls    int
	network      bool
	mu           sync.Mutex
}

func (f *fakeProbe) CurrentSSID(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ssidCalls++

	return f.ssid, f.ssidErr
}

func (f *fakeProbe) CurrentGatewayMAC(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.mac, nil
}

func (f *fakeProbe) Ping(_ context.Context, host string, timeout time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pingCalls++
	f.pingTimeouts = append(f.pingTimeouts, timeout)

	return f.reachable[host], nil
}

func (f *fakeProbe) InterfaceStatus(_ context.Context, name string) (probe.LinkStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, ok := f.links[name]
	if !ok {
		return probe.LinkStatus{}, errProbe
	}

	return st, nil
}

func (f *fakeProbe) NetworkAvailable(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.network, nil
}

func (f *fakeProbe) setSSID(ssid string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ssid = ssid
}

func pfl(id string, rs *rules.RuleSet) profile.Profile {
	return profile.New(id, rs)
}

func TestEvaluateProfilesPriority(t *testing.T) {
	t.Parallel()

	disabled := rules.And(rules.WifiSSID("Home")).WithPriority(100)
	disabled.SetEnabled(false)

	tcs := map[string]struct {
		profiles []profile.Profile
		want     string
		found    bool
	}{
		"highest priority wins": {
			profiles: []profile.Profile{
				pfl("low", rules.And(rules.WifiSSID("Home")).WithPriority(1)),
				pfl("high", rules.And(rules.WifiSSID("Home")).WithPriority(10)),
			},
			want:  "high",
			found: true,
		},
		"ties keep input order": {
			profiles: []profile.Profile{
				pfl("first", rules.And(rules.WifiSSID("Home")).WithPriority(5)),
				pfl("second", rules.And(rules.WifiSSID("Home")).WithPriority(5)),
			},
			want:  "first",
			found: true,
		},
		"disabled and empty are skipped": {
			profiles: []profile.Profile{
				pfl("disabled", disabled),
				pfl("empty", rules.Or().WithPriority(50)),
				{ID: "none"},
				pfl("fallback", rules.And(rules.NetworkAvailable())),
			},
			want:  "fallback",
			found: true,
		},
		"negative priority still eligible": {
			profiles: []profile.Profile{
				pfl("neg", rules.And(rules.WifiSSID("Home")).WithPriority(-3)),
			},
			want:  "neg",
			found: true,
		},
		"no match": {
			profiles: []profile.Profile{
				pfl("cafe", rules.And(rules.WifiSSID("Cafe"))),
			},
		},
		"no profiles": {},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e := evaluator.New(&fakeProbe{ssid: "Home", network: true})

			got, ok := e.EvaluateProfiles(t.Context(), tc.profiles)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateProfilesSuppressesRepeats(t *testing.T) {
	t.Parallel()

	fp := &fakeProbe{ssid: "Home"}
	e := evaluator.New(fp)

	profiles := []profile.Profile{
		pfl("home", rules.And(rules.WifiSSID("Home"))),
		pfl("office", rules.And(rules.WifiSSID("Office"))),
	}

	id, ok := e.EvaluateProfiles(t.Context(), profiles)
	require.True(t, ok)
	assert.Equal(t, "home", id)

	_, ok = e.EvaluateProfiles(t.Context(), profiles)
	assert.False(t, ok, "same winner is not reported twice")

	fp.setSSID("Nowhere")
	_, ok = e.EvaluateProfiles(t.Context(), profiles)
	assert.False(t, ok)

	last, ok := e.LastSelected()
	assert.True(t, ok)
	assert.Equal(t, "home", last, "no match keeps the last selection")

	fp.setSSID("Home")
	_, ok = e.EvaluateProfiles(t.Context(), profiles)
	assert.False(t, ok, "returning to the last selection is still suppressed")

	fp.setSSID("Office")
	id, ok = e.EvaluateProfiles(t.Context(), profiles)
	require.True(t, ok)
	assert.Equal(t, "office", id)

	fp.setSSID("Home")
	id, ok = e.EvaluateProfiles(t.Context(), profiles)
	require.True(t, ok)
	assert.Equal(t, "home", id)
}

func TestClearMemory(t *testing.T) {
	t.Parallel()

	e := evaluator.New(&fakeProbe{ssid: "Home-5G"})
	profiles := []profile.Profile{pfl("home", rules.And(rules.WifiSSID("Home*")))}

	_, ok := e.EvaluateProfiles(t.Context(), profiles)
	require.True(t, ok)
	assert.Equal(t, 1, e.Patterns().Len())

	e.ClearMemory()

	_, ok = e.LastSelected()
	assert.False(t, ok)
	assert.Zero(t, e.Patterns().Len())

	id, ok := e.EvaluateProfiles(t.Context(), profiles)
	require.True(t, ok)
	assert.Equal(t, "home", id)
}

func TestSnapshotTakenOncePerPass(t *testing.T) {
	t.Parallel()

	fp := &fakeProbe{ssid: "Home", mac: "AA:BB:CC:00:11:22"}
	e := evaluator.New(fp)

	profiles := []profile.Profile{
		pfl("a", rules.And(rules.WifiSSID("Cafe"))),
		pfl("b", rules.Or(rules.WifiSSID("Office"), rules.WifiSSIDRegex("^Lab"))),
		pfl("c", rules.And(rules.WifiSSID("Home"), rules.GatewayMAC("aa:bb:cc:00:11:22"))),
	}

	id, ok := e.EvaluateProfiles(t.Context(), profiles)
	require.True(t, ok)
	assert.Equal(t, "c", id)
	assert.Equal(t, 1, fp.ssidCalls)
	assert.Equal(t, probe.Snapshot{SSID: "Home", GatewayMAC: "aa:bb:cc:00:11:22"}, e.Snapshot())
}

func TestShortCircuit(t *testing.T) {
	t.Parallel()

	t.Run("and stops at first false", func(t *testing.T) {
		t.Parallel()

		fp := &fakeProbe{ssid: "Cafe"}
		e := evaluator.New(fp)

		_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{
			pfl("p", rules.And(rules.WifiSSID("Home"), rules.PingTarget("10.0.0.1", 0))),
		})
		assert.False(t, ok)
		assert.Zero(t, fp.pingCalls)
	})

	t.Run("or stops at first true", func(t *testing.T) {
		t.Parallel()

		fp := &fakeProbe{ssid: "Home"}
		e := evaluator.New(fp)

		_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{
			pfl("p", rules.Or(rules.WifiSSID("Home"), rules.PingTarget("10.0.0.1", 0))),
		})
		assert.True(t, ok)
		assert.Zero(t, fp.pingCalls)
	})

	t.Run("lower priority profiles are not evaluated after a match", func(t *testing.T) {
		t.Parallel()

		fp := &fakeProbe{ssid: "Home"}
		e := evaluator.New(fp)

		_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{
			pfl("low", rules.And(rules.PingTarget("10.0.0.1", 0))),
			pfl("high", rules.And(rules.WifiSSID("Home")).WithPriority(1)),
		})
		assert.True(t, ok)
		assert.Zero(t, fp.pingCalls)
	})
}

func TestConditions(t *testing.T) {
	t.Parallel()

	carrier := true
	noCarrier := false

	// Wednesday 2025-03-12 23:30.
	now := clock.Fixed(time.Date(2025, time.March, 12, 23, 30, 0, 0, time.UTC))

	newProbe := func() *fakeProbe {
		return &fakeProbe{
			ssid:      "Corp-42",
			mac:       "aa:bb:cc:dd:ee:ff",
			reachable: map[string]bool{"10.0.0.1": true},
			links: map[string]probe.LinkStatus{
				"eth0":  {OperState: "up", Carrier: &carrier},
				"eth1":  {OperState: "down", Carrier: &noCarrier},
				"wwan0": {OperState: "dormant"},
			},
			network: true,
		}
	}

	tcs := map[string]struct {
		cond rules.Condition
		want bool
	}{
		"ssid literal":              {cond: rules.WifiSSID("Corp-42"), want: true},
		"ssid literal is exact":     {cond: rules.WifiSSID("Corp"), want: false},
		"ssid literal case exact":   {cond: rules.WifiSSID("corp-42"), want: false},
		"ssid glob":                 {cond: rules.WifiSSID("Corp-*"), want: true},
		"ssid glob anchored":        {cond: rules.WifiSSID("orp*"), want: false},
		"ssid regex":                {cond: rules.WifiSSIDRegex(`^Corp-[0-9]+$`), want: true},
		"ssid regex unanchored":     {cond: rules.WifiSSIDRegex(`rp-4`), want: true},
		"ssid regex invalid":        {cond: rules.WifiSSIDRegex(`(`), want: false},
		"ssid regex too large":      {cond: rules.WifiSSIDRegex(`[a-z]{600}[0-9]{600}`), want: false},
		"mac case insensitive":      {cond: rules.GatewayMAC("AA:BB:CC:DD:EE:FF"), want: true},
		"mac mismatch":              {cond: rules.GatewayMAC("aa:bb:cc:dd:ee:00"), want: false},
		"ping reachable":            {cond: rules.PingTarget("10.0.0.1", 0), want: true},
		"ping unreachable":          {cond: rules.PingTarget("10.9.9.9", 0), want: false},
		"interface up":              {cond: rules.Interface("eth0", rules.StateUp), want: true},
		"interface not down":        {cond: rules.Interface("eth0", rules.StateDown), want: false},
		"interface down":            {cond: rules.Interface("eth1", rules.StateDown), want: true},
		"interface carrier":         {cond: rules.Interface("eth0", rules.StateCarrier), want: true},
		"interface no carrier":      {cond: rules.Interface("eth1", rules.StateNoCarrier), want: true},
		"carrier unknown":           {cond: rules.Interface("wwan0", rules.StateCarrier), want: false},
		"no carrier unknown":        {cond: rules.Interface("wwan0", rules.StateNoCarrier), want: true},
		"missing interface up":      {cond: rules.Interface("eth9", rules.StateUp), want: false},
		"missing interface down":    {cond: rules.Interface("eth9", rules.StateDown), want: false},
		"missing interface carrier": {cond: rules.Interface("eth9", rules.StateCarrier), want: false},
		"missing no carrier":        {cond: rules.Interface("eth9", rules.StateNoCarrier), want: true},
		"overnight window":          {cond: rules.Window("22:00", "06:00"), want: true},
		"day window":                {cond: rules.Window("09:00", "17:00"), want: false},
		"window on wednesday":       {cond: rules.Window("22:00", "23:59", "wed"), want: true},
		"window on weekends":        {cond: rules.Window("22:00", "23:59", "sat", "sun"), want: false},
		"network available":         {cond: rules.NetworkAvailable(), want: true},
		"not":                       {cond: rules.Not(rules.WifiSSID("Cafe")), want: true},
		"double not":                {cond: rules.Not(rules.Not(rules.NetworkAvailable())), want: true},
		"unknown type":              {cond: rules.Condition{Type: "bluetooth"}, want: false},
		"malformed window":          {cond: rules.Condition{Type: rules.TypeTimeWindow}, want: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e := evaluator.New(newProbe(), evaluator.WithClock(now))

			_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{pfl("p", rules.And(tc.cond))})
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestNoSSIDNeverMatches(t *testing.T) {
	t.Parallel()

	for name, c := range map[string]rules.Condition{
		"literal": rules.WifiSSID("Home"),
		"glob":    rules.WifiSSID("*"),
		"regex":   rules.WifiSSIDRegex(".*"),
	} {
		e := evaluator.New(&fakeProbe{ssidErr: errProbe})
		_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{pfl("p", rules.And(c))})
		assert.False(t, ok, name)
	}

	e := evaluator.New(&fakeProbe{})
	_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{pfl("p", rules.And(rules.Not(rules.WifiSSID("Home"))))})
	assert.True(t, ok, "negated ssid matches with no wifi")
}

func TestUnreachablePingFailsAndRuleSet(t *testing.T) {
	t.Parallel()

	for _, network := range []bool{true, false} {
		fp := &fakeProbe{network: network, reachable: map[string]bool{}}
		e := evaluator.New(fp)

		_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{
			pfl("p", rules.And(rules.PingTarget("offline.example", 500), rules.NetworkAvailable())),
		})
		assert.False(t, ok, "network available: %t", network)
		assert.Equal(t, 1, fp.pingCalls)
		assert.Equal(t, []time.Duration{time.Second}, fp.pingTimeouts)
	}
}

func TestPingTimeoutPassedToProbe(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	p := probemock.NewMockNetworkProbe(ctrl)

	p.EXPECT().CurrentSSID(gomock.Any()).Return("", nil).Times(2)
	p.EXPECT().CurrentGatewayMAC(gomock.Any()).Return("", nil).Times(2)
	p.EXPECT().Ping(gomock.Any(), "a.lan", time.Second).Return(false, nil)
	p.EXPECT().Ping(gomock.Any(), "b.lan", 2*time.Second).DoAndReturn(
		func(ctx context.Context, _ string, _ time.Duration) (bool, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(2*time.Second+time.Second), deadline, time.Second)

			return true, nil
		},
	)

	e := evaluator.New(p, evaluator.WithProbeTimeout(time.Second))

	_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{pfl("a", rules.And(rules.PingTarget("a.lan", 200)))})
	assert.False(t, ok)

	id, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{pfl("b", rules.And(rules.PingTarget("b.lan", 2500)))})
	assert.True(t, ok)
	assert.Equal(t, "b", id)
}

func TestProbeErrorsAreNonMatches(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	p := probemock.NewMockNetworkProbe(ctrl)

	p.EXPECT().CurrentSSID(gomock.Any()).Return("", errProbe)
	p.EXPECT().CurrentGatewayMAC(gomock.Any()).Return("", errProbe)
	p.EXPECT().NetworkAvailable(gomock.Any()).Return(true, errProbe)
	p.EXPECT().Ping(gomock.Any(), "gw", gomock.Any()).Return(true, errProbe)

	e := evaluator.New(p)

	_, ok := e.EvaluateProfiles(t.Context(), []profile.Profile{
		pfl("net", rules.And(rules.NetworkAvailable())),
		pfl("ping", rules.And(rules.PingTarget("gw", 0))),
		pfl("mac", rules.And(rules.GatewayMAC("aa"))),
	})
	assert.False(t, ok)
}

func TestEvaluateProfilesCanceled(t *testing.T) {
	t.Parallel()

	e := evaluator.New(&fakeProbe{ssid: "Home"})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, ok := e.EvaluateProfiles(ctx, []profile.Profile{
		pfl("fallback", rules.And(rules.Not(rules.PingTarget("10.0.0.1", 0)))),
	})
	assert.False(t, ok)

	_, ok = e.LastSelected()
	assert.False(t, ok)
}

func TestExplain(t *testing.T) {
	t.Parallel()

	fp := &fakeProbe{ssid: "Home", reachable: map[string]bool{"nas.lan": true}}
	e := evaluator.New(fp)

	profiles := []profile.Profile{
		pfl("work", rules.And(rules.WifiSSID("Office"), rules.PingTarget("nas.lan", 0))),
		pfl("home", rules.Or(rules.WifiSSID("Home"), rules.PingTarget("nas.lan", 0)).WithPriority(5)),
		{ID: "manual"},
	}

	report := e.Explain(t.Context(), profiles)

	assert.Equal(t, "home", report.Selected)
	assert.Equal(t, "Home", report.Snapshot.SSID)
	require.Len(t, report.Profiles, 2)

	home := report.Profiles[0]
	assert.Equal(t, "home", home.ProfileID)
	assert.True(t, home.Matched)
	assert.Equal(t, rules.OperatorOr, home.Operator)
	require.Len(t, home.Conditions, 2, "explain does not short-circuit")
	assert.Equal(t, "Wi-Fi SSID: Home", home.Conditions[0].Description)

	work := report.Profiles[1]
	assert.False(t, work.Matched)
	require.Len(t, work.Conditions, 2)
	assert.False(t, work.Conditions[0].Matched)
	assert.True(t, work.Conditions[1].Matched)

	assert.Equal(t, 2, fp.pingCalls)

	_, ok := e.LastSelected()
	assert.False(t, ok, "explain does not record a selection")
}
