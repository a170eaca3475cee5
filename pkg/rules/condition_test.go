package rules_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/netswitch/pkg/rules"
)

func TestConditionValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cond rules.Condition
		err  error
	}{
		"ssid":              {cond: rules.WifiSSID("Home")},
		"ssid missing":      {cond: rules.Condition{Type: rules.TypeWifiSSID}, err: rules.ErrMissingField},
		"gateway":           {cond: rules.GatewayMAC("aa:bb:cc:dd:ee:ff")},
		"gateway missing":   {cond: rules.Condition{Type: rules.TypeGatewayMAC}, err: rules.ErrMissingField},
		"ping":              {cond: rules.PingTarget("10.0.0.1", 0)},
		"ping missing host": {cond: rules.Condition{Type: rules.TypePingTarget}, err: rules.ErrMissingField},
		"interface":         {cond: rules.Interface("eth0", rules.StateCarrier)},
		"interface bad state": {
			cond: rules.Interface("eth0", "sideways"),
			err:  rules.ErrInvalidState,
		},
		"window":         {cond: rules.Window("09:00", "17:00", "mon", "fri")},
		"window missing": {cond: rules.Condition{Type: rules.TypeTimeWindow}, err: rules.ErrMissingField},
		"window bad day": {cond: rules.Window("09:00", "17:00", "someday"), err: rules.ErrInvalidDay},
		"network":        {cond: rules.NetworkAvailable()},
		"not":            {cond: rules.Not(rules.NetworkAvailable())},
		"not missing":    {cond: rules.Condition{Type: rules.TypeNot}, err: rules.ErrMissingField},
		"nested invalid": {
			cond: rules.Not(rules.Not(rules.Condition{Type: rules.TypeWifiSSID})),
			err:  rules.ErrMissingField,
		},
		"unknown type": {cond: rules.Condition{Type: "bluetooth"}, err: rules.ErrUnknownConditionType},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.cond.Validate()
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestConditionDescription(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cond rules.Condition
		want string
	}{
		"ssid":      {cond: rules.WifiSSID("Home"), want: "Wi-Fi SSID: Home"},
		"regex":     {cond: rules.WifiSSIDRegex("^Corp-"), want: "Wi-Fi SSID matches: ^Corp-"},
		"gateway":   {cond: rules.GatewayMAC("aa:bb"), want: "Gateway MAC: aa:bb"},
		"ping":      {cond: rules.PingTarget("example.com", 500), want: "Ping: example.com"},
		"up":        {cond: rules.Interface("eth0", rules.StateUp), want: "eth0 is up"},
		"nocarrier": {cond: rules.Interface("eth0", rules.StateNoCarrier), want: "eth0 is no carrier"},
		"window":    {cond: rules.Window("09:00", "17:00"), want: "Time: 09:00 - 17:00"},
		"network":   {cond: rules.NetworkAvailable(), want: "Network available"},
		"not":       {cond: rules.Not(rules.WifiSSID("Cafe")), want: "NOT (Wi-Fi SSID: Cafe)"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.cond.Description())
		})
	}
}

func TestPingTimeout(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		ms   uint32
		want time.Duration
	}{
		"default":          {ms: 0, want: time.Second},
		"sub-second":       {ms: 200, want: time.Second},
		"exact":            {ms: 3000, want: 3 * time.Second},
		"rounded down":     {ms: 2999, want: 2 * time.Second},
		"one and a little": {ms: 1001, want: time.Second},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, rules.PingTarget("h", tc.ms).PingTimeout())
		})
	}
}
