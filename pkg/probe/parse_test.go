package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNmcliActiveSSID(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		out  string
		want string
	}{
		"active network": {
			out:  "no:Neighbor\nyes:HomeNet\nno:Cafe\n",
			want: "HomeNet",
		},
		"escaped colon": {
			out:  `yes:Lab\:5G`,
			want: "Lab:5G",
		},
		"not connected": {
			out: "no:Neighbor\nno:Cafe\n",
		},
		"empty": {},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, parseNmcliActiveSSID(tc.out))
		})
	}
}

func TestParseIw(t *testing.T) {
	t.Parallel()

	link := `Connected to 11:22:33:44:55:66 (on wlan0)
	SSID: Office Guest
	freq: 5180
	signal: -52 dBm
`
	assert.Equal(t, "Office Guest", parseIwSSID(link))
	assert.Empty(t, parseIwSSID("Not connected.\n"))

	dev := `phy#0
	Interface wlan0
		ifindex 3
		type managed
phy#1
	Interface wlp2s0
`
	assert.Equal(t, []string{"wlan0", "wlp2s0"}, parseIwInterfaces(dev))
}

func TestParseNmcliState(t *testing.T) {
	t.Parallel()

	assert.True(t, parseNmcliState("connected\n"))
	assert.True(t, parseNmcliState("connected (site only)"))
	assert.False(t, parseNmcliState("disconnected"))
	assert.False(t, parseNmcliState("connecting"))
	assert.False(t, parseNmcliState(""))
}
