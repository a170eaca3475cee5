package probe

import (
	"bufio"
	"strings"
)

// parseNmcliActiveSSID reads the output of `nmcli -t -f active,ssid dev wifi`
// and returns the SSID of the active line.
func parseNmcliActiveSSID(out string) string {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if ssid, ok := strings.CutPrefix(line, "yes:"); ok {
			// nmcli escapes ':' in terse output.
			return strings.ReplaceAll(ssid, `\:`, ":")
		}
	}

	return ""
}

// parseIwSSID reads the output of `iw dev <if> link`.
func parseIwSSID(out string) string {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if ssid, ok := strings.CutPrefix(line, "SSID:"); ok {
			return strings.TrimSpace(ssid)
		}
	}

	return ""
}

// parseIwInterfaces reads the output of `iw dev` and returns the wireless
// interface names.
func parseIwInterfaces(out string) []string {
	var names []string

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 2 && fields[0] == "Interface" {
			names = append(names, fields[1])
		}
	}

	return names
}

// parseNmcliState reads the output of `nmcli -t -f STATE general`.
func parseNmcliState(out string) bool {
	state := strings.TrimSpace(out)

	// "connected", "connected (site only)", "connected (local only)".
	return strings.HasPrefix(state, "connected")
}
