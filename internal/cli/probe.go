package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/macropower/netswitch/pkg/evaluator"
	"github.com/macropower/netswitch/pkg/probe"
)

type ProbeArgs struct {
	*RootArgs

	Interfaces []string
	Hosts      []string
	Timeout    time.Duration
}

func NewProbeCmd(rootArgs *RootArgs) *cobra.Command {
	pa := &ProbeArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Print what the network probes currently see",
		Example: `  # Show SSID, gateway and connectivity:
  netswitch probe

  # Also check links and ping targets:
  netswitch probe -i eth0 -i wlan0 --ping 1.1.1.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd.Context(), cmd.OutOrStdout(), pa)
		},
	}

	cmd.Flags().StringSliceVarP(&pa.Interfaces, "interface", "i", nil, "Interfaces to report link state for")
	cmd.Flags().StringSliceVar(&pa.Hosts, "ping", nil, "Hosts to ping")
	cmd.Flags().DurationVar(&pa.Timeout, "timeout", evaluator.DefaultProbeTimeout, "Timeout for each probe")

	return cmd
}

func runProbe(ctx context.Context, w io.Writer, pa *ProbeArgs) error {
	st := newStyles(w)

	wifiInterface := ""
	if store, err := pa.openStore(); err == nil {
		wifiInterface = store.Current().Probe.WifiInterface
	}

	p := probe.NewSystem(probe.WithWifiInterface(wifiInterface))

	var b strings.Builder

	row := func(name, value string, err error) {
		if err != nil {
			value = st.Error.Render(err.Error())
		}

		fmt.Fprintf(&b, "%-20s %s\n", st.Title.Render(name), value)
	}

	snap, err := probe.TakeSnapshot(ctx, p, pa.Timeout)
	row("ssid", orNone(snap.SSID), nil)
	row("gateway mac", orNone(snap.GatewayMAC), nil)
	if err != nil {
		row("snapshot errors", "", err)
	}

	pctx, cancel := context.WithTimeout(ctx, pa.Timeout)
	available, err := p.NetworkAvailable(pctx)
	cancel()
	row("network available", fmt.Sprint(available), err)

	for _, name := range pa.Interfaces {
		pctx, cancel := context.WithTimeout(ctx, pa.Timeout)
		status, err := p.InterfaceStatus(pctx, name)
		cancel()

		carrier := "unknown"
		if status.Carrier != nil {
			carrier = fmt.Sprint(*status.Carrier)
		}

		row("link "+name, fmt.Sprintf("state=%s carrier=%s", status.OperState, carrier), err)
	}

	for _, host := range pa.Hosts {
		start := time.Now()
		ok, err := p.Ping(ctx, host, pa.Timeout)
		row("ping "+host, fmt.Sprintf("%t (%s)", ok, time.Since(start).Round(time.Millisecond)), err)
	}

	_, err = io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write probe output: %w", err)
	}

	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}

	return s
}
