// Package probe observes the host's network environment.
//
// [NetworkProbe] is the read-only view used by the rule evaluator. The Linux
// implementation reads links, routes and neighbours over netlink and shells
// out to NetworkManager, iw and ping for the rest.
package probe

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=probe.go -destination=probemock/probe.go -package=probemock

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrUnsupported is returned by probes that are not available on this platform.
	ErrUnsupported = errors.New("not supported on this platform")
	// ErrInvalidHost is returned for ping targets that are not a hostname or IP address.
	ErrInvalidHost = errors.New("invalid host")
	// ErrNoDefaultRoute is returned when there is no default gateway.
	ErrNoDefaultRoute = errors.New("no default route")
	// ErrNoNeighbor is returned when the gateway's hardware address is unknown.
	ErrNoNeighbor = errors.New("no neighbor entry")

	hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*\.?$`)
)

// NetworkProbe reports the state of the network environment.
//
// Implementations must honor ctx cancellation and deadlines.
type NetworkProbe interface {
	// CurrentSSID returns the SSID of the active Wi-Fi connection, or an
	// empty string if there is none.
	CurrentSSID(ctx context.Context) (string, error)
	// CurrentGatewayMAC returns the lowercase hardware address of the default
	// gateway, or an empty string if it is unknown.
	CurrentGatewayMAC(ctx context.Context) (string, error)
	// Ping reports whether host answers a single echo request within timeout.
	Ping(ctx context.Context, host string, timeout time.Duration) (bool, error)
	// InterfaceStatus returns the state of the named interface.
	InterfaceStatus(ctx context.Context, name string) (LinkStatus, error)
	// NetworkAvailable reports whether any connectivity is active.
	NetworkAvailable(ctx context.Context) (bool, error)
}

// LinkStatus is the observed state of a network interface.
type LinkStatus struct {
	// Carrier is nil when the carrier state could not be read.
	Carrier *bool
	// OperState is the kernel operational state, e.g. "up" or "down".
	OperState string
}

// Up reports whether the operational state is "up".
func (l LinkStatus) Up() bool {
	return strings.EqualFold(l.OperState, "up")
}

// Down reports whether the operational state is "down".
func (l LinkStatus) Down() bool {
	return strings.EqualFold(l.OperState, "down")
}

// HasCarrier reports whether carrier was read and present.
func (l LinkStatus) HasCarrier() bool {
	return l.Carrier != nil && *l.Carrier
}

// ValidateHost checks that host is an IP address or a DNS name. Values that
// could be interpreted as command-line options are rejected.
func ValidateHost(host string) error {
	if host == "" || strings.HasPrefix(host, "-") || len(host) > 253 {
		return ErrInvalidHost
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnamePattern.MatchString(host) {
		return ErrInvalidHost
	}

	return nil
}

// NormalizeMAC lowercases a hardware address and removes surrounding space.
func NormalizeMAC(mac string) string {
	return strings.ToLower(strings.TrimSpace(mac))
}

// Snapshot is a point-in-time view of the SSID and gateway.
type Snapshot struct {
	SSID       string
	GatewayMAC string
}

// TakeSnapshot reads the SSID and gateway MAC, each under its own timeout.
// Failed reads leave the corresponding field empty and are returned joined.
func TakeSnapshot(ctx context.Context, p NetworkProbe, timeout time.Duration) (Snapshot, error) {
	var (
		snap Snapshot
		errs []error
	)

	ssid, err := withTimeout(ctx, timeout, p.CurrentSSID)
	if err != nil {
		errs = append(errs, err)
	}
	snap.SSID = ssid

	mac, err := withTimeout(ctx, timeout, p.CurrentGatewayMAC)
	if err != nil {
		errs = append(errs, err)
	}
	snap.GatewayMAC = NormalizeMAC(mac)

	return snap, errors.Join(errs...)
}

func withTimeout[T any](ctx context.Context, timeout time.Duration, f func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return f(ctx)
}
