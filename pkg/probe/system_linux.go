//go:build linux

package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// CurrentSSID asks NetworkManager for the active Wi-Fi network and falls
// back to iw when nmcli is unavailable.
func (s *System) CurrentSSID(ctx context.Context) (string, error) {
	res, err := s.run(ctx, "nmcli", "-t", "-f", "active,ssid", "dev", "wifi")
	if err == nil {
		return parseNmcliActiveSSID(res.Stdout), nil
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("current ssid: %w", ctx.Err())
	}

	ssid, iwErr := s.iwSSID(ctx)
	if iwErr != nil {
		return "", fmt.Errorf("current ssid: %w", errors.Join(err, iwErr))
	}

	return ssid, nil
}

func (s *System) iwSSID(ctx context.Context) (string, error) {
	ifaces := []string{s.wifiInterface}
	if s.wifiInterface == "" {
		res, err := s.run(ctx, "iw", "dev")
		if err != nil {
			return "", err
		}

		ifaces = parseIwInterfaces(res.Stdout)
	}

	for _, iface := range ifaces {
		res, err := s.run(ctx, "iw", "dev", iface, "link")
		if err != nil {
			continue
		}

		if ssid := parseIwSSID(res.Stdout); ssid != "" {
			return ssid, nil
		}
	}

	return "", nil
}

// CurrentGatewayMAC looks up the IPv4 default route and the neighbour entry
// of its gateway.
func (s *System) CurrentGatewayMAC(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	route, err := defaultRoute()
	if err != nil {
		return "", err
	}

	neighs, err := netlink.NeighList(route.LinkIndex, netlink.FAMILY_V4)
	if err != nil {
		return "", fmt.Errorf("list neighbors: %w", err)
	}

	for _, n := range neighs {
		if n.IP.Equal(route.Gw) && len(n.HardwareAddr) > 0 {
			return NormalizeMAC(n.HardwareAddr.String()), nil
		}
	}

	return "", fmt.Errorf("%w: gateway %s", ErrNoNeighbor, route.Gw)
}

// InterfaceStatus reads the operational state and carrier of a link.
func (s *System) InterfaceStatus(ctx context.Context, name string) (LinkStatus, error) {
	if err := ctx.Err(); err != nil {
		return LinkStatus{}, err
	}

	link, err := netlink.LinkByName(name)
	if err != nil {
		return LinkStatus{}, fmt.Errorf("link %q: %w", name, err)
	}

	attrs := link.Attrs()
	carrier := attrs.RawFlags&unix.IFF_LOWER_UP != 0

	return LinkStatus{
		OperState: attrs.OperState.String(),
		Carrier:   &carrier,
	}, nil
}

// NetworkAvailable asks NetworkManager for the global connectivity state and
// falls back to checking for a default route.
func (s *System) NetworkAvailable(ctx context.Context) (bool, error) {
	res, err := s.run(ctx, "nmcli", "-t", "-f", "STATE", "general")
	if err == nil {
		return parseNmcliState(res.Stdout), nil
	}

	if ctx.Err() != nil {
		return false, fmt.Errorf("network available: %w", ctx.Err())
	}

	_, routeErr := defaultRoute()
	if errors.Is(routeErr, ErrNoDefaultRoute) {
		return false, nil
	}
	if routeErr != nil {
		return false, fmt.Errorf("network available: %w", errors.Join(err, routeErr))
	}

	return true, nil
}

// defaultRoute returns the IPv4 default route with the lowest metric.
func defaultRoute() (netlink.Route, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return netlink.Route{}, fmt.Errorf("list routes: %w", err)
	}

	var candidates []netlink.Route

	for _, r := range routes {
		if r.Gw != nil && isDefaultDst(r.Dst) {
			candidates = append(candidates, r)
		}
	}

	if len(candidates) == 0 {
		return netlink.Route{}, ErrNoDefaultRoute
	}

	return slices.MinFunc(candidates, func(a, b netlink.Route) int {
		return a.Priority - b.Priority
	}), nil
}

func isDefaultDst(dst *net.IPNet) bool {
	if dst == nil {
		return true
	}

	ones, _ := dst.Mask.Size()

	return ones == 0
}
