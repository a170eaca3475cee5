//go:build !linux

package probe

import "context"

func (s *System) CurrentSSID(_ context.Context) (string, error) {
	return "", ErrUnsupported
}

func (s *System) CurrentGatewayMAC(_ context.Context) (string, error) {
	return "", ErrUnsupported
}

func (s *System) InterfaceStatus(_ context.Context, _ string) (LinkStatus, error) {
	return LinkStatus{}, ErrUnsupported
}

func (s *System) NetworkAvailable(_ context.Context) (bool, error) {
	return false, ErrUnsupported
}
