package probe_test

import (
	"context"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/macropower/netswitch/pkg/probe"
	"github.com/macropower/netswitch/pkg/probe/probemock"
)

func TestBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := probemock.NewMockNetworkProbe(ctrl)

	// Only two pings reach the inner probe; the third is short-circuited.
	inner.EXPECT().Ping(gomock.Any(), "10.0.0.1", time.Second).Return(false, nil).Times(2)

	b := probe.NewBreaker(inner, probe.BreakerSettings{FailureThreshold: 2, OpenTimeout: time.Hour})

	for range 2 {
		ok, err := b.Ping(t.Context(), "10.0.0.1", time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	assert.Equal(t, gobreaker.StateOpen, b.State("10.0.0.1"))

	ok, err := b.Ping(t.Context(), "10.0.0.1", time.Second)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, ok)
}

func TestBreakerPerHost(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := probemock.NewMockNetworkProbe(ctrl)

	inner.EXPECT().Ping(gomock.Any(), "down.lan", gomock.Any()).Return(false, nil)
	inner.EXPECT().Ping(gomock.Any(), "up.lan", gomock.Any()).Return(true, nil).Times(2)

	b := probe.NewBreaker(inner, probe.BreakerSettings{FailureThreshold: 1, OpenTimeout: time.Hour})

	ok, err := b.Ping(t.Context(), "down.lan", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	for range 2 {
		ok, err = b.Ping(t.Context(), "up.lan", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	assert.Equal(t, gobreaker.StateOpen, b.State("down.lan"))
	assert.Equal(t, gobreaker.StateClosed, b.State("up.lan"))
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := probemock.NewMockNetworkProbe(ctrl)

	inner.EXPECT().Ping(gomock.Any(), "gw", gomock.Any()).Return(false, context.Canceled).Times(3)

	b := probe.NewBreaker(inner, probe.BreakerSettings{FailureThreshold: 1, OpenTimeout: time.Hour})

	for range 3 {
		_, err := b.Ping(t.Context(), "gw", time.Second)
		require.ErrorIs(t, err, context.Canceled)
	}

	assert.Equal(t, gobreaker.StateClosed, b.State("gw"))
}

func TestBreakerDisabled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := probemock.NewMockNetworkProbe(ctrl)

	inner.EXPECT().Ping(gomock.Any(), "gw", gomock.Any()).Return(false, nil).Times(5)
	inner.EXPECT().CurrentSSID(gomock.Any()).Return("Home", nil)

	b := probe.NewBreaker(inner, probe.BreakerSettings{})

	for range 5 {
		ok, err := b.Ping(t.Context(), "gw", time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	ssid, err := b.CurrentSSID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Home", ssid)
}
