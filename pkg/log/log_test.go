package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/netswitch/pkg/log"
)

func TestCreateHandlerWithStrings(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level  string
		format string
		err    error
	}{
		"json debug":     {level: "debug", format: "json"},
		"logfmt warning": {level: "WARNING", format: "logfmt"},
		"text info":      {level: "info", format: "text"},
		"bad level":      {level: "loud", format: "json", err: log.ErrUnknownLogLevel},
		"bad format":     {level: "info", format: "xml", err: log.ErrUnknownLogFormat},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h, err := log.CreateHandlerWithStrings(&bytes.Buffer{}, tc.level, tc.format)
			if tc.err != nil {
				require.ErrorIs(t, err, log.ErrInvalidArgument)
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, h)
		})
	}
}

func TestJSONHandlerLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(log.CreateHandler(&buf, slog.LevelWarn, log.FormatJSON))
	logger.Info("hidden")
	logger.Warn("shown", slog.String("profile", "home"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"profile":"home"`)
}

func TestWithContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Default(), log.WithContext(context.Background()))

	logger := log.Discard()
	ctx := log.NewContext(context.Background(), logger)
	assert.Same(t, logger, log.WithContext(ctx))
}
