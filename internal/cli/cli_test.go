package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/netswitch/internal/cli"
	"github.com/macropower/netswitch/pkg/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, "--config", path, "config", "write")
	require.NoError(t, err)

	out, err := execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "3 profile(s), 1 schedule(s)")

	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Equal(t, string(config.DefaultYAML()), out)

	out, err = execute(t, "--config", path, "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"$id": "/config.v1beta1.json"`)

	out, err = execute(t, "--config", path, "schedules")
	require.NoError(t, err)
	assert.Contains(t, out, "work-mornings")
	assert.Contains(t, out, "30 8 * * 1-5")
}

func TestConfigValidateError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`apiVersion: netswitch.macropower.dev/v1beta1
kind: Configuration
profiles:
  - id: home
  - id: home
`), 0o600))

	_, err := execute(t, "--config", path, "config", "validate")
	require.ErrorIs(t, err, config.ErrDuplicateID)
}

func TestMissingConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := execute(t, "--config", path, "run", "--once")
	require.ErrorIs(t, err, cli.ErrNoConfig)
}
