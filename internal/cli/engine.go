package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/macropower/netswitch/pkg/activation"
	"github.com/macropower/netswitch/pkg/config"
	"github.com/macropower/netswitch/pkg/evaluator"
	"github.com/macropower/netswitch/pkg/probe"
)

var ErrNoConfig = errors.New("no configuration file")

func (ra *RootArgs) configPath() string {
	if ra.ConfigPath != "" {
		return ra.ConfigPath
	}

	return config.GetPath()
}

// openStore loads the configuration file into a [config.Store].
func (ra *RootArgs) openStore(opts ...config.StoreOpt) (*config.Store, error) {
	path := ra.configPath()

	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s, create one with `%s config write`", ErrNoConfig, path, cmdName)
	}

	s, err := config.OpenStore(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return s, nil
}

// newProbe returns the system probe wrapped with the configured ping
// circuit breaker.
func newProbe(cfg *config.Config) probe.NetworkProbe {
	return probe.NewBreaker(
		probe.NewSystem(probe.WithWifiInterface(cfg.Probe.WifiInterface)),
		cfg.Probe.BreakerSettings(),
	)
}

func newEvaluator(cfg *config.Config, p probe.NetworkProbe) *evaluator.Evaluator {
	return evaluator.New(p, evaluator.WithProbeTimeout(cfg.Engine.ProbeTimeout()))
}

func newActivator(s *config.Store, dryRun bool) activation.Activator {
	if dryRun {
		return activation.Logger{}
	}

	return activation.NewCommand(s.ActivationCommand)
}
