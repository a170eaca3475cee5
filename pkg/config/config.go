package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/netswitch/api"
	"github.com/macropower/netswitch/api/v1beta1"
	"github.com/macropower/netswitch/pkg/dispatch"
	"github.com/macropower/netswitch/pkg/evaluator"
	"github.com/macropower/netswitch/pkg/probe"
	"github.com/macropower/netswitch/pkg/profile"
	"github.com/macropower/netswitch/pkg/schedule"
	"github.com/macropower/netswitch/pkg/yaml"
)

const (
	// Kind is the only configuration kind.
	Kind = "Configuration"

	DefaultActivationCommand = "nmcli connection up id {profile}"
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	// ValidKinds contains the valid kind values.
	ValidKinds = []string{Kind}

	ErrDuplicateID     = errors.New("duplicate id")
	ErrUnknownProfile  = errors.New("unknown profile")
	ErrInvalidInterval = errors.New("interval must be positive")

	_ v1beta1.Object = (*Config)(nil)
)

// Config is the netswitch configuration file.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	Engine           *Engine     `json:"engine,omitempty" jsonschema:"title=Engine"`
	Scheduling       *Scheduling `json:"scheduling,omitempty" jsonschema:"title=Scheduling"`
	Activation       *Activation `json:"activation,omitempty" jsonschema:"title=Activation"`
	Probe            *Probe      `json:"probe,omitempty" jsonschema:"title=Probe"`
	v1beta1.TypeMeta `json:",inline"`
	// Profiles are the network profiles that can be activated.
	Profiles []profile.Profile `json:"profiles,omitempty" jsonschema:"title=Profiles"`
	// Schedules activate profiles at fixed times.
	Schedules []schedule.Schedule `json:"schedules,omitempty" jsonschema:"title=Schedules"`
}

// Engine controls the dispatch loop.
type Engine struct {
	EvaluateOnStart         *bool  `json:"evaluateOnStart,omitempty" jsonschema:"title=Evaluate On Start,default=true"`
	ScheduleIntervalSeconds uint32 `json:"scheduleIntervalSeconds,omitempty" jsonschema:"title=Schedule Interval (s),minimum=1,default=60"`
	RuleIntervalSeconds     uint32 `json:"ruleIntervalSeconds,omitempty" jsonschema:"title=Rule Interval (s),minimum=1,default=30"`
	ProbeTimeoutSeconds     uint32 `json:"probeTimeoutSeconds,omitempty" jsonschema:"title=Probe Timeout (s),minimum=1,default=5"`
}

// Scheduling toggles schedule checks.
type Scheduling struct {
	Enabled *bool `json:"enabled,omitempty" jsonschema:"title=Enabled,default=true"`
}

// Activation configures how profiles are applied.
type Activation struct {
	// Command is run for profiles without their own activation command.
	Command string `json:"command,omitempty" jsonschema:"title=Command"`
}

// Probe configures the network probes.
type Probe struct {
	PingBreaker *PingBreaker `json:"pingBreaker,omitempty" jsonschema:"title=Ping Circuit Breaker"`
	// WifiInterface is passed to iw when nmcli is unavailable.
	WifiInterface string `json:"wifiInterface,omitempty" jsonschema:"title=Wi-Fi Interface"`
}

// PingBreaker configures the per-host ping circuit breaker.
type PingBreaker struct {
	// FailureThreshold is the number of consecutive failures that open the
	// breaker. Zero disables it.
	FailureThreshold uint32 `json:"failureThreshold,omitempty" jsonschema:"title=Failure Threshold"`
	OpenSeconds      uint32 `json:"openSeconds,omitempty" jsonschema:"title=Open Duration (s),default=60"`
}

// New creates a [Config] with default values and no profiles.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
	}
	c.EnsureDefaults()

	return c
}

func ptr[T any](v T) *T {
	return &v
}

// EnsureDefaults initializes nil and zero fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Engine == nil {
		c.Engine = &Engine{}
	}
	if c.Engine.EvaluateOnStart == nil {
		c.Engine.EvaluateOnStart = ptr(true)
	}
	if c.Engine.ScheduleIntervalSeconds == 0 {
		c.Engine.ScheduleIntervalSeconds = uint32(dispatch.DefaultScheduleInterval / time.Second)
	}
	if c.Engine.RuleIntervalSeconds == 0 {
		c.Engine.RuleIntervalSeconds = uint32(dispatch.DefaultRuleInterval / time.Second)
	}
	if c.Engine.ProbeTimeoutSeconds == 0 {
		c.Engine.ProbeTimeoutSeconds = uint32(evaluator.DefaultProbeTimeout / time.Second)
	}

	if c.Scheduling == nil {
		c.Scheduling = &Scheduling{}
	}
	if c.Scheduling.Enabled == nil {
		c.Scheduling.Enabled = ptr(true)
	}

	if c.Activation == nil {
		c.Activation = &Activation{}
	}
	if c.Activation.Command == "" {
		c.Activation.Command = DefaultActivationCommand
	}

	if c.Probe == nil {
		c.Probe = &Probe{}
	}
	if c.Probe.PingBreaker == nil {
		c.Probe.PingBreaker = &PingBreaker{FailureThreshold: probe.DefaultFailureThreshold}
	}
	if c.Probe.PingBreaker.OpenSeconds == 0 {
		c.Probe.PingBreaker.OpenSeconds = uint32(probe.DefaultOpenTimeout / time.Second)
	}
}

// Validate checks everything the schema cannot express. Errors carry the
// YAML path of the offending value.
func (c *Config) Validate() error {
	err := c.TypeMeta.Check(ValidKinds...)
	if err != nil {
		return yaml.NewError(err, yaml.WithPath(yaml.NewPathBuilder().Root().Child("apiVersion").Build()))
	}

	ids := make(map[string]struct{}, len(c.Profiles))

	for i, p := range c.Profiles {
		path := yaml.NewPathBuilder().Root().Child("profiles").Index(uint(i)) //nolint:gosec // G115: index.

		err := p.Validate()
		if err != nil {
			return yaml.NewError(err, yaml.WithPath(path.Build()))
		}

		_, dup := ids[p.ID]
		if dup {
			return yaml.NewError(fmt.Errorf("%w %q", ErrDuplicateID, p.ID), yaml.WithPath(path.Child("id").Build()))
		}
		ids[p.ID] = struct{}{}
	}

	keys := make(map[string]struct{}, len(c.Schedules))

	for i, s := range c.Schedules {
		path := yaml.NewPathBuilder().Root().Child("schedules").Index(uint(i)) //nolint:gosec // G115: index.

		err := s.Validate()
		if err != nil {
			return yaml.NewError(err, yaml.WithPath(path.Build()))
		}

		if _, ok := ids[s.ProfileID]; !ok {
			return yaml.NewError(fmt.Errorf("%w %q", ErrUnknownProfile, s.ProfileID),
				yaml.WithPath(path.Child("profileId").Build()))
		}

		if s.ID == "" {
			continue
		}

		_, dup := keys[s.ID]
		if dup {
			return yaml.NewError(fmt.Errorf("%w %q", ErrDuplicateID, s.ID), yaml.WithPath(path.Child("id").Build()))
		}
		keys[s.ID] = struct{}{}
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// Profile returns the profile with the given ID.
func (c *Config) Profile(id string) (profile.Profile, bool) {
	for _, p := range c.Profiles {
		if p.ID == id {
			return p, true
		}
	}

	return profile.Profile{}, false
}

// ProfileIDs returns all profile IDs in file order.
func (c *Config) ProfileIDs() []string {
	ids := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		ids = append(ids, p.ID)
	}

	return ids
}

// ActivationCommand returns the command template for a profile: its own
// activation command if set, otherwise the global one.
func (c *Config) ActivationCommand(profileID string) string {
	if p, ok := c.Profile(profileID); ok && p.Activation != nil && p.Activation.Command != "" {
		return p.Activation.Command
	}

	return c.Activation.Command
}

// SchedulingEnabled reports whether schedules should be checked.
func (c *Config) SchedulingEnabled() bool {
	return c.Scheduling == nil || c.Scheduling.Enabled == nil || *c.Scheduling.Enabled
}

// ScheduleInterval returns the schedule check interval.
func (e *Engine) ScheduleInterval() time.Duration {
	return time.Duration(e.ScheduleIntervalSeconds) * time.Second
}

// RuleInterval returns the rule evaluation interval.
func (e *Engine) RuleInterval() time.Duration {
	return time.Duration(e.RuleIntervalSeconds) * time.Second
}

// ProbeTimeout returns the per-probe timeout.
func (e *Engine) ProbeTimeout() time.Duration {
	return time.Duration(e.ProbeTimeoutSeconds) * time.Second
}

// BreakerSettings converts the ping breaker configuration.
func (p *Probe) BreakerSettings() probe.BreakerSettings {
	if p.PingBreaker == nil {
		return probe.BreakerSettings{}
	}

	return probe.BreakerSettings{
		FailureThreshold: p.PingBreaker.FailureThreshold,
		OpenTimeout:      time.Duration(p.PingBreaker.OpenSeconds) * time.Second,
	}
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := yaml.Marshal(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// WriteDefault writes the embedded default config.yaml and its JSON schema
// to the directory of path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	schema, err := Schema()
	if err != nil {
		return err
	}

	err = api.WriteDefaultFile(SchemaPath(path), schema, true, "schema")
	if err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	return nil
}

// DefaultYAML returns the embedded default configuration.
func DefaultYAML() []byte {
	return defaultConfigYAML
}

// GetPath returns the path to the configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}
