package execs

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrCommandExecution is returned when command execution fails.
	ErrCommandExecution = errors.New("run")

	// ErrEmptyCommand is returned when a command is empty.
	ErrEmptyCommand = errors.New("empty command")

	// essentialVars are inherited from the base environment.
	essentialVars = []string{"PATH", "HOME", "USER", "LANG", "LC_ALL", "DBUS_SYSTEM_BUS_ADDRESS"}
)

// Result represents the result of a command execution.
type Result struct {
	Stdout string
	Stderr string
}

// EnvVar represents an environment variable definition.
type EnvVar struct {
	// Name is the environment variable name.
	Name string `json:"name" jsonschema:"title=Name"`
	// Value is the environment variable value.
	Value string `json:"value,omitempty" jsonschema:"title=Value"`
}

// Command is an executable with arguments and extra environment.
type Command struct {
	baseEnv map[string]string
	// Command is the command to execute.
	Command string `json:"command" jsonschema:"title=Command,pattern=^\\S+$"`
	// Args contains the command line arguments.
	Args []string `json:"args,omitempty" jsonschema:"title=Arguments" yaml:"args,flow,omitempty"`
	// Env contains environment variable definitions.
	Env []EnvVar `json:"env,omitempty" jsonschema:"title=Environment Variables"`
}

// NewCommand creates a new [Command].
// It accepts a base environment, which usually will be from [os.Environ].
func NewCommand(baseEnv []string, name string, args ...string) Command {
	c := Command{
		Command: name,
		Args:    args,
		Env:     []EnvVar{},
	}
	c.SetBaseEnv(baseEnv)

	return c
}

// SetBaseEnv replaces the environment that essential variables are read from.
func (c *Command) SetBaseEnv(baseEnv []string) {
	c.baseEnv = make(map[string]string)
	for _, envVar := range baseEnv {
		if key, value, ok := strings.Cut(envVar, "="); ok {
			c.baseEnv[key] = value
		}
	}
}

// AddEnvVar adds a single environment variable.
func (c *Command) AddEnvVar(name, value string) {
	c.Env = append(c.Env, EnvVar{Name: name, Value: value})
}

// GetEnv constructs environment variables for command execution, sorted by name.
func (c *Command) GetEnv() []string {
	envMap := make(map[string]string)

	for key, value := range c.baseEnv {
		if slices.Contains(essentialVars, key) {
			envMap[key] = value
		}
	}

	for _, envVar := range c.Env {
		if envVar.Name == "" {
			continue
		}

		envMap[envVar.Name] = envVar.Value
	}

	env := make([]string, 0, len(envMap))
	for _, key := range slices.Sorted(maps.Keys(envMap)) {
		env = append(env, key+"="+envMap[key])
	}

	return env
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}

	return fmt.Sprintf("%s %s", c.Command, strings.Join(c.Args, " "))
}
