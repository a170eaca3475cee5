package profile

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/macropower/netswitch/pkg/rules"
)

var (
	// ErrInvalidID is returned for empty or malformed profile IDs.
	ErrInvalidID = errors.New("invalid profile id")

	idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// Source provides the current set of profiles.
type Source interface {
	CurrentProfiles() []Profile
}

// SourceFunc adapts a function to the [Source] interface.
type SourceFunc func() []Profile

func (f SourceFunc) CurrentProfiles() []Profile {
	return f()
}

// Static is a fixed list of profiles.
type Static []Profile

func (s Static) CurrentProfiles() []Profile {
	return s
}

// Profile is a named network configuration.
type Profile struct {
	// AutoSwitch holds the rule set that selects this profile automatically.
	AutoSwitch *rules.RuleSet `json:"autoSwitch,omitempty" jsonschema:"title=Auto Switch"`
	// Activation overrides the global activation command for this profile.
	Activation *Activation `json:"activation,omitempty" jsonschema:"title=Activation"`
	// ID uniquely identifies the profile.
	ID string `json:"id" jsonschema:"title=ID,pattern=^[A-Za-z0-9][A-Za-z0-9._-]*$"`
	// Name is a display name.
	Name string `json:"name,omitempty" jsonschema:"title=Name"`
	// Description is free text shown in listings.
	Description string `json:"description,omitempty" jsonschema:"title=Description"`
}

// Activation is a command run to apply a profile.
type Activation struct {
	// Command is a shell-style command line. "{profile}" is replaced with the
	// profile ID.
	Command string `json:"command" jsonschema:"title=Command"`
}

// New creates a [Profile] with the given ID and rule set.
func New(id string, autoSwitch *rules.RuleSet) Profile {
	return Profile{ID: id, Name: id, AutoSwitch: autoSwitch}
}

// DisplayName returns Name, falling back to ID.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}

	return p.ID
}

// Validate checks the ID and the rule set.
func (p Profile) Validate() error {
	if !idPattern.MatchString(p.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, p.ID)
	}

	if p.AutoSwitch != nil {
		if err := p.AutoSwitch.Validate(); err != nil {
			return fmt.Errorf("profile %q: autoSwitch: %w", p.ID, err)
		}
	}

	return nil
}

func (p Profile) String() string {
	if p.AutoSwitch.Eligible() {
		return fmt.Sprintf("%s: %s", p.DisplayName(), p.AutoSwitch.Description())
	}

	return p.DisplayName()
}
