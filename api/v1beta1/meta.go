// Package v1beta1 contains the metadata shared by netswitch configuration
// kinds.
package v1beta1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// APIVersion is the current API version for all netswitch configuration kinds.
const APIVersion = "netswitch.macropower.dev/v1beta1"

var (
	// ValidAPIVersions contains all valid API versions.
	ValidAPIVersions = []string{APIVersion}

	ErrUnknownAPIVersion = errors.New("unknown apiVersion")
	ErrUnknownKind       = errors.New("unknown kind")
)

// TypeMeta contains the API version and kind metadata common to all config types.
type TypeMeta struct {
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

// GetAPIVersion returns the API version.
func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

// GetKind returns the kind.
func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Check returns an error unless the API version is known and the kind is
// one of kinds.
func (tm TypeMeta) Check(kinds ...string) error {
	if !slices.Contains(ValidAPIVersions, tm.APIVersion) {
		return fmt.Errorf("%w %q", ErrUnknownAPIVersion, tm.APIVersion)
	}
	if !slices.Contains(kinds, tm.Kind) {
		return fmt.Errorf("%w %q", ErrUnknownKind, tm.Kind)
	}

	return nil
}

// Object is the interface that all config types implement.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// ExtendSchemaWithEnums restricts the apiVersion and kind properties of jss
// to the given values. Missing properties are left alone.
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	restrict := func(name string, values []string) {
		prop, ok := jss.Properties.Get(name)
		if !ok {
			return
		}

		prop.Enum = prop.Enum[:0]
		for _, v := range values {
			prop.Enum = append(prop.Enum, v)
		}

		_, _ = jss.Properties.Set(name, prop)
	}

	restrict("apiVersion", apiVersions)
	restrict("kind", kinds)
}
