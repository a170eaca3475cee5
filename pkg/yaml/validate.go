package yaml

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator checks decoded YAML against a JSON schema.
type Validator struct {
	schema *jsonschema.Schema
	// name is the schema file name without its extension, for example
	// "config.v1beta1".
	name string
}

// NewValidator compiles the JSON schema in schemaData, registered at url.
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	var schema any

	err := json.Unmarshal(schemaData, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	err = compiler.AddResource(url, schema)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{
		schema: jss,
		name:   strings.TrimSuffix(path.Base(url), path.Ext(url)),
	}, nil
}

// Validate checks data against the schema. A failure is returned as an
// [Error] whose path points at the most specific failing value, so it can
// be annotated on the source.
func (v *Validator) Validate(data any) error {
	err := v.schema.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("%s: %w", v.name, err)
	}

	return &Error{
		Err:  fmt.Errorf("does not match %s: %w", v.name, validationErr),
		Path: locationPath(deepestLocation(validationErr)),
	}
}

// deepestLocation returns the longest instance location among err and its
// causes.
func deepestLocation(err *jsonschema.ValidationError) []string {
	longest := err.InstanceLocation

	for _, cause := range err.Causes {
		if loc := deepestLocation(cause); len(loc) > len(longest) {
			longest = loc
		}
	}

	return longest
}

// locationPath converts a JSON pointer location to a [yaml.Path]. Numeric
// parts are sequence indexes.
func locationPath(location []string) *yaml.Path {
	pb := NewPathBuilder().Root()

	for _, part := range location {
		idx, err := strconv.ParseUint(part, 10, 0)
		if err == nil {
			pb = pb.Index(uint(idx))
		} else {
			pb = pb.Child(part)
		}
	}

	return pb.Build()
}
