package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/macropower/netswitch/pkg/yaml"
)

// SchemaFile is the file name of the JSON schema written next to the config.
const SchemaFile = "config.v1beta1.json"

var (
	schemaOnce = sync.OnceValues(func() ([]byte, error) {
		return yaml.NewSchemaGenerator(New(), "/"+SchemaFile).Generate()
	})

	validatorOnce = sync.OnceValues(func() (*yaml.Validator, error) {
		data, err := Schema()
		if err != nil {
			return nil, err
		}

		return yaml.NewValidator("/"+SchemaFile, data)
	})
)

// Schema returns the JSON schema of [Config].
func Schema() ([]byte, error) {
	data, err := schemaOnce()
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}

	return data, nil
}

// DefaultValidator returns a validator for the [Config] schema.
func DefaultValidator() (*yaml.Validator, error) {
	v, err := validatorOnce()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	return v, nil
}

// SchemaPath returns where the schema for the config at path is written.
func SchemaPath(path string) string {
	return filepath.Join(filepath.Dir(path), SchemaFile)
}
