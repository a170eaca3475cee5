package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a JSON schema from a Go value.
type SchemaGenerator struct {
	v  any
	id string
}

// NewSchemaGenerator creates a [SchemaGenerator] for v. The id becomes the
// schema's $id.
func NewSchemaGenerator(v any, id string) *SchemaGenerator {
	return &SchemaGenerator{v: v, id: id}
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag: "json",
	}

	jss := r.Reflect(g.v)
	jss.ID = jsonschema.ID(g.id)

	data, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return data, nil
}
