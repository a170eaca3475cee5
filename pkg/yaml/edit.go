package yaml

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
)

// MergeAtPath parses data, merges v into the node at path and returns the
// result. Keys in v replace existing keys; comments and the layout of the
// rest of the document are kept.
func MergeAtPath(data []byte, path string, v any) ([]byte, error) {
	p, err := yaml.PathString(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}

	file, err := parser.ParseBytes(data, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	node, err := yaml.ValueToNode(v, DefaultEncoderOptions...)
	if err != nil {
		return nil, fmt.Errorf("convert value to node: %w", err)
	}

	err = p.MergeFromNode(file, node)
	if err != nil {
		return nil, fmt.Errorf("merge into %s: %w", path, err)
	}

	return []byte(file.String()), nil
}
