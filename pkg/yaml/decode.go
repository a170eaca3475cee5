package yaml

import (
	"errors"
	"io"

	"github.com/goccy/go-yaml"
)

// ErrEmptyDocument is returned when the input holds no YAML document.
var ErrEmptyDocument = errors.New("empty document")

// Decoder reads YAML documents. Duplicate mapping keys are rejected unless
// [AllowDuplicateKeys] is set, so a profile or schedule cannot silently
// carry two values for the same field.
type Decoder struct {
	d *yaml.Decoder
}

// DecodeOpt configures a [Decoder].
type DecodeOpt func(*decodeOptions)

type decodeOptions struct {
	allowDuplicates bool
}

// AllowDuplicateKeys makes the last of several duplicate keys win.
func AllowDuplicateKeys() DecodeOpt {
	return func(o *decodeOptions) {
		o.allowDuplicates = true
	}
}

func NewDecoder(r io.Reader, opts ...DecodeOpt) *Decoder {
	o := &decodeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var yopts []yaml.DecodeOption
	if o.allowDuplicates {
		yopts = append(yopts, yaml.AllowDuplicateMapKey())
	}

	return &Decoder{d: yaml.NewDecoder(r, yopts...)}
}

// Decode decodes the next document into v. Syntax and type errors are
// returned as an [Error] pointing at the offending token.
func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return ErrEmptyDocument
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	//nolint:wrapcheck // Not a positioned error.
	return err
}
