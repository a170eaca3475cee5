package config

import (
	"bytes"

	"github.com/macropower/netswitch/api"
	"github.com/macropower/netswitch/api/v1beta1"
	"github.com/macropower/netswitch/pkg/yaml"
)

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// GoValidator is implemented by configs with checks beyond the schema.
type GoValidator interface {
	Validate() error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	validator Validator
	colored   bool
}

// WithValidator sets a custom validator.
func WithValidator(v Validator) LoaderOpt {
	return func(o *loaderOptions) {
		o.validator = v
	}
}

// WithColoredErrors enables ANSI colors in the source annotations of errors.
func WithColoredErrors(colored bool) LoaderOpt {
	return func(o *loaderOptions) {
		o.colored = colored
	}
}

// Loader validates and decodes configuration data for any config type T.
type Loader[T v1beta1.Object] struct {
	validator Validator
	newFunc   func() T
	yamlError *yaml.ErrorWrapper
	data      []byte
}

// NewLoaderFromBytes creates a [Loader] from byte data.
// The newFunc parameter is the constructor for an empty T.
func NewLoaderFromBytes[T v1beta1.Object](
	data []byte,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) *Loader[T] {
	options := &loaderOptions{
		validator: defaultValidator,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Loader[T]{
		data:      data,
		newFunc:   newFunc,
		validator: options.validator,
		yamlError: yaml.NewErrorWrapper(
			yaml.WithSource(data),
			yaml.WithColor(options.colored),
		),
	}
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) (*Loader[T], error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	return NewLoaderFromBytes(data, newFunc, defaultValidator, opts...), nil
}

// Data returns the raw configuration data.
func (l *Loader[T]) Data() []byte {
	return l.data
}

// Validate validates the configuration data against the schema.
func (l *Loader[T]) Validate() error {
	var anyConfig any

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(&anyConfig)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	if l.validator != nil {
		err = l.validator.Validate(anyConfig)
		if err != nil {
			return l.yamlError.Wrap(err)
		}
	}

	return nil
}

// Load validates, decodes and defaults the configuration, then runs any Go
// validation T implements.
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) Load() (T, error) {
	var zero T

	err := l.Validate()
	if err != nil {
		return zero, err
	}

	cfg := l.newFunc()

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err = dec.Decode(cfg)
	if err != nil {
		return zero, l.yamlError.Wrap(err)
	}

	cfg.EnsureDefaults()

	if gv, ok := any(cfg).(GoValidator); ok {
		err = gv.Validate()
		if err != nil {
			return zero, l.yamlError.Wrap(err)
		}
	}

	return cfg, nil
}

// Load reads, validates and decodes the configuration file at path.
func Load(path string, opts ...LoaderOpt) (*Config, error) {
	v, err := DefaultValidator()
	if err != nil {
		return nil, err
	}

	l, err := NewLoaderFromFile(path, func() *Config { return &Config{} }, v, opts...)
	if err != nil {
		return nil, err
	}

	return l.Load()
}

// Parse validates and decodes configuration data.
func Parse(data []byte, opts ...LoaderOpt) (*Config, error) {
	v, err := DefaultValidator()
	if err != nil {
		return nil, err
	}

	return NewLoaderFromBytes(data, func() *Config { return &Config{} }, v, opts...).Load()
}
