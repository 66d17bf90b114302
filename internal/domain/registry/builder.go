package registry

import (
	"errors"
	"fmt"
	"slices"
)

// Builder errors
var (
	ErrEmptyRegistry  = errors.New("spec registry name cannot be empty")
	ErrEmptyVersion   = errors.New("spec version cannot be empty")
	ErrNoFields       = errors.New("spec must declare at least one field")
	ErrDuplicateField = errors.New("duplicate field name")
)

// Builder provides a fluent API for creating record specs
type Builder struct {
	registry    string
	version     string
	description string
	source      Source
	fields      []FieldSpec
}

// NewBuilder creates a new spec builder for the named registry
func NewBuilder(registry string) *Builder {
	return &Builder{
		registry: registry,
	}
}

// Version sets the version key
func (b *Builder) Version(v string) *Builder {
	b.version = v
	return b
}

// Description sets the spec description
func (b *Builder) Description(d string) *Builder {
	b.description = d
	return b
}

// Source sets where the declaration came from (default built-in)
func (b *Builder) Source(s Source) *Builder {
	b.source = s
	return b
}

// Field appends one field declaration
func (b *Builder) Field(f FieldSpec) *Builder {
	b.fields = append(b.fields, f)
	return b
}

// Fields appends field declarations in order
func (b *Builder) Fields(fs ...FieldSpec) *Builder {
	b.fields = append(b.fields, fs...)
	return b
}

// Build creates the spec, validating the declaration. The builder can be
// reused afterwards without affecting the returned spec.
func (b *Builder) Build() (*RecordSpec, error) {
	if b.registry == "" {
		return nil, ErrEmptyRegistry
	}
	if b.version == "" {
		return nil, ErrEmptyVersion
	}
	if len(b.fields) == 0 {
		return nil, ErrNoFields
	}

	fields := make([]FieldSpec, 0, len(b.fields))
	seen := make(map[string]bool, len(b.fields))
	for _, f := range b.fields {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if seen[f.name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, f.name)
		}
		seen[f.name] = true
		f.allowed = slices.Clone(f.allowed)
		fields = append(fields, f)
	}

	return newRecordSpec(b.registry, b.version, b.description, b.source, fields), nil
}

// MustBuild is like Build but panics on an invalid declaration. It is meant
// for static declarations compiled into the binary.
func (b *Builder) MustBuild() *RecordSpec {
	spec, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("registry: invalid declaration %s: %v", BuildIdentifier(b.registry, b.version), err))
	}
	return spec
}
