package registry

import "slices"

// Source indicates where a schema declaration originated from.
type Source int

const (
	// SourceBuiltIn indicates a declaration compiled into the binary.
	SourceBuiltIn Source = iota
	// SourceUser indicates a declaration loaded from a user schema file.
	SourceUser
)

// String returns a human-readable representation of the Source.
func (s Source) String() string {
	switch s {
	case SourceBuiltIn:
		return "built-in"
	case SourceUser:
		return "user"
	default:
		return "unknown"
	}
}

// RecordSpec is the declared shape of one report version: an ordered set of
// uniquely named fields. A RecordSpec is immutable once built.
type RecordSpec struct {
	registry    string         // e.g., "applications-benchmarks"
	version     string         // e.g., "release-0.21"
	description string         // e.g., "Application benchmarks for the 0.21 release"
	source      Source         // origin of the declaration
	fields      []FieldSpec    // declaration order
	index       map[string]int // field name -> position in fields
}

// newRecordSpec creates a spec (used by builder). Fields must already be validated.
func newRecordSpec(registry, version, description string, source Source, fields []FieldSpec) *RecordSpec {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.name] = i
	}
	return &RecordSpec{
		registry:    registry,
		version:     version,
		description: description,
		source:      source,
		fields:      fields,
		index:       index,
	}
}

// Registry returns the name of the registry the spec belongs to.
func (s *RecordSpec) Registry() string {
	return s.registry
}

// Version returns the version key of the spec.
func (s *RecordSpec) Version() string {
	return s.version
}

// Identifier returns the registry::version identifier of the spec.
func (s *RecordSpec) Identifier() string {
	return BuildIdentifier(s.registry, s.version)
}

// Description returns the spec description.
func (s *RecordSpec) Description() string {
	return s.description
}

// Source returns the spec's source (built-in or user).
func (s *RecordSpec) Source() Source {
	return s.source
}

// Fields returns a copy of the declared fields in declaration order.
func (s *RecordSpec) Fields() []FieldSpec {
	return slices.Clone(s.fields)
}

// Field returns the named field.
func (s *RecordSpec) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Len returns the number of declared fields.
func (s *RecordSpec) Len() int {
	return len(s.fields)
}

// Required returns the names of the non-optional fields in declaration order.
func (s *RecordSpec) Required() []string {
	names := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		if !f.optional {
			names = append(names, f.name)
		}
	}
	return names
}

// Equal reports whether two specs declare the same fields in the same order.
// Identity (registry, version) and descriptions are not compared, so two
// versions that currently share a shape compare equal while remaining
// distinct entries.
func (s *RecordSpec) Equal(other *RecordSpec) bool {
	if s == nil || other == nil {
		return s == other
	}
	return slices.EqualFunc(s.fields, other.fields, FieldSpec.Equal)
}
