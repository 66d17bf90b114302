package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind identifies the value type a field accepts.
type Kind int

const (
	// KindString accepts string values only.
	KindString Kind = iota
	// KindNumber accepts Go integer and float kinds and json.Number.
	KindNumber
	// KindEnum accepts strings that are members of an allowed set.
	KindEnum
)

// Field errors
var (
	ErrInvalidKind    = errors.New("field type must be string, number, or enum")
	ErrEmptyFieldName = errors.New("field name cannot be empty")
	ErrEmptyEnum      = errors.New("enum field must allow at least one value")
)

// String returns the declaration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// IsValid returns true if the kind is a known kind.
func (k Kind) IsValid() bool {
	return k == KindString || k == KindNumber || k == KindEnum
}

// ParseKind converts a declaration name ("string", "number", "enum") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "number":
		return KindNumber, nil
	case "enum":
		return KindEnum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// FieldSpec declares one named, typed field of a record.
// FieldSpec is a value type; constructors copy their inputs so a declared
// field never aliases caller-owned slices.
type FieldSpec struct {
	name        string
	kind        Kind
	allowed     []string // enum members in declaration order
	optional    bool
	description string
}

// String declares a required string field.
func String(name string) FieldSpec {
	return FieldSpec{name: name, kind: KindString}
}

// Number declares a required number field.
func Number(name string) FieldSpec {
	return FieldSpec{name: name, kind: KindNumber}
}

// Enum declares a required string field restricted to the allowed values.
// Matching is exact and case-sensitive.
func Enum(name string, allowed ...string) FieldSpec {
	return FieldSpec{name: name, kind: KindEnum, allowed: slices.Clone(allowed)}
}

// Optional marks a field as optional: absence is not a violation, but a
// present value is checked like any other field.
func Optional(f FieldSpec) FieldSpec {
	f.allowed = slices.Clone(f.allowed)
	f.optional = true
	return f
}

// Describe returns a copy of the field with a human-readable description.
func (f FieldSpec) Describe(description string) FieldSpec {
	f.allowed = slices.Clone(f.allowed)
	f.description = description
	return f
}

// Name returns the field name.
func (f FieldSpec) Name() string {
	return f.name
}

// Kind returns the value type of the field.
func (f FieldSpec) Kind() Kind {
	return f.kind
}

// IsOptional returns whether the field may be absent.
func (f FieldSpec) IsOptional() bool {
	return f.optional
}

// Description returns the field description.
func (f FieldSpec) Description() string {
	return f.description
}

// Allowed returns a copy of the enum members. Nil for non-enum fields.
func (f FieldSpec) Allowed() []string {
	return slices.Clone(f.allowed)
}

// Allows reports whether v is an enum member of the field.
func (f FieldSpec) Allows(v string) bool {
	return slices.Contains(f.allowed, v)
}

// TypeName renders the field type the way declarations spell it,
// e.g. "string", "enum{Success,BuildFail}", "optional<number>".
func (f FieldSpec) TypeName() string {
	name := f.kind.String()
	if f.kind == KindEnum {
		name = "enum{" + strings.Join(f.allowed, ",") + "}"
	}
	if f.optional {
		return "optional<" + name + ">"
	}
	return name
}

// Equal reports whether two fields have the same name, type and optionality.
// Descriptions are documentation and do not take part in the comparison.
func (f FieldSpec) Equal(other FieldSpec) bool {
	return f.name == other.name &&
		f.kind == other.kind &&
		f.optional == other.optional &&
		slices.Equal(f.allowed, other.allowed)
}

// validate checks the declaration itself.
func (f FieldSpec) validate() error {
	if f.name == "" {
		return ErrEmptyFieldName
	}
	if !f.kind.IsValid() {
		return fmt.Errorf("field %s: %w", f.name, ErrInvalidKind)
	}
	if f.kind == KindEnum && len(f.allowed) == 0 {
		return fmt.Errorf("field %s: %w", f.name, ErrEmptyEnum)
	}
	return nil
}
