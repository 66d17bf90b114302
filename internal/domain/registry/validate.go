package registry

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Validate checks a raw record against a spec.
//
// Every declared field is checked in declaration order:
//   - a required field that is absent is a MissingField violation
//   - a present value must already have the declared type; strings are never
//     coerced to numbers (TypeMismatch)
//   - an enum value must be an exact, case-sensitive member (InvalidEnumValue)
//   - an optional field that is absent or nil is skipped
//
// Fields present in raw but not declared are ignored and left out of the
// result. Returns the validated record, or a *ValidationFailure listing every
// violation. Validate is pure and safe for concurrent use.
func Validate(spec *RecordSpec, raw RawRecord) (*ValidatedRecord, error) {
	if spec == nil {
		return nil, ErrNilSpec
	}

	failure := &ValidationFailure{Spec: spec.Identifier()}
	values := make(map[string]any, len(spec.fields))

	for _, f := range spec.fields {
		v, present := raw[f.name]
		if !present || v == nil {
			if f.optional {
				continue
			}
			if !present {
				failure.Add(f.name, ReasonMissingField, "required field is missing")
			} else {
				failure.Add(f.name, ReasonTypeMismatch, fmt.Sprintf("expected %s, got null", f.kind))
			}
			continue
		}

		typed, violation := checkValue(f, v)
		if violation != nil {
			failure.Violations = append(failure.Violations, violation)
			continue
		}
		values[f.name] = typed
	}

	if err := failure.ToError(); err != nil {
		return nil, err
	}

	var dropped []string
	for name := range raw {
		if _, declared := spec.index[name]; !declared {
			dropped = append(dropped, name)
		}
	}
	sort.Strings(dropped)

	return &ValidatedRecord{spec: spec, values: values, dropped: dropped}, nil
}

// checkValue type-checks one present, non-nil value.
func checkValue(f FieldSpec, v any) (any, *Violation) {
	switch f.kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(f, v)
		}
		return s, nil

	case KindNumber:
		n, ok := asNumber(v)
		if !ok {
			return nil, mismatch(f, v)
		}
		return n, nil

	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(f, v)
		}
		if !f.Allows(s) {
			return nil, &Violation{
				Field:   f.name,
				Reason:  ReasonInvalidEnumValue,
				Message: fmt.Sprintf("%q is not one of {%s}", s, strings.Join(f.allowed, ", ")),
			}
		}
		return s, nil

	default:
		return nil, &Violation{Field: f.name, Reason: ReasonTypeMismatch, Message: ErrInvalidKind.Error()}
	}
}

func mismatch(f FieldSpec, v any) *Violation {
	return &Violation{
		Field:   f.name,
		Reason:  ReasonTypeMismatch,
		Message: fmt.Sprintf("expected %s, got %s", f.kind, describeType(v)),
	}
}

// NumberValue returns v as float64 when Validate would accept it for a
// number field.
func NumberValue(v any) (float64, bool) {
	return asNumber(v)
}

// asNumber accepts Go numeric kinds and json.Number, normalized to float64.
// NaN and infinities are rejected since no report serializer emits them.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// describeType names the type of a raw value for violation messages.
func describeType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case json.Number, float32, float64:
		if _, ok := asNumber(v); !ok {
			return "malformed or non-finite number"
		}
		return "number"
	}
	if _, ok := asNumber(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
