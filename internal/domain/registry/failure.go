package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Reason classifies why a field failed validation.
type Reason string

const (
	// ReasonMissingField means a required field was absent.
	ReasonMissingField Reason = "MissingField"
	// ReasonTypeMismatch means a present value was not of the declared type.
	ReasonTypeMismatch Reason = "TypeMismatch"
	// ReasonInvalidEnumValue means a string was not a member of the enum.
	ReasonInvalidEnumValue Reason = "InvalidEnumValue"
)

// Per-field validation sentinels. A *Violation matches the sentinel of its Reason.
var (
	ErrMissingField     = errors.New("missing field")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrInvalidEnumValue = errors.New("invalid enum value")
)

// sentinel returns the error a reason matches via errors.Is.
func (r Reason) sentinel() error {
	switch r {
	case ReasonMissingField:
		return ErrMissingField
	case ReasonTypeMismatch:
		return ErrTypeMismatch
	case ReasonInvalidEnumValue:
		return ErrInvalidEnumValue
	default:
		return nil
	}
}

// Violation is one failed field of a record.
type Violation struct {
	Field   string // declared field name
	Reason  Reason
	Message string // human-readable detail, e.g. the allowed enum set
}

func (v *Violation) Error() string {
	if v.Message == "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", v.Field, v.Reason, v.Message)
}

// Is reports whether target is the sentinel for the violation's reason.
func (v *Violation) Is(target error) bool {
	s := v.Reason.sentinel()
	return s != nil && target == s
}

// ValidationFailure collects every violation of one record, in field
// declaration order. It is returned as an error by Validate.
type ValidationFailure struct {
	Spec       string // identifier of the spec the record was checked against
	Violations []*Violation
}

func (e *ValidationFailure) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s: %s", e.Spec, e.Violations[0].Error())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d validation errors:", e.Spec, len(e.Violations))
	for _, v := range e.Violations {
		fmt.Fprintf(&b, "\n  - %s", v.Error())
	}
	return b.String()
}

// Unwrap returns the underlying violations for errors.Is/As compatibility.
func (e *ValidationFailure) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}

// Add appends a violation.
func (e *ValidationFailure) Add(field string, reason Reason, message string) {
	e.Violations = append(e.Violations, &Violation{Field: field, Reason: reason, Message: message})
}

// HasViolations returns true if any violations were collected.
func (e *ValidationFailure) HasViolations() bool {
	return len(e.Violations) > 0
}

// Fields returns the names of the failed fields in report order.
func (e *ValidationFailure) Fields() []string {
	names := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		names[i] = v.Field
	}
	return names
}

// Count returns how many violations have the given reason.
func (e *ValidationFailure) Count(reason Reason) int {
	n := 0
	for _, v := range e.Violations {
		if v.Reason == reason {
			n++
		}
	}
	return n
}

// ToError returns nil if no violations, otherwise returns self.
func (e *ValidationFailure) ToError() error {
	if !e.HasViolations() {
		return nil
	}
	return e
}
