package registry

import "slices"

// RawRecord is an untyped record as produced by a loader: field name to an
// already-deserialized scalar (string, Go number, json.Number, or nil).
type RawRecord map[string]any

// ValidatedRecord holds exactly the declared fields of a spec with correctly
// typed values: string for string and enum fields, float64 for number fields.
// Optional fields that were absent are not present.
type ValidatedRecord struct {
	spec    *RecordSpec
	values  map[string]any
	dropped []string
}

// Spec returns the spec the record was validated against.
func (r *ValidatedRecord) Spec() *RecordSpec {
	return r.spec
}

// Has reports whether the field holds a value.
func (r *ValidatedRecord) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Value returns the typed value of a field.
func (r *ValidatedRecord) Value(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// String returns a string or enum field value.
func (r *ValidatedRecord) String(name string) (string, bool) {
	v, ok := r.values[name].(string)
	return v, ok
}

// Number returns a number field value.
func (r *ValidatedRecord) Number(name string) (float64, bool) {
	v, ok := r.values[name].(float64)
	return v, ok
}

// Map returns a copy of the values keyed by field name.
func (r *ValidatedRecord) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Names returns the names of the fields holding a value, in declaration order.
func (r *ValidatedRecord) Names() []string {
	names := make([]string, 0, len(r.values))
	for _, f := range r.spec.fields {
		if _, ok := r.values[f.name]; ok {
			names = append(names, f.name)
		}
	}
	return names
}

// Dropped returns the sorted names of undeclared fields that were present in
// the raw record and ignored.
func (r *ValidatedRecord) Dropped() []string {
	return slices.Clone(r.dropped)
}
