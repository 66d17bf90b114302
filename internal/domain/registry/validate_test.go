package registry

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var benchmarkFields = []string{"name", "size", "speed", "total_duration", "total_cycles", "user_cycles", "proof_bytes"}

func benchmarkSpec(t *testing.T) *RecordSpec {
	t.Helper()
	b := NewBuilder("applications-benchmarks").Version("main")
	for _, name := range benchmarkFields {
		b.Field(String(name))
	}
	spec, err := b.Build()
	require.NoError(t, err)
	return spec
}

func statusSpec(t *testing.T) *RecordSpec {
	t.Helper()
	return mkSpec(t, "crates-io-validation", "default",
		String("name"),
		String("version"),
		Enum("status", "Success", "BuildFail", "RunFail", "Skipped"),
		String("custom_profile"),
		Optional(String("build_errors")),
	)
}

func datasheetSpec(t *testing.T) *RecordSpec {
	t.Helper()
	return mkSpec(t, "datasheet", "default", String("name"), Number("cycles"), Number("ram"))
}

func sha256Record() RawRecord {
	return RawRecord{
		"name":           "sha256",
		"size":           "1MB",
		"speed":          "120",
		"total_duration": "1.2s",
		"total_cycles":   "3000",
		"user_cycles":    "2000",
		"proof_bytes":    "512",
	}
}

func TestValidate_ExampleRecord(t *testing.T) {
	rec, err := Validate(benchmarkSpec(t), sha256Record())

	require.NoError(t, err)
	require.Equal(t, benchmarkFields, rec.Names())
	name, ok := rec.String("name")
	require.True(t, ok)
	require.Equal(t, "sha256", name)
	require.Empty(t, rec.Dropped())
}

func TestValidate_ExampleRecordMissingProofBytes(t *testing.T) {
	raw := sha256Record()
	delete(raw, "proof_bytes")

	rec, err := Validate(benchmarkSpec(t), raw)

	require.Nil(t, rec)
	require.ErrorIs(t, err, ErrMissingField)
	var failure *ValidationFailure
	require.True(t, errors.As(err, &failure))
	require.Len(t, failure.Violations, 1)
	require.Equal(t, "proof_bytes", failure.Violations[0].Field)
	require.Equal(t, ReasonMissingField, failure.Violations[0].Reason)
	require.Equal(t, "applications-benchmarks::main", failure.Spec)
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	raw := RawRecord{
		"name":    "serde",
		"version": 1.0,       // wrong type
		"status":  "Pending", // not in enum
		// custom_profile missing
	}

	_, err := Validate(statusSpec(t), raw)

	var failure *ValidationFailure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, []string{"version", "status", "custom_profile"}, failure.Fields())
	require.Equal(t, 1, failure.Count(ReasonTypeMismatch))
	require.Equal(t, 1, failure.Count(ReasonInvalidEnumValue))
	require.Equal(t, 1, failure.Count(ReasonMissingField))
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.ErrorIs(t, err, ErrInvalidEnumValue)
	require.ErrorIs(t, err, ErrMissingField)
	require.Contains(t, err.Error(), "3 validation errors")
}

func TestValidate_StatusEnum(t *testing.T) {
	spec := statusSpec(t)
	base := func(status any) RawRecord {
		return RawRecord{"name": "serde", "version": "1.0.0", "status": status, "custom_profile": "release"}
	}

	for _, s := range []string{"Success", "BuildFail", "RunFail", "Skipped"} {
		t.Run(s, func(t *testing.T) {
			rec, err := Validate(spec, base(s))
			require.NoError(t, err)
			got, _ := rec.String("status")
			require.Equal(t, s, got)
		})
	}

	for _, s := range []any{"Pending", "success", "SUCCESS", " Success", ""} {
		_, err := Validate(spec, base(s))
		require.ErrorIs(t, err, ErrInvalidEnumValue, "status %q", s)
		require.Contains(t, err.Error(), "Success, BuildFail, RunFail, Skipped")
	}

	_, err := Validate(spec, base(3))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValidate_OptionalField(t *testing.T) {
	spec := statusSpec(t)
	raw := RawRecord{"name": "serde", "version": "1.0.0", "status": "BuildFail", "custom_profile": "release"}

	rec, err := Validate(spec, raw)
	require.NoError(t, err)
	require.False(t, rec.Has("build_errors"))

	raw["build_errors"] = nil
	rec, err = Validate(spec, raw)
	require.NoError(t, err)
	require.False(t, rec.Has("build_errors"))

	raw["build_errors"] = "error[E0425]"
	rec, err = Validate(spec, raw)
	require.NoError(t, err)
	got, _ := rec.String("build_errors")
	require.Equal(t, "error[E0425]", got)

	raw["build_errors"] = 12
	_, err = Validate(spec, raw)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValidate_NullRequiredFieldIsTypeMismatch(t *testing.T) {
	raw := sha256Record()
	raw["speed"] = nil

	_, err := Validate(benchmarkSpec(t), raw)

	var failure *ValidationFailure
	require.True(t, errors.As(err, &failure))
	require.Len(t, failure.Violations, 1)
	require.Equal(t, ReasonTypeMismatch, failure.Violations[0].Reason)
	require.Contains(t, failure.Violations[0].Message, "null")
}

func TestValidate_NoStringToNumberCoercion(t *testing.T) {
	_, err := Validate(datasheetSpec(t), RawRecord{"name": "loop", "cycles": "1024", "ram": 256})

	var failure *ValidationFailure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, []string{"cycles"}, failure.Fields())
	require.Contains(t, failure.Violations[0].Message, "expected number, got string")
}

func TestValidate_NumberKinds(t *testing.T) {
	spec := datasheetSpec(t)
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float64", 1.5, 1.5},
		{"int", 7, 7},
		{"int64", int64(1 << 40), float64(1 << 40)},
		{"uint32", uint32(9), 9},
		{"float32", float32(0.5), 0.5},
		{"json.Number", json.Number("2.25"), 2.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Validate(spec, RawRecord{"name": "loop", "cycles": tt.value, "ram": 1})
			require.NoError(t, err)
			got, ok := rec.Number("cycles")
			require.True(t, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_RejectsMalformedNumbers(t *testing.T) {
	spec := datasheetSpec(t)
	for _, v := range []any{json.Number("12abc"), math.NaN(), math.Inf(1), true} {
		_, err := Validate(spec, RawRecord{"name": "loop", "cycles": v, "ram": 1})
		require.ErrorIs(t, err, ErrTypeMismatch, "value %v", v)
	}
}

func TestValidate_ExtraFieldsAreDropped(t *testing.T) {
	raw := sha256Record()
	raw["gpu"] = "A100"
	raw["session_uuid"] = "abc"

	rec, err := Validate(benchmarkSpec(t), raw)

	require.NoError(t, err)
	require.False(t, rec.Has("gpu"))
	require.NotContains(t, rec.Map(), "session_uuid")
	require.Equal(t, []string{"gpu", "session_uuid"}, rec.Dropped())
	require.Len(t, rec.Map(), len(benchmarkFields))
}

func TestValidate_NilSpec(t *testing.T) {
	_, err := Validate(nil, RawRecord{})
	require.ErrorIs(t, err, ErrNilSpec)
}

// TestValidate_MissingFieldProperty checks that removing any subset of
// required fields yields exactly one MissingField per removed field and no
// violation for the fields that stayed.
func TestValidate_MissingFieldProperty(t *testing.T) {
	spec := benchmarkSpec(t)

	rapid.Check(t, func(rt *rapid.T) {
		raw := sha256Record()
		removed := make(map[string]bool)
		for _, name := range benchmarkFields {
			if rapid.Bool().Draw(rt, "drop_"+name) {
				delete(raw, name)
				removed[name] = true
			}
		}

		rec, err := Validate(spec, raw)
		if len(removed) == 0 {
			if err != nil || rec == nil {
				rt.Fatalf("complete record failed: %v", err)
			}
			return
		}

		var failure *ValidationFailure
		if !errors.As(err, &failure) {
			rt.Fatalf("expected ValidationFailure, got %v", err)
		}
		if failure.Count(ReasonMissingField) != len(removed) || len(failure.Violations) != len(removed) {
			rt.Fatalf("got %v, removed %v", failure.Fields(), removed)
		}
		for _, f := range failure.Fields() {
			if !removed[f] {
				rt.Fatalf("violation reported for present field %s", f)
			}
		}
	})
}

// TestValidate_WellTypedProperty checks that well-typed records with any
// amount of undeclared extras always validate and keep only declared fields.
func TestValidate_WellTypedProperty(t *testing.T) {
	spec := statusSpec(t)

	rapid.Check(t, func(rt *rapid.T) {
		raw := RawRecord{
			"name":           rapid.String().Draw(rt, "name"),
			"version":        rapid.String().Draw(rt, "version"),
			"status":         rapid.SampledFrom([]string{"Success", "BuildFail", "RunFail", "Skipped"}).Draw(rt, "status"),
			"custom_profile": rapid.String().Draw(rt, "profile"),
		}
		if rapid.Bool().Draw(rt, "with_errors") {
			raw["build_errors"] = rapid.String().Draw(rt, "build_errors")
		}
		extras := rapid.SliceOfDistinct(rapid.StringMatching(`x_[a-z]{1,8}`), rapid.ID[string]).Draw(rt, "extras")
		for _, e := range extras {
			raw[e] = rapid.Int().Draw(rt, "extra_value")
		}

		rec, err := Validate(spec, raw)
		if err != nil {
			rt.Fatalf("well-typed record failed: %v", err)
		}
		for name := range rec.Map() {
			if _, declared := spec.Field(name); !declared {
				rt.Fatalf("undeclared field %s kept", name)
			}
		}
		if len(rec.Dropped()) != len(extras) {
			rt.Fatalf("dropped %v, extras %v", rec.Dropped(), extras)
		}
	})
}
