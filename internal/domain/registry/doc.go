// Package registry implements the domain layer for versioned report schemas.
//
// This package follows Domain-Driven Design (DDD) principles:
//   - Contains only pure Go code with standard library imports (no external dependencies)
//   - Defines entity types (RecordSpec, Registry) and value objects (FieldSpec, Identifier)
//   - Implements domain logic (declaration checks, record validation, schema diffs)
//   - Has no knowledge of infrastructure concerns (file I/O, YAML parsing, databases)
//
// # Core Types
//
// FieldSpec declares one named field with a Kind (string, number or enum) and
// optionality. Use String, Number, Enum and Optional to declare fields.
//
// RecordSpec is the ordered, immutable set of fields expected for one report
// version, identified by (registry name, version key). Use Builder for construction.
//
// Registry maps registry name and version key to a RecordSpec. Several report
// kinds live side by side, each with its own independent version set:
//   - Register adds a spec and fails with *DuplicateVersionError on redeclaration
//   - Lookup fails with *UnknownVersionError and never substitutes another version
//   - ListVersions and Registries enumerate declarations in registration order
//   - Seal freezes the registry so it can be read concurrently without locks
//
// # Validation
//
// Validate checks a RawRecord against a RecordSpec and returns either a
// ValidatedRecord holding exactly the declared fields, or a *ValidationFailure
// listing every MissingField, TypeMismatch and InvalidEnumValue violation.
// Undeclared fields are ignored so additive upstream changes do not break
// ingestion; ValidatedRecord.Dropped reports them for diagnostics.
//
// Diff reports added, removed and changed fields between two specs.
//
// Identifier strings address a spec as registry::version, for example
// applications-benchmarks::release-0.21.
package registry
