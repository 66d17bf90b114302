// Package schemas declares the built-in report schemas.
//
// Each declaration is built from its own literal, so versions that currently
// share a shape (main and release-1.0) never share state and can diverge
// independently.
package schemas

import (
	"github.com/zjrosen/benchschema/internal/domain/registry"
)

// Registry names.
const (
	ApplicationsBenchmarks = "applications-benchmarks"
	Datasheet              = "datasheet"
	CratesIOValidation     = "crates-io-validation"
)

// DefaultVersion is the version key of registries without a version split.
const DefaultVersion = "default"

// Status values accepted by the crates-io-validation status field.
var CrateStatuses = []string{"Success", "BuildFail", "RunFail", "Skipped"}

// Builtins returns fresh built-in specs in registration order.
func Builtins() []*registry.RecordSpec {
	return []*registry.RecordSpec{
		applicationsMain(),
		applicationsRelease10(),
		applicationsRelease021(),
		datasheet(),
		cratesIOValidation(),
	}
}

// Register adds the built-in specs to reg. It fails on the first duplicate.
func Register(reg *registry.Registry) error {
	for _, spec := range Builtins() {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a sealed registry holding only the built-in specs.
func NewRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.MustRegister(Builtins()...)
	reg.Seal()
	return reg
}
