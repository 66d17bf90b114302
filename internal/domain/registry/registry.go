package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Registry errors
var (
	ErrDuplicateVersion = errors.New("duplicate version for registry")
	ErrUnknownVersion   = errors.New("unknown version for registry")
	ErrNilSpec          = errors.New("spec cannot be nil")
	ErrSealed           = errors.New("registry is sealed")
)

// DuplicateVersionError is returned by Register when the (registry, version)
// pair is already declared. It matches ErrDuplicateVersion.
type DuplicateVersionError struct {
	Registry string
	Version  string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("%s: version %q is already registered", e.Registry, e.Version)
}

// Is reports whether target is ErrDuplicateVersion.
func (e *DuplicateVersionError) Is(target error) bool {
	return target == ErrDuplicateVersion
}

// UnknownVersionError is returned by Lookup when the version key (or the
// registry itself) is not declared. It matches ErrUnknownVersion.
type UnknownVersionError struct {
	Registry string
	Version  string
	Known    []string // versions declared for Registry, empty if the registry is unknown
}

func (e *UnknownVersionError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("%s: unknown registry (version %q)", e.Registry, e.Version)
	}
	return fmt.Sprintf("%s: unknown version %q (known: %s)", e.Registry, e.Version, strings.Join(e.Known, ", "))
}

// Is reports whether target is ErrUnknownVersion.
func (e *UnknownVersionError) Is(target error) bool {
	return target == ErrUnknownVersion
}

// Registry holds record specs for every report kind, keyed by registry name
// and then by version key. Registries are populated at startup and sealed;
// a sealed Registry is never written again, so concurrent reads need no
// locking.
type Registry struct {
	specs    map[string]map[string]*RecordSpec
	names    []string            // registry names in registration order
	versions map[string][]string // registry -> version keys in registration order
	sealed   bool
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		specs:    make(map[string]map[string]*RecordSpec),
		names:    make([]string, 0),
		versions: make(map[string][]string),
	}
}

// Register adds a spec under its registry name and version key.
// Returns *DuplicateVersionError if the pair is already declared and
// ErrSealed once the registry has been sealed.
func (r *Registry) Register(spec *RecordSpec) error {
	if spec == nil {
		return ErrNilSpec
	}
	if r.sealed {
		return fmt.Errorf("register %s: %w", spec.Identifier(), ErrSealed)
	}

	byVersion, ok := r.specs[spec.registry]
	if !ok {
		byVersion = make(map[string]*RecordSpec)
		r.specs[spec.registry] = byVersion
		r.names = append(r.names, spec.registry)
	}
	if _, exists := byVersion[spec.version]; exists {
		return &DuplicateVersionError{Registry: spec.registry, Version: spec.version}
	}

	byVersion[spec.version] = spec
	r.versions[spec.registry] = append(r.versions[spec.registry], spec.version)
	return nil
}

// MustRegister is like Register but panics on error. Duplicate static
// declarations are programmer errors and should stop the process at startup.
func (r *Registry) MustRegister(specs ...*RecordSpec) {
	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			panic(err)
		}
	}
}

// Seal marks the registry read-only. Sealing is idempotent.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed returns whether the registry has been sealed.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Lookup returns the spec registered for the registry and version key.
// An unknown key is always an error; Lookup never substitutes another version.
func (r *Registry) Lookup(registry, version string) (*RecordSpec, error) {
	if spec, ok := r.specs[registry][version]; ok {
		return spec, nil
	}
	return nil, &UnknownVersionError{
		Registry: registry,
		Version:  version,
		Known:    r.ListVersions(registry),
	}
}

// ListVersions returns the version keys of a registry in registration order.
// Returns an empty slice for an unknown registry.
func (r *Registry) ListVersions(registry string) []string {
	return slices.Clone(r.versions[registry])
}

// Registries returns all registry names in registration order
func (r *Registry) Registries() []string {
	return slices.Clone(r.names)
}

// List returns every registered spec, grouped by registry in registration order
func (r *Registry) List() []*RecordSpec {
	result := make([]*RecordSpec, 0)
	for _, name := range r.names {
		for _, version := range r.versions[name] {
			result = append(result, r.specs[name][version])
		}
	}
	return result
}
