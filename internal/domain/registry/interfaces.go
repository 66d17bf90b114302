package registry

// Provider defines read-only access to a registry of record specs.
type Provider interface {
	// Lookup returns the spec for a registry and version key.
	// Returns *UnknownVersionError if no spec matches.
	Lookup(registry, version string) (*RecordSpec, error)

	// ListVersions returns the version keys of a registry in registration order.
	ListVersions(registry string) []string

	// Registries returns all registry names in registration order.
	Registries() []string

	// List returns every registered spec.
	List() []*RecordSpec
}

// Compile-time check that Registry implements Provider.
var _ Provider = (*Registry)(nil)
