// Package flags provides feature flags read from the "flags" config section.
// Flags are read-only after initialization and unknown flags are disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/benchschema/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagWarnUndeclaredFields logs the undeclared fields dropped from each
	// record during batch validation.
	FlagWarnUndeclaredFields = "warn-undeclared-fields"

	// FlagJSONSchemaCrossCheck re-checks every record against the exported
	// JSON Schema during batch validation and logs any disagreement.
	FlagJSONSchemaCrossCheck = "jsonschema-crosscheck"
)

// Known returns the names of every flag this build understands, sorted.
func Known() []string {
	return []string{FlagJSONSchemaCrossCheck, FlagWarnUndeclaredFields}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. The map is copied.
// If flags is nil, every flag is disabled.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)

	known := Known()
	for name := range r.flags {
		if !slices.Contains(known, name) {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags and on a nil registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
