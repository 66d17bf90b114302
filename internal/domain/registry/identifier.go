package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Identifier errors
var (
	ErrInvalidIdentifier = errors.New("invalid identifier format")
)

// IdentifierParts holds the parsed components of an identifier
type IdentifierParts struct {
	Registry string
	Version  string
}

// ParseIdentifier parses a double-colon-separated identifier into components.
// Format: {registry}::{version}
// Example: applications-benchmarks::release-0.21
//
// A bare registry name is accepted when defaultVersion is non-empty, so
// single-schema registries can be addressed as "datasheet".
func ParseIdentifier(id, defaultVersion string) (*IdentifierParts, error) {
	if id == "" {
		return nil, ErrInvalidIdentifier
	}

	parts := strings.Split(id, "::")

	switch len(parts) {
	case 1:
		if defaultVersion == "" {
			return nil, fmt.Errorf("%w: %q has no version", ErrInvalidIdentifier, id)
		}
		return &IdentifierParts{Registry: parts[0], Version: defaultVersion}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
		}
		return &IdentifierParts{Registry: parts[0], Version: parts[1]}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
}

// BuildIdentifier constructs an identifier string from components
func BuildIdentifier(registry, version string) string {
	return fmt.Sprintf("%s::%s", registry, version)
}
