// Package versions orders report version keys and picks the latest one.
//
// Version keys come in two flavors: release keys such as "release-0.21",
// "v1.2.0" or "1.0" that carry a semantic version, and channel keys such as
// "main" or "default" that do not. Channels sort before every release so the
// latest key of a mixed set is its newest published release.
package versions

import (
	"slices"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// releasePrefixes are stripped before parsing a key as a semantic version.
var releasePrefixes = []string{"release-", "release/", "v"}

// Resolver answers "which version is latest" over an ordered list of keys.
type Resolver struct {
	ordered []string // oldest first
}

// NewResolver creates a resolver over keys ordered oldest to newest.
// The slice is copied.
func NewResolver(ordered []string) *Resolver {
	return &Resolver{ordered: slices.Clone(ordered)}
}

// FromKeys creates a resolver over unordered keys, ordering them with Order.
func FromKeys(keys []string) *Resolver {
	return &Resolver{ordered: Order(keys)}
}

// Latest returns the newest key, or false when there are no keys.
func (r *Resolver) Latest() (string, bool) {
	if len(r.ordered) == 0 {
		return "", false
	}
	return r.ordered[len(r.ordered)-1], true
}

// Ordered returns a copy of the keys, oldest first.
func (r *Resolver) Ordered() []string {
	return slices.Clone(r.ordered)
}

// Parse returns the semantic version carried by a release key.
// ok is false for channel keys.
func Parse(key string) (*semver.Version, bool) {
	candidate := key
	for _, prefix := range releasePrefixes {
		if strings.HasPrefix(candidate, prefix) {
			candidate = strings.TrimPrefix(candidate, prefix)
			break
		}
	}
	v, err := semver.NewVersion(candidate)
	if err != nil {
		return nil, false
	}
	return v, true
}

// IsRelease reports whether key carries a semantic version.
func IsRelease(key string) bool {
	_, ok := Parse(key)
	return ok
}

// Order returns the keys sorted oldest to newest: channel keys first in
// lexical order, then release keys by semantic version. Releases with equal
// versions (e.g. "release-1.0" and "v1.0.0") fall back to lexical order so
// the result is deterministic. Duplicate keys are kept.
func Order(keys []string) []string {
	type entry struct {
		key string
		v   *semver.Version
	}

	entries := make([]entry, len(keys))
	for i, k := range keys {
		v, _ := Parse(k)
		entries[i] = entry{key: k, v: v}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.v == nil && b.v == nil:
			return a.key < b.key
		case a.v == nil:
			return true
		case b.v == nil:
			return false
		}
		if c := a.v.Compare(b.v); c != 0 {
			return c < 0
		}
		return a.key < b.key
	})

	ordered := make([]string, len(entries))
	for i, e := range entries {
		ordered[i] = e.key
	}
	return ordered
}

// Latest orders keys and returns the newest one.
func Latest(keys []string) (string, bool) {
	return FromKeys(keys).Latest()
}
