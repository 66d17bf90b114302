package flags

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/benchschema/internal/log"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "known flag set to true returns true",
			registry: New(map[string]bool{FlagWarnUndeclaredFields: true}),
			flag:     FlagWarnUndeclaredFields,
			expected: true,
		},
		{
			name:     "known flag set to false returns false",
			registry: New(map[string]bool{FlagJSONSchemaCrossCheck: false}),
			flag:     FlagJSONSchemaCrossCheck,
			expected: false,
		},
		{
			name:     "unset flag returns false",
			registry: New(map[string]bool{FlagWarnUndeclaredFields: true}),
			flag:     FlagJSONSchemaCrossCheck,
			expected: false,
		},
		{
			name:     "nil registry returns false",
			registry: nil,
			flag:     FlagWarnUndeclaredFields,
			expected: false,
		},
		{
			name:     "nil flags map returns false",
			registry: New(nil),
			flag:     FlagWarnUndeclaredFields,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_All(t *testing.T) {
	require.Equal(t, map[string]bool{}, (*Registry)(nil).All())
	require.Equal(t, map[string]bool{}, New(nil).All())
	require.Equal(t,
		map[string]bool{FlagWarnUndeclaredFields: true, FlagJSONSchemaCrossCheck: false},
		New(map[string]bool{FlagWarnUndeclaredFields: true, FlagJSONSchemaCrossCheck: false}).All(),
	)
}

func TestRegistry_IsolatedFromInputAndOutput(t *testing.T) {
	input := map[string]bool{FlagWarnUndeclaredFields: true}
	r := New(input)

	input[FlagWarnUndeclaredFields] = false
	require.True(t, r.Enabled(FlagWarnUndeclaredFields), "registry should not see input mutation")

	out := r.All()
	out[FlagJSONSchemaCrossCheck] = true
	require.False(t, r.Enabled(FlagJSONSchemaCrossCheck), "registry should not see copy mutation")
}

func TestNew_WarnsOnUnknownFlags(t *testing.T) {
	var buf bytes.Buffer
	log.InitWriter(&buf)
	t.Cleanup(log.Reset)

	r := New(map[string]bool{"session-resume": true})

	require.Contains(t, buf.String(), "[WARN] [config] Unknown feature flag in config flag=session-resume")
	require.True(t, r.Enabled("session-resume"))
}

func TestKnown(t *testing.T) {
	require.Equal(t, []string{"jsonschema-crosscheck", "warn-undeclared-fields"}, Known())
}
