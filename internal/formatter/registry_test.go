package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBaselinedRegistry() *Registry {
	r := NewRegistry()
	r.MarkBaseline()
	return r
}

func TestMarkBaselineFlagsEverything(t *testing.T) {
	r := newBaselinedRegistry()
	defaults := r.SnapshotDefaults()
	assert.Equal(t, r.Len(), len(defaults))
	assert.Contains(t, defaults, "upper")
	assert.Contains(t, defaults, "round")
}

func TestAddCustomThenResetRestoresBaseline(t *testing.T) {
	r := newBaselinedRegistry()
	baselineLen := r.Len()

	r.AddCustom(Set{"shout": func(v any, _ []string) (any, error) { return v, nil }})
	_, ok := r.Lookup("shout")
	require.True(t, ok, "custom formatter should be live after AddCustom")
	assert.Equal(t, baselineLen+1, r.Len())

	r.Reset()
	_, ok = r.Lookup("shout")
	assert.False(t, ok, "custom formatter must not survive Reset")
	assert.Equal(t, baselineLen, r.Len())
}

func TestReplaceAllKeepsDefaultFlagsFromBaseline(t *testing.T) {
	r := newBaselinedRegistry()

	custom := func(v any, _ []string) (any, error) { return v, nil }
	set := r.SnapshotDefaults()
	set["shout"] = custom
	r.ReplaceAll(set)

	// Only baseline members keep the default flag; the custom entry does not.
	defaults := r.SnapshotDefaults()
	assert.NotContains(t, defaults, "shout")
	assert.Contains(t, defaults, "upper")
}

func TestResetDiscardsShadowedBuiltins(t *testing.T) {
	r := newBaselinedRegistry()

	// A request overrides a builtin name for its own duration.
	r.AddCustom(Set{"upper": func(v any, _ []string) (any, error) { return "shadowed", nil }})
	fn, ok := r.Lookup("upper")
	require.True(t, ok)
	got, err := fn("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "shadowed", got)

	r.Reset()
	fn, ok = r.Lookup("upper")
	require.True(t, ok)
	got, err = fn("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "X", got, "Reset must restore the baseline builtin, not the override")
}

func TestLiveIsACopy(t *testing.T) {
	r := newBaselinedRegistry()
	live := r.Live()
	live["injected"] = func(v any, _ []string) (any, error) { return v, nil }

	_, ok := r.Lookup("injected")
	assert.False(t, ok, "mutating the Live copy must not touch the registry")
}
