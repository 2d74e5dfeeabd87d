package linkml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearizeMostSpecificFirst(t *testing.T) {
	classes := map[string]*ClassDef{
		"Animal": {},
		"Dog":    {IsA: "Animal"},
		"Puppy":  {IsA: "Dog"},
	}

	chain, err := linearize(classes, "Puppy")
	require.NoError(t, err)
	assert.Equal(t, []string{"Puppy", "Dog", "Animal"}, chain)
}

func TestLinearizeIncludesMixinsAfterIsA(t *testing.T) {
	classes := map[string]*ClassDef{
		"Named":    {},
		"Aged":     {},
		"Animal":   {},
		"Dog":      {IsA: "Animal", Mixins: []string{"Named", "Aged"}},
	}

	chain, err := linearize(classes, "Dog")
	require.NoError(t, err)

	assert.Equal(t, "Dog", chain[0])
	assert.Equal(t, []string{"Dog", "Animal", "Named", "Aged"}, chain)
	assert.Contains(t, chain, "Animal")
	assert.Contains(t, chain, "Named")
	assert.Contains(t, chain, "Aged")

	seen := make(map[string]int)
	for _, c := range chain {
		seen[c]++
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, "%s should appear exactly once in the linearization", name)
	}
}

func TestLinearizeDetectsCycle(t *testing.T) {
	classes := map[string]*ClassDef{
		"A": {IsA: "B"},
		"B": {IsA: "A"},
	}

	_, err := linearize(classes, "A")
	require.Error(t, err)

	schemaErr, ok := err.(*SchemaError)
	require.True(t, ok)
	assert.Equal(t, SchemaErrorLinearization, schemaErr.Code)
}

func TestLinearizeUndefinedAncestor(t *testing.T) {
	classes := map[string]*ClassDef{
		"Dog": {IsA: "Animal"},
	}

	_, err := linearize(classes, "Dog")
	require.Error(t, err)

	schemaErr, ok := err.(*SchemaError)
	require.True(t, ok)
	assert.Equal(t, SchemaErrorUndefinedRef, schemaErr.Code)
}
