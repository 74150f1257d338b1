package importers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkivist/heritage/internal/resolver"
)

const graphFixture = `0 HEAD
0 @I1@ INDI
1 NAME Erik /Berg/
1 SEX M
0 @I2@ INDI
1 NAME Karin /Berg/
1 SEX F
0 @I3@ INDI
1 SEX M
0 @I4@ INDI
1 SEX F
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 CHIL @I4@
0 TRLR
`

func graphResolver(t *testing.T) resolver.Resolver {
	t.Helper()
	ctx := context.Background()
	res := resolver.NewMemory()
	for i, xref := range []string{"I1", "I2", "I3", "I4", "F1"} {
		require.NoError(t, res.Put(ctx, xref, uint(i+1)))
	}
	return res
}

func TestGraphImporter_Import(t *testing.T) {
	ctx := context.Background()
	set := parseFixture(t, graphFixture)
	store := &mockGraphStore{}
	gi := NewGraphImporter(store, testLogger())

	result, err := gi.Import(ctx, set, graphResolver(t), 1)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Nodes)
	// 1 spouse + 2 parents x 2 children + 1 sibling pair.
	assert.Equal(t, 6, result.Edges)
	assert.True(t, result.Persisted["I1"])
	assert.True(t, result.Persisted["I4"])

	assert.Equal(t, 4, store.countContaining("MERGE (p:Person"))
	assert.Equal(t, 1, store.countContaining("SPOUSE_OF"))
	assert.Equal(t, 4, store.countContaining("PARENT_OF"))
	assert.Equal(t, 1, store.countContaining("SIBLING_OF"))
}

func TestGraphImporter_UnresolvedIndividualSkipped(t *testing.T) {
	ctx := context.Background()
	set := parseFixture(t, `0 HEAD
0 @I1@ INDI
1 SEX M
0 @I2@ INDI
1 SEX F
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
0 TRLR
`)

	// Only I1 ever resolved; I2 gets no node and the spouse edge is skipped.
	res := resolver.NewMemory()
	require.NoError(t, res.Put(ctx, "I1", 1))

	store := &mockGraphStore{}
	gi := NewGraphImporter(store, testLogger())

	result, err := gi.Import(ctx, set, res, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Nodes)
	assert.Equal(t, 0, result.Edges)
	assert.False(t, result.Persisted["I2"])
	assert.Equal(t, 0, store.countContaining("SPOUSE_OF"))
}

func TestGraphImporter_FailureRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	set := parseFixture(t, graphFixture)
	store := &mockGraphStore{failOn: "SIBLING_OF"}
	gi := NewGraphImporter(store, testLogger())

	result, err := gi.Import(ctx, set, graphResolver(t), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rolled back")

	// Nothing survives a failed transaction, counts included.
	assert.Equal(t, 0, result.Nodes)
	assert.Equal(t, 0, result.Edges)
	assert.Empty(t, result.Persisted)
	assert.Empty(t, store.queries)
}
