package importers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkivist/heritage/internal/resolver"
)

func TestDocumentImporter_Import(t *testing.T) {
	ctx := context.Background()
	res := resolver.NewMemory()
	require.NoError(t, res.Put(ctx, "I1", 11))
	require.NoError(t, res.Put(ctx, "I2", 12))
	require.NoError(t, res.Put(ctx, "F1", 21))
	require.NoError(t, res.Put(ctx, "N1", 31))

	set := parseFixture(t, `0 HEAD
0 @I1@ INDI
1 NAME Anna /Lind/
1 SEX F
1 BIRT
2 DATE 3 MAR 1870
0 @I2@ INDI
1 SEX M
0 @F1@ FAM
1 WIFE @I1@
1 HUSB @I2@
0 @N1@ NOTE Moved to Chicago
0 TRLR
`)

	store := newMockDocumentStore()
	di := NewDocumentImporter(store, testLogger())

	result := di.Import(ctx, set, res, 7)
	assert.Equal(t, 4, result.Count)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, store.count(CollectionIndividuals))
	assert.Equal(t, 1, store.count(CollectionFamilies))
	assert.Equal(t, 1, store.count(CollectionNotes))

	doc := store.byColl[CollectionIndividuals][0]
	assert.Equal(t, uint(7), doc["tree_id"])
	assert.Equal(t, "I1", doc["xref"])
	assert.Equal(t, uint(11), doc["record_id"])

	meta, ok := doc["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GEDCOM", meta["source"])
	assert.Equal(t, DocumentSchemaVersion, meta["schema_version"])

	events, ok := doc["events"].(map[string]any)
	require.True(t, ok)
	birth, ok := events["BIRT"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "3 MAR 1870", birth["date"])

	// Family documents carry spouse refs resolved to relational IDs.
	famDoc := store.byColl[CollectionFamilies][0]
	refs, ok := famDoc["refs"].(map[string]any)
	require.True(t, ok)
	wifeRefs, ok := refs["WIFE"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, wifeRefs, 1)
	assert.Equal(t, "I1", wifeRefs[0]["xref"])
	assert.Equal(t, uint(11), wifeRefs[0]["record_id"])
}

func TestDocumentImporter_FailedInsertIsSkipped(t *testing.T) {
	ctx := context.Background()
	res := resolver.NewMemory()
	require.NoError(t, res.Put(ctx, "I1", 1))
	require.NoError(t, res.Put(ctx, "I2", 2))

	set := parseFixture(t, "0 HEAD\n0 @I1@ INDI\n1 SEX M\n0 @I2@ INDI\n1 SEX F\n0 TRLR\n")

	store := newMockDocumentStore()
	store.failFirst = 1
	di := NewDocumentImporter(store, testLogger())

	result := di.Import(ctx, set, res, 1)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "I1", result.Errors[0].Xref)
	assert.False(t, result.Persisted["I1"])
	assert.True(t, result.Persisted["I2"])
}

func TestDocumentImporter_Retry(t *testing.T) {
	ctx := context.Background()
	res := resolver.NewMemory()
	require.NoError(t, res.Put(ctx, "I1", 1))

	set := parseFixture(t, "0 HEAD\n0 @I1@ INDI\n1 SEX M\n0 TRLR\n")

	store := newMockDocumentStore()
	store.failFirst = 1
	di := NewDocumentImporter(store, testLogger())

	first := di.Import(ctx, set, res, 1)
	require.Equal(t, 0, first.Count)

	retried := di.Retry(ctx, set, res, 1, []string{"I1"})
	assert.Equal(t, 1, retried.Count)
	assert.True(t, retried.Persisted["I1"])
}
