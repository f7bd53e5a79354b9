package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

func col(n string, t types.SqlType, ns schema.Namespace) schema.Column {
	return schema.Column{Name: name.MustColumn(n), Type: t, Namespace: ns}
}

func TestBuild_SyntheticKeyWhenNoneGiven(t *testing.T) {
	s, err := schema.Build(nil, []schema.Column{col("A", types.IntegerType, schema.Value)})
	require.NoError(t, err)
	keys := s.KeyColumns()
	require.Len(t, keys, 1)
	assert.Equal(t, schema.RowKeyName, keys[0].Name)
}

func TestBuild_RejectsDuplicateColumns(t *testing.T) {
	_, err := schema.Build(nil, []schema.Column{
		col("A", types.IntegerType, schema.Value),
		col("A", types.StringType, schema.Value),
	})
	assert.Error(t, err)
}

func TestBuild_ReindexesColumns(t *testing.T) {
	s, err := schema.Build(nil, []schema.Column{
		col("A", types.IntegerType, schema.Value),
		col("B", types.StringType, schema.Value),
	})
	require.NoError(t, err)
	idxA, ok := s.ValueColumnIndex("A")
	require.True(t, ok)
	idxB, ok := s.ValueColumnIndex("B")
	require.True(t, ok)
	assert.Equal(t, uint32(0), idxA)
	assert.Equal(t, uint32(1), idxB)
}

func TestSchema_WithAlias_QualifiesEveryColumn(t *testing.T) {
	s, err := schema.Build(
		[]schema.Column{col("ID", types.IntegerType, schema.Key)},
		[]schema.Column{col("NAME", types.StringType, schema.Value)},
	)
	require.NoError(t, err)
	aliased, err := s.WithAlias(name.MustSource("T"))
	require.NoError(t, err)

	found, ok := aliased.FindColumn("T.NAME")
	require.True(t, ok)
	assert.Equal(t, "T.NAME", found.FullName())
}

func TestSchema_WithAlias_RejectsDoubleAlias(t *testing.T) {
	s, err := schema.Build(nil, []schema.Column{col("A", types.IntegerType, schema.Value)})
	require.NoError(t, err)
	aliased, err := s.WithAlias(name.MustSource("T1"))
	require.NoError(t, err)
	_, err = aliased.WithAlias(name.MustSource("T2"))
	assert.Error(t, err)
}

func TestSchema_WithoutAlias_RequiresExistingAlias(t *testing.T) {
	s, err := schema.Build(nil, []schema.Column{col("A", types.IntegerType, schema.Value)})
	require.NoError(t, err)
	_, err = s.WithoutAlias()
	assert.Error(t, err)

	aliased, err := s.WithAlias(name.MustSource("T"))
	require.NoError(t, err)
	stripped, err := aliased.WithoutAlias()
	require.NoError(t, err)
	found, ok := stripped.FindColumn("A")
	require.True(t, ok)
	assert.Equal(t, "A", found.FullName())
}

func TestSchema_FindColumn_PrefersValueOverKeyOverMeta(t *testing.T) {
	s, err := schema.Build(
		[]schema.Column{col("X", types.IntegerType, schema.Key)},
		[]schema.Column{col("X", types.StringType, schema.Value)},
	)
	require.NoError(t, err)
	found, ok := s.FindColumn("X")
	require.True(t, ok)
	assert.Equal(t, schema.Value, found.Namespace)
}

func TestSchema_MetaColumns_AlwaysCarriesRowTime(t *testing.T) {
	s, err := schema.Build(nil, nil)
	require.NoError(t, err)
	assert.True(t, s.IsMetaColumn("ROWTIME"))
}

func TestSchema_WithMetaAndKeyColsInValue_Idempotent(t *testing.T) {
	s, err := schema.Build(
		[]schema.Column{col("ID", types.IntegerType, schema.Key)},
		[]schema.Column{col("A", types.IntegerType, schema.Value)},
	)
	require.NoError(t, err)
	once := s.WithMetaAndKeyColsInValue()
	twice := once.WithMetaAndKeyColsInValue()
	assert.True(t, once.Equal(twice))

	vals := once.ValueColumns()
	require.Len(t, vals, 3)
	assert.Equal(t, schema.RowTimeName, vals[0].Name)
	assert.Equal(t, schema.RowKeyName, vals[1].Name)
	assert.Equal(t, "A", vals[2].Name.String())
}

func TestSchema_WithoutMetaAndKeyColsInValue_Reverses(t *testing.T) {
	s, err := schema.Build(
		[]schema.Column{col("ID", types.IntegerType, schema.Key)},
		[]schema.Column{col("A", types.IntegerType, schema.Value)},
	)
	require.NoError(t, err)
	expanded := s.WithMetaAndKeyColsInValue()
	reverted := expanded.WithoutMetaAndKeyColsInValue()
	assert.Len(t, reverted.ValueColumns(), 1)
	assert.False(t, reverted.HasMetaAndKeyInValue())
}

func TestSchema_Equal(t *testing.T) {
	s1, err := schema.Build(nil, []schema.Column{col("A", types.IntegerType, schema.Value)})
	require.NoError(t, err)
	s2, err := schema.Build(nil, []schema.Column{col("A", types.IntegerType, schema.Value)})
	require.NoError(t, err)
	s3, err := schema.Build(nil, []schema.Column{col("B", types.IntegerType, schema.Value)})
	require.NoError(t, err)
	assert.True(t, s1.Equal(s2))
	assert.False(t, s1.Equal(s3))
}
