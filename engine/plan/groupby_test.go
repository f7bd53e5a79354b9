package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/config"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/plan"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

func TestBuildGroupBy_RejectsEmpty(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	_, err := plan.BuildGroupBy(plan.NewContext(), ds, nil, config.NewDefault())
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.SchemaArityMismatch, pe.Kind)
}

func TestBuildGroupBy_SingleColumnKeepsKeyName(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID")}, config.NewDefault())
	require.NoError(t, err)
	assert.Equal(t, "ID", g.Key.Name.String())
	assert.Empty(t, g.SyntheticName)
}

func TestBuildGroupBy_MultiExprSynthesizesJoinedKeyName(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID"), col("AMOUNT")}, config.NewDefault())
	require.NoError(t, err)
	assert.Equal(t, "ID|+|AMOUNT", g.Key.Name.String())
	assert.NotEmpty(t, g.SyntheticName)
}

func TestBuildGroupBy_NonColumnExprSynthesizesKey(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	e := expr.NewArithmeticBinary(perr.Pos{}, expr.OpAdd, col("AMOUNT"), lit(int64(1), types.IntegerType))
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{e}, config.NewDefault())
	require.NoError(t, err)
	assert.Equal(t, "(AMOUNT + 1)", g.Key.Name.String())
}

func TestBuildGroupBy_SingleNonKeyColumnForcesRepartition(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("AMOUNT")}, config.NewDefault())
	require.NoError(t, err)
	assert.Equal(t, "AMOUNT", g.Key.Name.String())
	assert.NotEmpty(t, g.SyntheticName)
}

func TestBuildGroupBy_SingleRowKeyColumnSkipsRepartition(t *testing.T) {
	s, err := schema.Build(nil, []schema.Column{{Name: name.MustColumn("AMOUNT"), Type: types.IntegerType, Namespace: schema.Value}})
	require.NoError(t, err)
	meta := catalog.SourceMetadata{Name: name.MustSource("ORDERS"), Kind: catalog.Stream, Schema: s}
	ds := plan.NewDataSource(meta)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col(schema.RowKeyName.String())}, config.NewDefault())
	require.NoError(t, err)
	assert.Equal(t, "ROWKEY", g.Key.Name.String())
	assert.Empty(t, g.SyntheticName)
}

func TestBuildGroupBy_KeyColumnIsString(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID"), col("AMOUNT")}, config.NewDefault())
	require.NoError(t, err)
	keyCol, ok := g.Out.FindKeyColumn(g.Key.Name.String())
	require.True(t, ok)
	assert.True(t, keyCol.Type.Equal(types.StringType))
}

func TestBuildGroupBy_LegacySemanticsAlwaysRepartitions(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	cfg := config.NewDefault()
	cfg.LegacyKeyFieldSemantics = true
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID")}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "ID", g.Key.Name.String())
	assert.NotEmpty(t, g.SyntheticName)
}
