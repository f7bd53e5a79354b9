package plan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/config"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/plan"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/types"
)

func countCall() plan.AggregateCall {
	return plan.AggregateCall{
		Call:   expr.NewFunctionCall(perr.Pos{}, name.MustFunction("COUNT"), []expr.Expr{col("AMOUNT")}),
		Output: name.MustColumn("CNT"),
	}
}

func TestBuildAggregate_RequiresKeyedInput(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	unkeyed := ds.WithKeyField(plan.NoKeyField)
	_, err := plan.BuildAggregate(unkeyed, []plan.AggregateCall{countCall()}, registry.NewDefault())
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.SchemaArityMismatch, pe.Kind)
}

func TestBuildAggregate_RejectsUnknownAggregate(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID")}, config.NewDefault())
	require.NoError(t, err)
	call := plan.AggregateCall{Call: expr.NewFunctionCall(perr.Pos{}, name.MustFunction("NOPE"), nil), Output: name.MustColumn("X")}
	_, err = plan.BuildAggregate(g, []plan.AggregateCall{call}, registry.NewDefault())
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.UnknownFunction, pe.Kind)
}

func TestBuildAggregate_OutputSchemaCarriesKeyAndCallColumns(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID")}, config.NewDefault())
	require.NoError(t, err)
	agg, err := plan.BuildAggregate(g, []plan.AggregateCall{countCall()}, registry.NewDefault())
	require.NoError(t, err)
	_, ok := agg.Out.FindValueColumn("CNT")
	assert.True(t, ok)
	assert.True(t, agg.Key.IsPresent())
}

func TestBuildWindowedAggregate_SessionKeyWidensByDefault(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID")}, config.NewDefault())
	require.NoError(t, err)
	window := plan.Window{Kind: plan.Session, Gap: time.Minute}
	wa, err := plan.BuildWindowedAggregate(g, window, []plan.AggregateCall{countCall()}, registry.NewDefault(), config.NewDefault())
	require.NoError(t, err)
	assert.Equal(t, "ID_SESSION", wa.Key.Name.String())
}

func TestBuildWindowedAggregate_SessionKeyLegacyKeepsBareName(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID")}, config.NewDefault())
	require.NoError(t, err)
	window := plan.Window{Kind: plan.Session, Gap: time.Minute}
	cfg := config.NewDefault()
	cfg.WindowedSessionKeyLegacy = true
	wa, err := plan.BuildWindowedAggregate(g, window, []plan.AggregateCall{countCall()}, registry.NewDefault(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "ID", wa.Key.Name.String())
}

func TestBuildWindowedAggregate_TumblingKeyUnchanged(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID")}, config.NewDefault())
	require.NoError(t, err)
	window := plan.Window{Kind: plan.Tumbling, Size: time.Minute}
	wa, err := plan.BuildWindowedAggregate(g, window, []plan.AggregateCall{countCall()}, registry.NewDefault(), config.NewDefault())
	require.NoError(t, err)
	assert.Equal(t, "ID", wa.Key.Name.String())
}

func TestBuildWindowedAggregate_OutputSchemaCarriesWindowBoundColumns(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	g, err := plan.BuildGroupBy(plan.NewContext(), ds, []expr.Expr{col("ID")}, config.NewDefault())
	require.NoError(t, err)
	window := plan.Window{Kind: plan.Tumbling, Size: time.Minute}
	wa, err := plan.BuildWindowedAggregate(g, window, []plan.AggregateCall{countCall()}, registry.NewDefault(), config.NewDefault())
	require.NoError(t, err)
	startCol, ok := wa.Out.FindValueColumn("WINDOWSTART")
	require.True(t, ok)
	assert.True(t, startCol.Type.Equal(types.BigIntType))
	endCol, ok := wa.Out.FindValueColumn("WINDOWEND")
	require.True(t, ok)
	assert.True(t, endCol.Type.Equal(types.BigIntType))
}

func TestRewriteWindowBounds_RewritesBothPseudoFunctions(t *testing.T) {
	e := expr.NewArithmeticBinary(perr.Pos{}, expr.OpSub,
		expr.NewFunctionCall(perr.Pos{}, name.MustFunction("WINDOWEND"), nil),
		expr.NewFunctionCall(perr.Pos{}, name.MustFunction("WINDOWSTART"), nil),
	)
	out, err := plan.RewriteWindowBounds(e)
	require.NoError(t, err)
	bin := out.(*expr.ArithmeticBinary)
	assert.Equal(t, "WINDOWEND", bin.Left.(*expr.ColumnRef).Qualified)
	assert.Equal(t, "WINDOWSTART", bin.Right.(*expr.ColumnRef).Qualified)
}

func TestRewriteWindowBounds_LeavesOtherCallsAlone(t *testing.T) {
	e := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("UCASE"), []expr.Expr{col("AMOUNT")})
	out, err := plan.RewriteWindowBounds(e)
	require.NoError(t, err)
	_, ok := out.(*expr.FunctionCall)
	assert.True(t, ok)
}

func TestWindowKind_String(t *testing.T) {
	assert.Equal(t, "TUMBLING", plan.Tumbling.String())
	assert.Equal(t, "HOPPING", plan.Hopping.String())
	assert.Equal(t, "SESSION", plan.Session.String())
}
