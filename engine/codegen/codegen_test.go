package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql-core/planner/engine/codegen"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/typecheck"
	"github.com/streamsql-core/planner/engine/types"
)

func buildSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.Build(
		[]schema.Column{{Name: name.MustColumn("ID"), Type: types.IntegerType, Namespace: schema.Key}},
		[]schema.Column{
			{Name: name.MustColumn("NAME"), Type: types.StringType, Namespace: schema.Value},
			{Name: name.MustColumn("PRICE"), Type: types.MustDecimal(5, 2), Namespace: schema.Value},
		},
	)
	require.NoError(t, err)
	return s
}

func lit(v any, t types.SqlType) *expr.Literal { return expr.NewLiteral(perr.Pos{}, v, t) }
func col(q string) *expr.ColumnRef              { return expr.NewColumnRef(perr.Pos{}, q) }

func compile(t *testing.T, s schema.Schema, e expr.Expr) (codegen.ExpressionEvaluator, []schema.Column) {
	t.Helper()
	reg := registry.NewDefault()
	checker := typecheck.New(s, reg)
	cols, err := codegen.RequiredColumns(e, s)
	require.NoError(t, err)
	c := codegen.NewCompiler(s, reg, checker, cols)
	eval, err := c.Compile(e)
	require.NoError(t, err)
	return eval, cols
}

func rowFor(t *testing.T, cols []schema.Column, values map[string]any) codegen.Row {
	t.Helper()
	row := make(codegen.Row, len(cols))
	for i, c := range cols {
		row[i] = values[c.FullName()]
	}
	return row
}

func TestCompile_Literal(t *testing.T) {
	s := buildSchema(t)
	eval, cols := compile(t, s, lit(int64(42), types.IntegerType))
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestCompile_ColumnRef(t *testing.T) {
	s := buildSchema(t)
	eval, cols := compile(t, s, col("NAME"))
	v, err := eval(rowFor(t, cols, map[string]any{"NAME": "alice"}))
	require.NoError(t, err)
	assert.Equal(t, "alice", v)
}

func TestCompile_ArithmeticBinary_Integer(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewArithmeticBinary(perr.Pos{}, expr.OpAdd, lit(int64(1), types.IntegerType), lit(int64(2), types.IntegerType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestCompile_ArithmeticBinary_NullPropagates(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewArithmeticBinary(perr.Pos{}, expr.OpAdd, col("PRICE"), lit(int64(1), types.IntegerType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, map[string]any{"PRICE": nil}))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCompile_ArithmeticUnary_Negate(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewArithmeticUnary(perr.Pos{}, expr.OpNeg, lit(int64(5), types.IntegerType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), v)
}

func TestCompile_Comparison(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewComparison(perr.Pos{}, expr.CmpLt, lit(int64(1), types.IntegerType), lit(int64(2), types.IntegerType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestCompile_Comparison_NullIsFalse(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewComparison(perr.Pos{}, expr.CmpEq, col("NAME"), lit("x", types.StringType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, map[string]any{"NAME": nil}))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCompile_Logical_AndShortCircuitsOnFalse(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewLogical(perr.Pos{}, expr.LogicalAnd, lit(false, types.BooleanType), lit(nil, types.BooleanType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCompile_Logical_OrShortCircuitsOnTrue(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewLogical(perr.Pos{}, expr.LogicalOr, lit(true, types.BooleanType), lit(nil, types.BooleanType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestCompile_Not(t *testing.T) {
	s := buildSchema(t)
	eval, cols := compile(t, s, expr.NewNot(perr.Pos{}, lit(true, types.BooleanType)))
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCompile_IsNull(t *testing.T) {
	s := buildSchema(t)
	eval, cols := compile(t, s, expr.NewIsNull(perr.Pos{}, col("NAME")))
	v, err := eval(rowFor(t, cols, map[string]any{"NAME": nil}))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestCompile_Between(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewBetween(perr.Pos{}, lit(int64(5), types.IntegerType), lit(int64(1), types.IntegerType), lit(int64(10), types.IntegerType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestCompile_In(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewIn(perr.Pos{}, lit(int64(2), types.IntegerType), []expr.Expr{lit(int64(1), types.IntegerType), lit(int64(2), types.IntegerType)})
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestCompile_Cast_ToString(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewCast(perr.Pos{}, lit(int64(7), types.IntegerType), types.StringType)
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}

func TestCompile_Subscript_Array_NegativeIndex(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewSubscript(perr.Pos{}, lit([]any{int64(1), int64(2), int64(3)}, types.NewArray(types.IntegerType)), lit(int64(-1), types.IntegerType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestCompile_Subscript_Map(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewSubscript(perr.Pos{}, lit(map[string]any{"k": "v"}, types.NewMap(types.StringType)), lit("k", types.StringType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestCompile_Dereference(t *testing.T) {
	s := buildSchema(t)
	st := types.NewStruct([]types.StructField{{Name: "A", Type: types.IntegerType}})
	e := expr.NewDereference(perr.Pos{}, lit(map[string]any{"A": int64(9)}, st), "A")
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)
}

func TestCompile_FunctionCall(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("UCASE"), []expr.Expr{lit("hi", types.StringType)})
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, "HI", v)
}

func TestCompile_SearchedCase_FirstMatchWins(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewSearchedCase(perr.Pos{}, []expr.WhenThen{
		{When: lit(false, types.BooleanType), Then: lit("a", types.StringType)},
		{When: lit(true, types.BooleanType), Then: lit("b", types.StringType)},
	}, lit("c", types.StringType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestCompile_SearchedCase_FallsThroughToDefault(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewSearchedCase(perr.Pos{}, []expr.WhenThen{
		{When: lit(false, types.BooleanType), Then: lit("a", types.StringType)},
	}, lit("fallback", types.StringType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)
}

func TestCompile_SimpleCase(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewSimpleCase(perr.Pos{}, lit(int64(2), types.IntegerType), []expr.SimpleWhenThen{
		{Match: lit(int64(1), types.IntegerType), Then: lit("one", types.StringType)},
		{Match: lit(int64(2), types.IntegerType), Then: lit("two", types.StringType)},
	}, lit("other", types.StringType))
	eval, cols := compile(t, s, e)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestRequiredColumns_DedupsAndOrdersByFirstReference(t *testing.T) {
	s := buildSchema(t)
	e := expr.NewArithmeticBinary(perr.Pos{}, expr.OpAdd,
		expr.NewFunctionCall(perr.Pos{}, name.MustFunction("LEN"), []expr.Expr{col("NAME")}),
		expr.NewFunctionCall(perr.Pos{}, name.MustFunction("LEN"), []expr.Expr{col("NAME")}),
	)
	cols, err := codegen.RequiredColumns(e, s)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "NAME", cols[0].FullName())
}

func TestRequiredColumns_UnresolvedColumnErrors(t *testing.T) {
	s := buildSchema(t)
	_, err := codegen.RequiredColumns(col("NOPE"), s)
	assert.Error(t, err)
}
