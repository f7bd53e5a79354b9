package typecheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/typecheck"
	"github.com/streamsql-core/planner/engine/types"
)

func TestInferCall_ResolvesReturnType(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("UCASE"), []expr.Expr{col("NAME")})
	got, err := c.Infer(call)
	require.NoError(t, err)
	assert.True(t, got.Equal(types.StringType))
}

func TestInferCall_CaseInsensitiveLookup(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("ucase"), []expr.Expr{col("NAME")})
	got, err := c.Infer(call)
	require.NoError(t, err)
	assert.True(t, got.Equal(types.StringType))
}

func TestInferCall_UnknownFunction(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("NOPE"), nil)
	_, err := c.Infer(call)
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.UnknownFunction, pe.Kind)
}

func TestInferCall_ArityMismatch(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("UCASE"), []expr.Expr{col("NAME"), col("NAME")})
	_, err := c.Infer(call)
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.FunctionArityMismatch, pe.Kind)
}

func TestInferCall_SignatureMismatch(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("UCASE"), []expr.Expr{lit(true, types.BooleanType)})
	_, err := c.Infer(call)
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.FunctionSignatureMismatch, pe.Kind)
}

func TestInferCall_VariadicAcceptsExtraArgs(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("CONCAT"), []expr.Expr{
		lit("a", types.StringType), lit("b", types.StringType), lit("c", types.StringType),
	})
	got, err := c.Infer(call)
	require.NoError(t, err)
	assert.True(t, got.Equal(types.StringType))
}

func TestInferCall_VariadicRejectsTooFewArgs(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("CONCAT"), nil)
	_, err := c.Infer(call)
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.FunctionArityMismatch, pe.Kind)
}

func TestInferCall_UnknownParamTypeMatchesAnyArg(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("COUNT"), []expr.Expr{col("NAME")})
	got, err := c.Infer(call)
	require.NoError(t, err)
	assert.True(t, got.Equal(types.BigIntType))
}

func TestInferCall_NumericParamAcceptsAnyNumericArg(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("ABS"), []expr.Expr{lit(int64(1), types.IntegerType)})
	got, err := c.Infer(call)
	require.NoError(t, err)
	assert.True(t, got.Equal(types.DoubleType))
}

func TestInferCall_PropagatesArgInferError(t *testing.T) {
	c := typecheck.New(testSchema(t), registry.NewDefault())
	call := expr.NewFunctionCall(perr.Pos{}, name.MustFunction("UCASE"), []expr.Expr{col("NOPE")})
	_, err := c.Infer(call)
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.UnknownColumn, pe.Kind)
}
