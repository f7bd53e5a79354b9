package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql-core/planner/engine/codegen"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/typecheck"
	"github.com/streamsql-core/planner/engine/types"
)

func windowedSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.Build(
		[]schema.Column{{Name: name.MustColumn("ID"), Type: types.StringType, Namespace: schema.Key}},
		[]schema.Column{
			{Name: name.MustColumn("CNT"), Type: types.IntegerType, Namespace: schema.Value},
			{Name: name.MustColumn("WINDOWSTART"), Type: types.BigIntType, Namespace: schema.Value},
			{Name: name.MustColumn("WINDOWEND"), Type: types.BigIntType, Namespace: schema.Value},
		},
	)
	require.NoError(t, err)
	return s
}

func TestCompile_WindowBound_ResolvesFromBoundsNotRow(t *testing.T) {
	s := windowedSchema(t)
	reg := registry.NewDefault()
	checker := typecheck.New(s, reg)
	e := col("WINDOWSTART")
	cols, err := codegen.RequiredColumns(e, s)
	require.NoError(t, err)
	c := codegen.NewCompiler(s, reg, checker, cols).WithWindowBounds(codegen.WindowBounds{Start: 1000, End: 2000})
	eval, err := c.Compile(e)
	require.NoError(t, err)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v)
}

func TestCompile_WindowBound_End(t *testing.T) {
	s := windowedSchema(t)
	reg := registry.NewDefault()
	checker := typecheck.New(s, reg)
	e := col("WINDOWEND")
	cols, err := codegen.RequiredColumns(e, s)
	require.NoError(t, err)
	c := codegen.NewCompiler(s, reg, checker, cols).WithWindowBounds(codegen.WindowBounds{Start: 1000, End: 2000})
	eval, err := c.Compile(e)
	require.NoError(t, err)
	v, err := eval(rowFor(t, cols, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), v)
}

func TestCompile_WindowBound_ErrorsWithoutBounds(t *testing.T) {
	s := windowedSchema(t)
	reg := registry.NewDefault()
	checker := typecheck.New(s, reg)
	e := col("WINDOWSTART")
	cols, err := codegen.RequiredColumns(e, s)
	require.NoError(t, err)
	c := codegen.NewCompiler(s, reg, checker, cols)
	_, err = c.Compile(e)
	assert.Error(t, err)
}
