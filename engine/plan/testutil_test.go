package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/plan"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

func col(q string) *expr.ColumnRef { return expr.NewColumnRef(perr.Pos{}, q) }

func lit(v any, t types.SqlType) *expr.Literal { return expr.NewLiteral(perr.Pos{}, v, t) }

func sourceSchema(t *testing.T, keyCol string) schema.Schema {
	t.Helper()
	s, err := schema.Build(
		[]schema.Column{{Name: name.MustColumn(keyCol), Type: types.StringType, Namespace: schema.Key}},
		[]schema.Column{
			{Name: name.MustColumn("AMOUNT"), Type: types.IntegerType, Namespace: schema.Value},
			{Name: name.MustColumn(keyCol), Type: types.StringType, Namespace: schema.Value},
		},
	)
	require.NoError(t, err)
	return s
}

func dataSource(t *testing.T, sourceName, keyCol string, kind catalog.SourceKind) *plan.DataSource {
	t.Helper()
	meta := catalog.SourceMetadata{Name: name.MustSource(sourceName), Kind: kind, Schema: sourceSchema(t, keyCol)}
	ds := plan.NewDataSource(meta)
	return ds.WithKeyField(plan.NewKeyField(name.MustColumn(keyCol)))
}
