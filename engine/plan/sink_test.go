package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/plan"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

func TestBuildSink_RejectsArityMismatch(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	targetSchema, err := schema.Build(nil, []schema.Column{{Name: name.MustColumn("ONLYONE"), Type: types.StringType, Namespace: schema.Value}})
	require.NoError(t, err)
	target := catalog.SourceMetadata{Name: name.MustSource("SINK"), Kind: catalog.Stream, Schema: targetSchema}
	_, err = plan.BuildSink(ds, target)
	var pe *perr.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, perr.SchemaArityMismatch, pe.Kind)
}

func TestBuildSink_Ok(t *testing.T) {
	ds := dataSource(t, "ORDERS", "ID", catalog.Stream)
	target := catalog.SourceMetadata{Name: name.MustSource("SINK"), Kind: catalog.Stream, Schema: ds.Schema()}
	sink, err := plan.BuildSink(ds, target)
	require.NoError(t, err)
	assert.Equal(t, "SINK", sink.TargetName.String())
	assert.Equal(t, []plan.Node{ds}, sink.Sources())
}
