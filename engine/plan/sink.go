package plan

import (
	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/schema"
)

// Sink is the terminal plan node: it names the destination source and
// carries the final output schema, which must be assignable to the
// destination's own declared schema.
type Sink struct {
	Input      Node
	TargetName name.SourceName
	Out        schema.Schema
}

func (*Sink) planNode()            {}
func (s *Sink) Schema() schema.Schema { return s.Out }
func (s *Sink) Sources() []Node    { return []Node{s.Input} }

// BuildSink constructs a Sink targeting an existing cataloged source,
// requiring the input's schema to carry the same number of value columns
// as the target (the design doc's SchemaArityMismatch check); a CREATE
// STREAM/TABLE AS SELECT target, which has no prior schema, should be
// built by the caller directly since there is nothing to check against.
func BuildSink(input Node, target catalog.SourceMetadata) (*Sink, error) {
	inCols := input.Schema().ValueColumns()
	targetCols := target.Schema.ValueColumns()
	if len(inCols) != len(targetCols) {
		return nil, perr.New(perr.SchemaArityMismatch, "INSERT INTO %s expects %d value columns, got %d", target.Name, len(targetCols), len(inCols))
	}
	return &Sink{Input: input, TargetName: target.Name, Out: input.Schema()}, nil
}
