package plan

import (
	"time"

	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/config"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/typecheck"
	"github.com/streamsql-core/planner/engine/types"
)

// JoinType is the SQL join kind: INNER, LEFT, or OUTER (full).
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	OuterJoin
)

func (j JoinType) String() string {
	switch j {
	case LeftJoin:
		return "LEFT"
	case OuterJoin:
		return "OUTER"
	default:
		return "INNER"
	}
}

// Within bounds a stream-stream join to a maximum time gap between a
// matching pair of rows. Required for STREAM-STREAM joins, forbidden for
// any join involving a TABLE.
type Within struct {
	Before time.Duration
	After  time.Duration
}

// Join is the unified join node for all three legal combinations. Legal
// combinations (per the design doc's join legality table):
//
//	STREAM join STREAM  -- requires Within
//	STREAM join TABLE   -- forbids Within
//	TABLE  join TABLE   -- forbids Within
//	TABLE  join STREAM  -- illegal, always rejected
type Join struct {
	Left, Right   Node
	LeftKind      catalog.SourceKind
	RightKind     catalog.SourceKind
	Type          JoinType
	LeftKeyExpr   expr.Expr
	RightKeyExpr  expr.Expr
	Within        *Within // nil unless STREAM-STREAM
	PartitionCount int
	Out           schema.Schema
	Key           KeyField
}

func (*Join) planNode()            {}
func (j *Join) Schema() schema.Schema { return j.Out }
func (j *Join) Sources() []Node    { return []Node{j.Left, j.Right} }

// BuildJoin validates the join-kind/WITHIN legality table, the
// partition-count match between the two sides, and computes the output
// schema and key field.
//
// leftPartitions/rightPartitions come from catalog metadata; within is
// nil when the statement supplied no WITHIN clause.
func BuildJoin(
	left, right Node,
	leftKind, rightKind catalog.SourceKind,
	joinType JoinType,
	leftKeyExpr, rightKeyExpr expr.Expr,
	within *Within,
	leftPartitions, rightPartitions int,
	cfg config.Config,
	reg registry.Registry,
) (*Join, error) {
	if leftKind == catalog.Table && rightKind == catalog.Stream {
		return nil, perr.New(perr.JoinCombinationIllegal, "TABLE-STREAM join is illegal; join a STREAM against a TABLE instead")
	}

	streamStream := leftKind == catalog.Stream && rightKind == catalog.Stream
	if streamStream {
		if within == nil {
			return nil, perr.New(perr.WithinRequired, "STREAM-STREAM join requires a WITHIN clause")
		}
	} else if within != nil {
		return nil, perr.New(perr.WithinForbidden, "WITHIN is only legal for a STREAM-STREAM join")
	}

	if leftPartitions != rightPartitions {
		return nil, perr.New(perr.PartitionCountMismatch, "join sides have mismatched partition counts: %d vs %d", leftPartitions, rightPartitions)
	}

	leftSchema := left.Schema()
	rightSchema := right.Schema()

	leftKeyType, err := typecheck.New(leftSchema, reg).Infer(leftKeyExpr)
	if err != nil {
		return nil, err
	}
	rightKeyType, err := typecheck.New(rightSchema, reg).Infer(rightKeyExpr)
	if err != nil {
		return nil, err
	}
	if !types.ComparisonCompatible(leftKeyType, rightKeyType, true) {
		return nil, perr.New(perr.TableJoinKeyMismatch, "join key types do not match: %s vs %s", leftKeyType, rightKeyType)
	}

	out, err := joinOutputSchema(leftSchema, rightSchema)
	if err != nil {
		return nil, err
	}

	key := joinOutputKeyField(left, joinType, cfg)

	return &Join{
		Left: left, Right: right,
		LeftKind: leftKind, RightKind: rightKind,
		Type: joinType,
		LeftKeyExpr: leftKeyExpr, RightKeyExpr: rightKeyExpr,
		Within: within,
		PartitionCount: leftPartitions,
		Out: out,
		Key: key,
	}, nil
}

// joinOutputSchema concatenates both sides' value columns under the join
// output; the key list is always the left side's key list, per the data
// model's "joined rows are keyed by the left side's key" convention.
func joinOutputSchema(left, right schema.Schema) (schema.Schema, error) {
	values := append(append([]schema.Column(nil), left.ValueColumns()...), right.ValueColumns()...)
	return schema.Build(left.KeyColumns(), values)
}

// joinOutputKeyField implements the design doc's resolved Open Question:
// OUTER joins always produce no key field, regardless of
// LegacyKeyFieldSemantics; INNER/LEFT always propagate the left side's key
// field. Join's key-field rule has no legacy variant — LegacyKeyFieldSemantics
// only governs GroupBy's rekey test and Project's key-field rename
// propagation (see config.Config) — so cfg is accepted here purely for
// call-site symmetry with the rest of the join-building path and is
// otherwise unused.
func joinOutputKeyField(left Node, joinType JoinType, cfg config.Config) KeyField {
	_ = cfg
	if joinType == OuterJoin {
		return NoKeyField
	}
	return KeyFieldOf(left)
}
