package plan

import (
	"strings"

	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/schema"
)

// Repartition re-keys its input by a new set of partitioning expressions,
// materializing the key-naming convention GroupBy and Join both rely on:
// a single expression that is a bare column reference keeps that column's
// name, anything else (including multiple expressions) synthesizes a
// "|+|"-joined STRING key column. Repartition is the physical node that
// PartitionBy declarations compile down to; planning code should insert
// one whenever a GroupBy's or Join's required key does not already match
// its input's current key field, per the design doc's "re-keying precedes
// grouping" invariant.
type Repartition struct {
	Input          Node
	PartitionExprs []expr.Expr
	Out            schema.Schema
	Key            KeyField
	SyntheticName  string
}

func (*Repartition) planNode()            {}
func (r *Repartition) Schema() schema.Schema { return r.Out }
func (r *Repartition) Sources() []Node    { return []Node{r.Input} }

// BuildRepartition constructs a Repartition node. Returns the input node
// unchanged (no Repartition wrapper) when partitionExprs already equal
// input's current key field, since repartitioning to the same key is a
// no-op.
func BuildRepartition(ctx *Context, input Node, partitionExprs []expr.Expr) (Node, error) {
	if len(partitionExprs) == 0 {
		return nil, perr.New(perr.SchemaArityMismatch, "PARTITION BY requires at least one expression")
	}

	if len(partitionExprs) == 1 {
		if col, ok := partitionExprs[0].(*expr.ColumnRef); ok {
			currentKey := KeyFieldOf(input)
			resolved, found := input.Schema().FindColumn(col.Qualified)
			if found && currentKey.IsPresent() && currentKey.Name.Equal(resolved.Name) {
				return input, nil
			}
		}
	}

	inputSchema := input.Schema()

	if len(partitionExprs) == 1 {
		if col, ok := partitionExprs[0].(*expr.ColumnRef); ok {
			resolved, found := inputSchema.FindColumn(col.Qualified)
			if found {
				out, err := schema.Build([]schema.Column{resolved}, inputSchema.ValueColumns())
				if err != nil {
					return nil, err
				}
				return &Repartition{
					Input: input, PartitionExprs: partitionExprs,
					Out: out, Key: NewKeyField(resolved.Name),
				}, nil
			}
		}
	}

	syntheticName := ctx.NextSyntheticName("Repartition")
	parts := make([]string, len(partitionExprs))
	for i, e := range partitionExprs {
		parts[i] = expr.String(e)
	}
	keyColName := name.MustColumn(strings.Join(parts, "|+|"))
	keyCol := schema.Column{Name: keyColName, Type: groupKeyType(partitionExprs), Namespace: schema.Key}
	out, err := schema.Build([]schema.Column{keyCol}, inputSchema.ValueColumns())
	if err != nil {
		return nil, err
	}
	return &Repartition{
		Input: input, PartitionExprs: partitionExprs,
		Out: out, Key: NewKeyField(keyColName), SyntheticName: syntheticName,
	}, nil
}
