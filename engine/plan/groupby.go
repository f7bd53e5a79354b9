package plan

import (
	"strings"

	"github.com/streamsql-core/planner/engine/config"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

// GroupBy groups input rows by a fixed list of grouping expressions. When
// the grouping expressions are not already the input's single key column,
// BuildGroupBy synthesizes a new key column and records SyntheticName; it
// does not insert or check for a preceding Repartition node.
type GroupBy struct {
	Input       Node
	GroupExprs  []expr.Expr
	Out         schema.Schema
	Key         KeyField
	SyntheticName string
}

func (*GroupBy) planNode()            {}
func (g *GroupBy) Schema() schema.Schema { return g.Out }
func (g *GroupBy) Sources() []Node    { return []Node{g.Input} }

// BuildGroupBy constructs a GroupBy node. groupExprs must be non-empty.
// Rekey is skipped only when there is exactly one grouping expression, it
// is a bare column reference, and that column is either ROWKEY or the
// input's current key field; the resulting key field then names that
// column directly. In every other case — including a single grouping
// expression that resolves to some other column — a repartition is
// implied and the key field is synthesized by joining each grouping
// expression's rendered text with "|+|", per the design doc's synthetic
// multi-column-key naming convention, and the synthesized column is
// injected as the sole key column of Out. When cfg.LegacyKeyFieldSemantics
// is set, the rekey-free shortcut is disabled entirely and every GROUP BY
// takes the synthetic-key path, matching the pre-fix planner's behavior of
// always repartitioning on GROUP BY regardless of whether it was needed.
func BuildGroupBy(ctx *Context, input Node, groupExprs []expr.Expr, cfg config.Config) (*GroupBy, error) {
	if len(groupExprs) == 0 {
		return nil, perr.New(perr.SchemaArityMismatch, "GROUP BY requires at least one grouping expression")
	}

	inputSchema := input.Schema()

	if len(groupExprs) == 1 && !cfg.LegacyKeyFieldSemantics {
		if col, ok := groupExprs[0].(*expr.ColumnRef); ok {
			resolved, found := inputSchema.FindColumn(col.Qualified)
			currentKey := KeyFieldOf(input)
			isRekeyFree := resolved.Name.Equal(schema.RowKeyName) ||
				(currentKey.IsPresent() && currentKey.Name.Equal(resolved.Name))
			if found && isRekeyFree {
				out, err := schema.Build([]schema.Column{resolved}, inputSchema.ValueColumns())
				if err != nil {
					return nil, err
				}
				return &GroupBy{
					Input:      input,
					GroupExprs: groupExprs,
					Out:        out,
					Key:        NewKeyField(resolved.Name),
				}, nil
			}
		}
	}

	syntheticName := ctx.NextSyntheticName("GroupBy")
	parts := make([]string, len(groupExprs))
	for i, e := range groupExprs {
		parts[i] = expr.String(e)
	}
	keyColName := name.MustColumn(strings.Join(parts, "|+|"))
	keyCol := schema.Column{Name: keyColName, Type: groupKeyType(groupExprs), Namespace: schema.Key}
	out, err := schema.Build([]schema.Column{keyCol}, inputSchema.ValueColumns())
	if err != nil {
		return nil, err
	}
	return &GroupBy{
		Input:         input,
		GroupExprs:    groupExprs,
		Out:           out,
		Key:           NewKeyField(keyColName),
		SyntheticName: syntheticName,
	}, nil
}

// groupKeyType returns STRING for every synthesized grouping key, single-
// or multi-expression (the concatenated-text representation), matching
// the synthetic name's own textual join.
func groupKeyType(exprs []expr.Expr) types.SqlType {
	return types.StringType
}
