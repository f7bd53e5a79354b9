package planner

import (
	"fmt"

	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/models"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/plan"
	"github.com/streamsql-core/planner/engine/rewrite"
)

// fromNode pairs a plan node with the SourceKind it was built from, since
// Join legality and output kind depend on both sides' kinds and plan.Node
// itself does not carry one.
type fromNode struct {
	node           plan.Node
	kind           catalog.SourceKind
	partitionCount int
}

// planSelect builds a plan tree for a SELECT statement: resolve FROM (and
// any JOINs) against the catalog, apply WHERE, GROUP BY (optionally
// windowed), PARTITION BY, the projection list, and finally an INTO sink
// when present.
func (p *Planner) planSelect(s *models.SelectStatement) (plan.Node, error) {
	ctx := plan.NewContext()

	from, err := p.resolveFrom(s.From, s.FromAlias)
	if err != nil {
		return nil, err
	}

	for _, j := range s.Joins {
		from, err = p.applyJoin(from, j)
		if err != nil {
			return nil, err
		}
	}
	node := from.node

	if s.Where != nil {
		normalizedWhere, err := rewrite.NormalizeRowTimeLiterals(s.Where)
		if err != nil {
			return nil, err
		}
		filtered, err := plan.BuildFilter(node, normalizedWhere, p.Registry)
		if err != nil {
			return nil, err
		}
		node = filtered
	}

	if s.GroupBy != nil {
		node, err = p.applyGroupBy(ctx, node, s.GroupBy)
		if err != nil {
			return nil, err
		}
	}

	if len(s.PartitionBy) > 0 {
		node, err = plan.BuildRepartition(ctx, node, s.PartitionBy)
		if err != nil {
			return nil, err
		}
	}

	if len(s.Items) > 0 {
		node, err = p.applyProjection(node, s.Items)
		if err != nil {
			return nil, err
		}
	}

	if s.Into != nil {
		meta, ok := p.Catalog.Lookup(*s.Into)
		if !ok {
			return nil, fmt.Errorf("planner: unknown INTO target %q", s.Into.String())
		}
		sink, err := plan.BuildSink(node, meta)
		if err != nil {
			return nil, err
		}
		node = sink
	}

	return node, nil
}

func (p *Planner) resolveFrom(source, alias name.SourceName) (fromNode, error) {
	meta, ok := p.Catalog.Lookup(source)
	if !ok {
		return fromNode{}, fmt.Errorf("planner: unknown source %q", source.String())
	}
	ds := plan.NewDataSource(meta)
	if meta.KeyFieldName != "" {
		ds = ds.WithKeyField(plan.NewKeyField(name.MustColumn(meta.KeyFieldName)))
	}
	if !alias.IsZero() {
		aliased, err := ds.WithAlias(alias)
		if err != nil {
			return fromNode{}, err
		}
		ds = aliased
	}
	return fromNode{node: ds, kind: meta.Kind, partitionCount: meta.PartitionCount}, nil
}

func (p *Planner) applyJoin(left fromNode, j models.JoinClause) (fromNode, error) {
	meta, ok := p.Catalog.Lookup(j.Right)
	if !ok {
		return fromNode{}, fmt.Errorf("planner: unknown join target %q", j.Right.String())
	}
	right := plan.NewDataSource(meta)
	if meta.KeyFieldName != "" {
		right = right.WithKeyField(plan.NewKeyField(name.MustColumn(meta.KeyFieldName)))
	}
	rightNode := plan.Node(right)
	if !j.RightAlias.IsZero() {
		aliased, err := right.WithAlias(j.RightAlias)
		if err != nil {
			return fromNode{}, err
		}
		rightNode = aliased
	}

	joined, err := plan.BuildJoin(
		left.node, rightNode,
		left.kind, meta.Kind,
		j.Type,
		j.LeftKeyExpr, j.RightKeyExpr,
		j.Within,
		left.partitionCount, meta.PartitionCount,
		p.Config, p.Registry,
	)
	if err != nil {
		return fromNode{}, err
	}

	// A join's output kind is STREAM unless both inputs were TABLEs, per
	// the design doc's "a join result is a TABLE only if nothing involved
	// can produce an unbounded append" rule.
	resultKind := catalog.Stream
	if left.kind == catalog.Table && meta.Kind == catalog.Table {
		resultKind = catalog.Table
	}
	return fromNode{node: joined, kind: resultKind, partitionCount: left.partitionCount}, nil
}

func (p *Planner) applyGroupBy(ctx *plan.Context, input plan.Node, g *models.GroupByClause) (plan.Node, error) {
	grouped, err := plan.BuildGroupBy(ctx, input, g.Exprs, p.Config)
	if err != nil {
		return nil, err
	}
	if g.Window == nil {
		return grouped, nil
	}
	return plan.BuildWindowedAggregate(grouped, *g.Window, nil, p.Registry, p.Config)
}

func (p *Planner) applyProjection(input plan.Node, items []models.SelectItem) (plan.Node, error) {
	exprs := make([]expr.Expr, len(items))
	aliases := make([]name.ColumnName, len(items))
	for i, item := range items {
		normalized, err := rewrite.NormalizeRowTimeLiterals(item.Expr)
		if err != nil {
			return nil, err
		}
		withBounds, err := plan.RewriteWindowBounds(normalized)
		if err != nil {
			return nil, err
		}
		exprs[i] = withBounds
		aliases[i] = item.Alias
	}
	return plan.BuildProject(input, exprs, aliases, p.Registry, p.Config)
}
