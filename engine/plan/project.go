package plan

import (
	"github.com/streamsql-core/planner/engine/config"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/typecheck"
	"github.com/streamsql-core/planner/engine/types"
)

// BuildProject type-checks each of exprs against input's schema, builds
// the projected output schema using aliases for naming, and propagates
// the input's key field when the projection contains a bare reference to
// the key's source column: the output key field takes that item's alias,
// whether or not the alias renames it. The output schema's physical key columns are
// always carried forward from input unconditionally — key-column survival
// and key-*field* propagation are independent rules: a projection keeps
// its input's key columns regardless of whether the key field survives.
// When cfg.LegacyKeyFieldSemantics is set, key-field propagation through a
// rename is disabled: the output key field is always None, matching the
// pre-fix planner's behavior of dropping key-field tracking across a
// projection.
func BuildProject(input Node, exprs []expr.Expr, aliases []name.ColumnName, reg registry.Registry, cfg config.Config) (*Project, error) {
	if len(exprs) != len(aliases) {
		return nil, perr.New(perr.SchemaArityMismatch, "projection has %d expressions but %d aliases", len(exprs), len(aliases))
	}
	inputSchema := input.Schema()
	checker := typecheck.New(inputSchema, reg)

	cols := make([]schema.Column, len(exprs))
	for i, e := range exprs {
		t, err := checker.Infer(e)
		if err != nil {
			return nil, err
		}
		cols[i] = schema.Column{Name: aliases[i], Type: t, Namespace: schema.Value}
	}

	currentKey := KeyFieldOf(input)
	outKey := NoKeyField
	if currentKey.IsPresent() && !cfg.LegacyKeyFieldSemantics {
		for i, e := range exprs {
			if ref, ok := e.(*expr.ColumnRef); ok {
				if resolved, found := inputSchema.FindColumn(ref.Qualified); found && resolved.Name.Equal(currentKey.Name) {
					outKey = NewKeyField(aliases[i])
					break
				}
			}
		}
	}

	out, err := schema.Build(inputSchema.KeyColumns(), cols)
	if err != nil {
		return nil, err
	}
	return &Project{Input: input, Expressions: exprs, Aliases: aliases, Out: out, Key: outKey}, nil
}

// BuildFilter type-checks predicate as BOOLEAN and wraps input.
func BuildFilter(input Node, predicate expr.Expr, reg registry.Registry) (*Filter, error) {
	checker := typecheck.New(input.Schema(), reg)
	t, err := checker.Infer(predicate)
	if err != nil {
		return nil, err
	}
	if t.Kind() != types.Boolean && t.Kind() != types.Unknown {
		return nil, perr.At(perr.TypeMismatch, predicate.Pos(), "WHERE clause must be BOOLEAN, got %s", t)
	}
	return &Filter{Input: input, Predicate: predicate}, nil
}
