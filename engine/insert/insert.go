// Package insert implements the INSERT INTO ... VALUES path: building a
// fully resolved, typed row from literal column/value pairs against a
// target's catalog metadata, independent of the SELECT-driven plan
// algebra in engine/plan. Grounded on the corpus's CRUD statement builder
// (engine/parser/crud.go's InsertStatement handling in the teacher repo),
// reworked from "build an INSERT SQL string" to "resolve and typecheck an
// INSERT row," since this core never emits SQL text.
package insert

import (
	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/codegen"
	"github.com/streamsql-core/planner/engine/config"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/rewrite"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/serde"
	"github.com/streamsql-core/planner/engine/typecheck"
	"github.com/streamsql-core/planner/engine/types"
)

// ColumnValue is one column/value pair as written in an INSERT INTO
// statement's column list and VALUES tuple.
type ColumnValue struct {
	Column name.ColumnName
	Value  expr.Expr
}

// ResolvedRow is the fully typed, defaulted row ready to hand to a
// Serializer.
type ResolvedRow struct {
	Key       serde.Row
	Value     serde.Row
	Timestamp int64
}

// Resolve builds a ResolvedRow from cvs against target's schema, per the
// design doc's insert-values rules:
//   - Every value must be a literal expression (no column references, no
//     function calls): InsertNonLiteral otherwise.
//   - Every value's literal type must be castable to its column's
//     declared type: InsertTypeMismatch otherwise.
//   - Columns absent from cvs default to NULL, except ROWTIME, which
//     defaults to the current processing time supplied by nowMillis.
//   - When the target has exactly one key column and a value column of
//     the same name, checkKeyAgreement compares their resolved values:
//     InsertKeyMismatch when both are non-nil and differ. ROWKEY is not
//     compared with the declared key field (target.KeyFieldName), and
//     neither value is derived from the other.
//   - Disabled entirely when cfg.InsertValuesEnabled is false:
//     InsertDisabled.
func Resolve(cvs []ColumnValue, target catalog.SourceMetadata, cfg config.Config, reg registry.Registry, nowMillis int64) (ResolvedRow, error) {
	if !cfg.InsertValuesEnabled {
		return ResolvedRow{}, perr.New(perr.InsertDisabled, "INSERT INTO ... VALUES is disabled")
	}

	byCol := make(map[string]expr.Expr, len(cvs))
	for _, cv := range cvs {
		byCol[cv.Column.String()] = cv.Value
	}

	checker := typecheck.New(target.Schema, reg)

	resolveOne := func(col schema.Column) (any, error) {
		lit, present := byCol[col.Name.String()]
		if !present {
			if col.Name.Equal(schema.RowTimeName) {
				return nowMillis, nil
			}
			return nil, nil
		}
		normalized, err := rewrite.NormalizeRowTimeLiterals(lit)
		if err != nil {
			return nil, err
		}
		litNode, ok := normalized.(*expr.Literal)
		if !ok {
			return nil, perr.At(perr.InsertNonLiteral, lit.Pos(), "INSERT value for column %q must be a literal", col.Name)
		}
		valType, err := checker.Infer(litNode)
		if err != nil {
			return nil, err
		}
		if !types.CastableTo(valType, col.Type) {
			return nil, perr.At(perr.InsertTypeMismatch, lit.Pos(), "INSERT value for column %q has type %s, expected %s", col.Name, valType, col.Type)
		}
		compiled, err := codegen.NewCompiler(target.Schema, reg, nil, nil).Compile(litNode)
		if err != nil {
			return nil, err
		}
		return compiled(nil)
	}

	key := serde.Row{}
	for _, col := range target.Schema.KeyColumns() {
		v, err := resolveOne(col)
		if err != nil {
			return ResolvedRow{}, err
		}
		key[col.Name.String()] = v
	}

	value := serde.Row{}
	var timestamp int64 = nowMillis
	for _, col := range target.Schema.ValueColumns() {
		v, err := resolveOne(col)
		if err != nil {
			return ResolvedRow{}, err
		}
		value[col.Name.String()] = v
	}
	if rowtimeVal, err := resolveOne(schema.RowTimeColumn()); err == nil {
		if ts, ok := rowtimeVal.(int64); ok {
			timestamp = ts
		}
	}

	if err := checkKeyAgreement(target.Schema, key, value); err != nil {
		return ResolvedRow{}, err
	}

	return ResolvedRow{Key: key, Value: value, Timestamp: timestamp}, nil
}

// checkKeyAgreement compares, when the target has a single key column
// whose name also appears among the value columns, the resolved key entry
// and value entry of that name, and fails when both are non-nil and
// differ. Resolve fills both entries from the same INSERT column.
func checkKeyAgreement(s schema.Schema, key, value serde.Row) error {
	keyCols := s.KeyColumns()
	if len(keyCols) != 1 {
		return nil
	}
	keyCol := keyCols[0]
	if valDup, ok := value[keyCol.Name.String()]; ok {
		keyVal := key[keyCol.Name.String()]
		if keyVal != nil && valDup != nil && keyVal != valDup {
			return perr.New(perr.InsertKeyMismatch, "column %q was given a value in both the key and value position that disagree", keyCol.Name)
		}
	}
	return nil
}
