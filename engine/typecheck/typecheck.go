// Package typecheck implements expression type inference: a bottom-up
// visitor that assigns every expr.Expr node a types.SqlType, or fails with
// one of engine/perr's typed diagnostics. Grounded on the corpus's
// OperatorMap-driven type checks (mapping/operators.go, mapping/types.go
// in the teacher repo), reimplemented here as a recursive visitor over the
// expr sum type instead of a flat operator table, since the sum type
// carries its own shape.
package typecheck

import (
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

// Checker infers types against a fixed schema and function registry.
type Checker struct {
	Schema   schema.Schema
	Registry registry.Registry
}

// New builds a Checker.
func New(s schema.Schema, reg registry.Registry) *Checker {
	return &Checker{Schema: s, Registry: reg}
}

// Infer returns the inferred type of e, or a *perr.PlanError.
func (c *Checker) Infer(e expr.Expr) (types.SqlType, error) {
	switch v := e.(type) {
	case *expr.Literal:
		return v.Type, nil

	case *expr.ColumnRef:
		col, ok := c.Schema.FindColumn(v.Qualified)
		if !ok {
			return types.SqlType{}, perr.At(perr.UnknownColumn, v.Pos(), "unknown column %q", v.Qualified).
				WithSuggestion(perr.Suggest(v.Qualified, c.schemaColumnNames(), 3))
		}
		return col.Type, nil

	case *expr.ArithmeticUnary:
		t, err := c.Infer(v.Operand)
		if err != nil {
			return types.SqlType{}, err
		}
		if !t.IsNumeric() {
			return types.SqlType{}, perr.At(perr.ArithmeticTypeMismatch, v.Pos(), "unary %s requires a numeric operand, got %s", v.Op, t)
		}
		return t, nil

	case *expr.ArithmeticBinary:
		lt, err := c.Infer(v.Left)
		if err != nil {
			return types.SqlType{}, err
		}
		rt, err := c.Infer(v.Right)
		if err != nil {
			return types.SqlType{}, err
		}
		op, ok := arithOp(v.Op)
		if !ok {
			return types.SqlType{}, perr.At(perr.ArithmeticTypeMismatch, v.Pos(), "unsupported arithmetic operator %s", v.Op)
		}
		result, ok := types.PromoteArithmetic(lt, rt, op)
		if !ok {
			return types.SqlType{}, perr.At(perr.ArithmeticTypeMismatch, v.Pos(), "cannot apply %s to %s and %s", v.Op, lt, rt)
		}
		return result, nil

	case *expr.Comparison:
		lt, err := c.Infer(v.Left)
		if err != nil {
			return types.SqlType{}, err
		}
		rt, err := c.Infer(v.Right)
		if err != nil {
			return types.SqlType{}, err
		}
		equalityOnly := v.Op == expr.CmpEq || v.Op == expr.CmpNe
		if !types.ComparisonCompatible(lt, rt, equalityOnly) {
			return types.SqlType{}, perr.At(perr.ComparisonIncompatible, v.Pos(), "cannot compare %s with %s", lt, rt)
		}
		return types.BooleanType, nil

	case *expr.Logical:
		if err := c.expectBoolean(v.Left); err != nil {
			return types.SqlType{}, err
		}
		if err := c.expectBoolean(v.Right); err != nil {
			return types.SqlType{}, err
		}
		return types.BooleanType, nil

	case *expr.Not:
		if err := c.expectBoolean(v.Operand); err != nil {
			return types.SqlType{}, err
		}
		return types.BooleanType, nil

	case *expr.IsNull, *expr.IsNotNull:
		return types.BooleanType, nil

	case *expr.Between:
		if _, err := c.Infer(v.Operand); err != nil {
			return types.SqlType{}, err
		}
		if _, err := c.Infer(v.Low); err != nil {
			return types.SqlType{}, err
		}
		if _, err := c.Infer(v.High); err != nil {
			return types.SqlType{}, err
		}
		return types.BooleanType, nil

	case *expr.Like:
		ot, err := c.Infer(v.Operand)
		if err != nil {
			return types.SqlType{}, err
		}
		if ot.Kind() != types.String && ot.Kind() != types.Unknown {
			return types.SqlType{}, perr.At(perr.TypeMismatch, v.Pos(), "LIKE requires a STRING operand, got %s", ot)
		}
		pt, err := c.Infer(v.Pattern)
		if err != nil {
			return types.SqlType{}, err
		}
		if pt.Kind() != types.String && pt.Kind() != types.Unknown {
			return types.SqlType{}, perr.At(perr.TypeMismatch, v.Pos(), "LIKE pattern must be STRING, got %s", pt)
		}
		return types.BooleanType, nil

	case *expr.In:
		ot, err := c.Infer(v.Operand)
		if err != nil {
			return types.SqlType{}, err
		}
		for _, cand := range v.Values {
			ct, err := c.Infer(cand)
			if err != nil {
				return types.SqlType{}, err
			}
			if !types.ComparisonCompatible(ot, ct, true) {
				return types.SqlType{}, perr.At(perr.ComparisonIncompatible, v.Pos(), "IN candidate type %s incompatible with %s", ct, ot)
			}
		}
		return types.BooleanType, nil

	case *expr.Cast:
		st, err := c.Infer(v.Operand)
		if err != nil {
			return types.SqlType{}, err
		}
		if !types.CastableTo(st, v.Target) {
			return types.SqlType{}, perr.At(perr.CastNotSupported, v.Pos(), "cannot cast %s to %s", st, v.Target)
		}
		return v.Target, nil

	case *expr.Subscript:
		bt, err := c.Infer(v.Base)
		if err != nil {
			return types.SqlType{}, err
		}
		it, err := c.Infer(v.Index)
		if err != nil {
			return types.SqlType{}, err
		}
		switch bt.Kind() {
		case types.Array:
			if !it.IsNumeric() {
				return types.SqlType{}, perr.At(perr.TypeMismatch, v.Pos(), "ARRAY subscript must be numeric, got %s", it)
			}
			return bt.Elem(), nil
		case types.Map:
			if it.Kind() != types.String {
				return types.SqlType{}, perr.At(perr.TypeMismatch, v.Pos(), "MAP subscript must be STRING, got %s", it)
			}
			return bt.Elem(), nil
		default:
			return types.SqlType{}, perr.At(perr.SubscriptBaseNotContainer, v.Pos(), "cannot subscript non-container type %s", bt)
		}

	case *expr.Dereference:
		bt, err := c.Infer(v.Base)
		if err != nil {
			return types.SqlType{}, err
		}
		if bt.Kind() != types.Struct {
			return types.SqlType{}, perr.At(perr.SubscriptBaseNotContainer, v.Pos(), "cannot dereference non-STRUCT type %s", bt)
		}
		for _, f := range bt.Fields() {
			if f.Name == v.Field {
				return f.Type, nil
			}
		}
		return types.SqlType{}, perr.At(perr.DereferenceUnresolved, v.Pos(), "STRUCT has no field %q", v.Field)

	case *expr.FunctionCall:
		return c.inferCall(v)

	case *expr.SearchedCase:
		for _, w := range v.Whens {
			if err := c.expectBoolean(w.When); err != nil {
				return types.SqlType{}, err
			}
		}
		return c.inferCommonSupertype(v.Pos(), caseResultExprs(v))

	case *expr.SimpleCase:
		if _, err := c.Infer(v.Value); err != nil {
			return types.SqlType{}, err
		}
		return c.inferCommonSupertype(v.Pos(), simpleCaseResultExprs(v))

	default:
		return types.SqlType{}, perr.New(perr.TypeMismatch, "typecheck: unhandled expression node %T", e)
	}
}

func (c *Checker) expectBoolean(e expr.Expr) error {
	t, err := c.Infer(e)
	if err != nil {
		return err
	}
	if t.Kind() != types.Boolean && t.Kind() != types.Unknown {
		return perr.At(perr.TypeMismatch, e.Pos(), "expected BOOLEAN, got %s", t)
	}
	return nil
}

func arithOp(op expr.ArithOp) (types.ArithOp, bool) {
	switch op {
	case expr.OpAdd:
		return types.Add, true
	case expr.OpSub:
		return types.Sub, true
	case expr.OpMul:
		return types.Mul, true
	case expr.OpDiv:
		return types.Div, true
	default:
		return 0, false
	}
}

func caseResultExprs(v *expr.SearchedCase) []expr.Expr {
	out := make([]expr.Expr, 0, len(v.Whens)+1)
	for _, w := range v.Whens {
		out = append(out, w.Then)
	}
	if v.Default != nil {
		out = append(out, v.Default)
	}
	return out
}

func simpleCaseResultExprs(v *expr.SimpleCase) []expr.Expr {
	out := make([]expr.Expr, 0, len(v.Whens)+1)
	for _, w := range v.Whens {
		out = append(out, w.Then)
	}
	if v.Default != nil {
		out = append(out, v.Default)
	}
	return out
}

// inferCommonSupertype type-checks every branch of a CASE expression and
// requires they share a single common type, per the design doc's "all
// branches must agree on a common supertype" CASE rule. Numeric branches
// widen to their comparison-common type; non-numeric branches must match
// exactly.
func (c *Checker) inferCommonSupertype(pos perr.Pos, branches []expr.Expr) (types.SqlType, error) {
	var result types.SqlType
	have := false
	for _, b := range branches {
		t, err := c.Infer(b)
		if err != nil {
			return types.SqlType{}, err
		}
		if t.Kind() == types.Unknown {
			continue
		}
		if !have {
			result, have = t, true
			continue
		}
		if result.Equal(t) {
			continue
		}
		if result.IsNumeric() && t.IsNumeric() {
			result = types.WidenForComparison(result, t)
			continue
		}
		return types.SqlType{}, perr.At(perr.CaseTypeMismatch, pos, "CASE branches have incompatible types %s and %s", result, t)
	}
	if !have {
		return types.UnknownType, nil
	}
	return result, nil
}

func (c *Checker) schemaColumnNames() []string {
	var names []string
	for _, col := range c.Schema.ValueColumns() {
		names = append(names, col.FullName())
	}
	for _, col := range c.Schema.KeyColumns() {
		names = append(names, col.FullName())
	}
	return names
}
