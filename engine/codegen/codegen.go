// Package codegen compiles a type-checked expr.Expr into a row-level
// ExpressionEvaluator: a closure tree that reads from a positional row
// slice instead of re-walking the AST and re-resolving column names on
// every row. Grounded on the corpus's compiled-query-builder pattern
// (engine/builders, which turned a Query into a reusable query string
// once rather than per execution); here the same "compile once, run
// many" shape applies to per-row expression evaluation instead of SQL
// text generation.
package codegen

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

// Row is a positional slice of already-resolved column values, in the
// order RequiredColumns returns them.
type Row []any

// ExpressionEvaluator evaluates a compiled expression against a Row.
type ExpressionEvaluator func(row Row) (any, error)

// RequiredColumns collects the distinct columns e actually references,
// resolved against s, in first-reference order. Compile uses the same
// order to assign each column a positional index, so callers can build a
// Row by projecting only the columns an expression needs instead of
// carrying the whole schema through evaluation.
func RequiredColumns(e expr.Expr, s schema.Schema) ([]schema.Column, error) {
	var cols []schema.Column
	seen := map[string]bool{}
	var walk func(expr.Expr) error
	walk = func(n expr.Expr) error {
		if n == nil {
			return nil
		}
		if ref, ok := n.(*expr.ColumnRef); ok {
			col, found := s.FindColumn(ref.Qualified)
			if !found {
				return fmt.Errorf("codegen: unresolved column %q", ref.Qualified)
			}
			if !seen[col.FullName()] {
				seen[col.FullName()] = true
				cols = append(cols, col)
			}
			return nil
		}
		for _, child := range children(n) {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(e); err != nil {
		return nil, err
	}
	return cols, nil
}

func children(n expr.Expr) []expr.Expr {
	switch v := n.(type) {
	case *expr.ArithmeticBinary:
		return []expr.Expr{v.Left, v.Right}
	case *expr.ArithmeticUnary:
		return []expr.Expr{v.Operand}
	case *expr.Comparison:
		return []expr.Expr{v.Left, v.Right}
	case *expr.Logical:
		return []expr.Expr{v.Left, v.Right}
	case *expr.Not:
		return []expr.Expr{v.Operand}
	case *expr.IsNull:
		return []expr.Expr{v.Operand}
	case *expr.IsNotNull:
		return []expr.Expr{v.Operand}
	case *expr.Between:
		return []expr.Expr{v.Operand, v.Low, v.High}
	case *expr.Like:
		return []expr.Expr{v.Operand, v.Pattern}
	case *expr.In:
		return append([]expr.Expr{v.Operand}, v.Values...)
	case *expr.Cast:
		return []expr.Expr{v.Operand}
	case *expr.Subscript:
		return []expr.Expr{v.Base, v.Index}
	case *expr.Dereference:
		return []expr.Expr{v.Base}
	case *expr.FunctionCall:
		return v.Args
	case *expr.SearchedCase:
		out := make([]expr.Expr, 0, len(v.Whens)*2+1)
		for _, w := range v.Whens {
			out = append(out, w.When, w.Then)
		}
		if v.Default != nil {
			out = append(out, v.Default)
		}
		return out
	case *expr.SimpleCase:
		out := []expr.Expr{v.Value}
		for _, w := range v.Whens {
			out = append(out, w.Match, w.Then)
		}
		if v.Default != nil {
			out = append(out, v.Default)
		}
		return out
	default:
		return nil
	}
}

// WindowBounds supplies the concrete millisecond bounds of one window
// instance, letting a WindowedAggregate's WINDOWSTART/WINDOWEND columns
// resolve to a value computed at evaluation time instead of a row
// position, since no physical row slot ever carries them.
type WindowBounds struct {
	Start int64
	End   int64
}

// windowBoundColumnName reports the unqualified column name when
// qualified names a window-boundary pseudo column, per
// engine/plan.WindowStartName/WindowEndName.
func windowBoundColumnName(qualified string) (string, bool) {
	name := qualified
	if idx := strings.LastIndexByte(qualified, '.'); idx >= 0 {
		name = qualified[idx+1:]
	}
	if name == "WINDOWSTART" || name == "WINDOWEND" {
		return name, true
	}
	return "", false
}

// Compiler compiles expressions against a fixed schema and function
// registry. A single Compiler is safe to reuse across many Compile calls;
// each call returns an independent ExpressionEvaluator.
type Compiler struct {
	Schema   schema.Schema
	Registry registry.Registry
	Checker  TypeInferer
	Bounds   *WindowBounds
	columns  map[string]int
}

// WithWindowBounds returns a copy of c that resolves WINDOWSTART/WINDOWEND
// column references to bounds instead of erroring, for compiling
// expressions over one concrete window instance's output row.
func (c *Compiler) WithWindowBounds(bounds WindowBounds) *Compiler {
	out := *c
	out.Bounds = &bounds
	return &out
}

// TypeInferer is the subset of typecheck.Checker that codegen needs to
// pick the correct decimal scale for an arithmetic result. Accepting an
// interface here avoids codegen depending on typecheck's full surface.
type TypeInferer interface {
	Infer(e expr.Expr) (types.SqlType, error)
}

// NewCompiler builds a Compiler whose evaluators index rows according to
// cols (typically the result of RequiredColumns). checker supplies the
// static type of each node so decimal arithmetic can rescale exactly
// instead of guessing from runtime values.
func NewCompiler(s schema.Schema, reg registry.Registry, checker TypeInferer, cols []schema.Column) *Compiler {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c.FullName()] = i
	}
	return &Compiler{Schema: s, Registry: reg, Checker: checker, columns: idx}
}

// Compile builds an ExpressionEvaluator for e. Function call-sites are
// resolved against the registry exactly once, at compile time, per the
// design doc's "function resolution happens once per call site, not once
// per row" requirement; LIKE patterns are compiled ahead of time into one
// of five shapes (equality, prefix, suffix, substring, or regular
// expression) instead of being re-parsed on every row.
func (c *Compiler) Compile(e expr.Expr) (ExpressionEvaluator, error) {
	switch v := e.(type) {
	case *expr.Literal:
		val := v.Value
		return func(Row) (any, error) { return val, nil }, nil

	case *expr.ColumnRef:
		if boundName, ok := windowBoundColumnName(v.Qualified); ok {
			if c.Bounds == nil {
				return nil, fmt.Errorf("codegen: %s has no window bounds in this evaluation context", boundName)
			}
			bounds := *c.Bounds
			if boundName == "WINDOWSTART" {
				return func(Row) (any, error) { return bounds.Start, nil }, nil
			}
			return func(Row) (any, error) { return bounds.End, nil }, nil
		}
		col, ok := c.Schema.FindColumn(v.Qualified)
		if !ok {
			return nil, fmt.Errorf("codegen: unresolved column %q", v.Qualified)
		}
		idx, ok := c.columns[col.FullName()]
		if !ok {
			return nil, fmt.Errorf("codegen: column %q not in required set", col.FullName())
		}
		return func(row Row) (any, error) { return row[idx], nil }, nil

	case *expr.ArithmeticUnary:
		operand, err := c.Compile(v.Operand)
		if err != nil {
			return nil, err
		}
		return func(row Row) (any, error) {
			x, err := operand(row)
			if err != nil {
				return nil, err
			}
			if x == nil {
				return nil, nil
			}
			return negate(x)
		}, nil

	case *expr.ArithmeticBinary:
		return c.compileArithmetic(v)

	case *expr.Comparison:
		return c.compileComparison(v)

	case *expr.Logical:
		left, err := c.Compile(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.Compile(v.Right)
		if err != nil {
			return nil, err
		}
		if v.Op == expr.LogicalAnd {
			return func(row Row) (any, error) {
				l, err := left(row)
				if err != nil {
					return nil, err
				}
				if lb, ok := l.(bool); ok && !lb {
					return false, nil // short-circuit: AND with a false left side
				}
				r, err := right(row)
				if err != nil {
					return nil, err
				}
				if rb, ok := r.(bool); ok && !rb {
					return false, nil
				}
				if l == nil || r == nil {
					return nil, nil
				}
				return true, nil
			}, nil
		}
		return func(row Row) (any, error) {
			l, err := left(row)
			if err != nil {
				return nil, err
			}
			if lb, ok := l.(bool); ok && lb {
				return true, nil // short-circuit: OR with a true left side
			}
			r, err := right(row)
			if err != nil {
				return nil, err
			}
			if rb, ok := r.(bool); ok && rb {
				return true, nil
			}
			if l == nil || r == nil {
				return nil, nil
			}
			return false, nil
		}, nil

	case *expr.Not:
		operand, err := c.Compile(v.Operand)
		if err != nil {
			return nil, err
		}
		return func(row Row) (any, error) {
			x, err := operand(row)
			if err != nil {
				return nil, err
			}
			if x == nil {
				return nil, nil
			}
			return !x.(bool), nil
		}, nil

	case *expr.IsNull:
		operand, err := c.Compile(v.Operand)
		if err != nil {
			return nil, err
		}
		return func(row Row) (any, error) {
			x, err := operand(row)
			if err != nil {
				return nil, err
			}
			return x == nil, nil
		}, nil

	case *expr.IsNotNull:
		operand, err := c.Compile(v.Operand)
		if err != nil {
			return nil, err
		}
		return func(row Row) (any, error) {
			x, err := operand(row)
			if err != nil {
				return nil, err
			}
			return x != nil, nil
		}, nil

	case *expr.Between:
		return c.compileBetween(v)

	case *expr.Like:
		return c.compileLike(v)

	case *expr.In:
		return c.compileIn(v)

	case *expr.Cast:
		return c.compileCast(v)

	case *expr.Subscript:
		return c.compileSubscript(v)

	case *expr.Dereference:
		return c.compileDereference(v)

	case *expr.FunctionCall:
		return c.compileFunctionCall(v)

	case *expr.SearchedCase:
		return c.compileSearchedCase(v)

	case *expr.SimpleCase:
		return c.compileSimpleCase(v)

	default:
		return nil, fmt.Errorf("codegen: unhandled expression node %T", e)
	}
}

func negate(x any) (any, error) {
	switch n := x.(type) {
	case int64:
		return -n, nil
	case int32:
		return -n, nil
	case float64:
		return -n, nil
	case *big.Rat:
		return new(big.Rat).Neg(n), nil
	default:
		return nil, fmt.Errorf("codegen: cannot negate %T", x)
	}
}
