// Package expr implements the SQL expression algebra: an algebraic sum
// type of literals, references, arithmetic, comparisons, predicates, case
// expressions, function calls, subscripting, and casts. Expressions are
// immutable after construction and compared structurally, matching the
// data model's "sum type ... equal by structural comparison" contract.
//
// Grounded on the corpus's ExpressionNode (engine/parser/ast/nodes.go in
// the teacher repo), which used one stringly-typed struct with a Type tag
// for every variant; here each variant is its own concrete type
// implementing a common Expr interface, the idiomatic-Go rendering of the
// same "tagged sum, exhaustively matched" idea the design doc calls for.
package expr

import (
	"fmt"

	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/types"
)

// Expr is implemented by every expression tree node. exprNode is
// unexported so the sum is closed to this package.
type Expr interface {
	exprNode()
	// Pos is the source location, when the builder of this tree knew one.
	Pos() perr.Pos
}

type base struct{ pos perr.Pos }

func (base) exprNode()      {}
func (b base) Pos() perr.Pos { return b.pos }

// Literal is a constant value with an optional declared type; NULL
// literals carry types.UnknownType and type-infer as "any" until context
// fixes a concrete type.
type Literal struct {
	base
	Value any
	Type  types.SqlType
}

func NewLiteral(pos perr.Pos, value any, t types.SqlType) *Literal {
	return &Literal{base: base{pos}, Value: value, Type: t}
}

// ColumnRef refers to a column by bare or qualified name.
type ColumnRef struct {
	base
	Qualified string // "source.name" or "name"
}

func NewColumnRef(pos perr.Pos, qualified string) *ColumnRef {
	return &ColumnRef{base: base{pos}, Qualified: qualified}
}

// ArithOp identifies a binary or unary arithmetic operator.
type ArithOp string

const (
	OpAdd ArithOp = "+"
	OpSub ArithOp = "-"
	OpMul ArithOp = "*"
	OpDiv ArithOp = "/"
	OpMod ArithOp = "%"
	OpNeg ArithOp = "NEG" // unary minus
)

// ArithmeticBinary is a binary arithmetic expression.
type ArithmeticBinary struct {
	base
	Op          ArithOp
	Left, Right Expr
}

func NewArithmeticBinary(pos perr.Pos, op ArithOp, left, right Expr) *ArithmeticBinary {
	return &ArithmeticBinary{base: base{pos}, Op: op, Left: left, Right: right}
}

// ArithmeticUnary is a unary arithmetic expression (currently just NEG).
type ArithmeticUnary struct {
	base
	Op      ArithOp
	Operand Expr
}

func NewArithmeticUnary(pos perr.Pos, op ArithOp, operand Expr) *ArithmeticUnary {
	return &ArithmeticUnary{base: base{pos}, Op: op, Operand: operand}
}

// CompareOp identifies a comparison operator.
type CompareOp string

const (
	CmpEq CompareOp = "="
	CmpNe CompareOp = "!="
	CmpLt CompareOp = "<"
	CmpLe CompareOp = "<="
	CmpGt CompareOp = ">"
	CmpGe CompareOp = ">="
)

// Comparison is a binary comparison expression; it type-infers to BOOLEAN.
type Comparison struct {
	base
	Op          CompareOp
	Left, Right Expr
}

func NewComparison(pos perr.Pos, op CompareOp, left, right Expr) *Comparison {
	return &Comparison{base: base{pos}, Op: op, Left: left, Right: right}
}

// LogicalOp identifies AND/OR.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "AND"
	LogicalOr  LogicalOp = "OR"
)

// Logical is a binary boolean connective.
type Logical struct {
	base
	Op          LogicalOp
	Left, Right Expr
}

func NewLogical(pos perr.Pos, op LogicalOp, left, right Expr) *Logical {
	return &Logical{base: base{pos}, Op: op, Left: left, Right: right}
}

// Not negates a BOOLEAN operand.
type Not struct {
	base
	Operand Expr
}

func NewNot(pos perr.Pos, operand Expr) *Not { return &Not{base: base{pos}, Operand: operand} }

// IsNull / IsNotNull test nullability.
type IsNull struct {
	base
	Operand Expr
}

func NewIsNull(pos perr.Pos, operand Expr) *IsNull { return &IsNull{base: base{pos}, Operand: operand} }

type IsNotNull struct {
	base
	Operand Expr
}

func NewIsNotNull(pos perr.Pos, operand Expr) *IsNotNull {
	return &IsNotNull{base: base{pos}, Operand: operand}
}

// Between tests Operand BETWEEN Low AND High (inclusive).
type Between struct {
	base
	Operand, Low, High Expr
}

func NewBetween(pos perr.Pos, operand, low, high Expr) *Between {
	return &Between{base: base{pos}, Operand: operand, Low: low, High: high}
}

// Like matches Operand against a STRING Pattern.
type Like struct {
	base
	Operand Expr
	Pattern Expr
}

func NewLike(pos perr.Pos, operand, pattern Expr) *Like {
	return &Like{base: base{pos}, Operand: operand, Pattern: pattern}
}

// In tests Operand against a fixed list of candidate expressions.
type In struct {
	base
	Operand Expr
	Values  []Expr
}

func NewIn(pos perr.Pos, operand Expr, values []Expr) *In {
	return &In{base: base{pos}, Operand: operand, Values: values}
}

// Cast converts Operand to Target.
type Cast struct {
	base
	Operand Expr
	Target  types.SqlType
}

func NewCast(pos perr.Pos, operand Expr, target types.SqlType) *Cast {
	return &Cast{base: base{pos}, Operand: operand, Target: target}
}

// Subscript indexes an ARRAY (Index is INTEGER, negative counts from the
// end) or a MAP (Index is STRING).
type Subscript struct {
	base
	Base, Index Expr
}

func NewSubscript(pos perr.Pos, baseExpr, index Expr) *Subscript {
	return &Subscript{base: base{pos}, Base: baseExpr, Index: index}
}

// Dereference accesses a named STRUCT field.
type Dereference struct {
	base
	Base  Expr
	Field string
}

func NewDereference(pos perr.Pos, baseExpr Expr, field string) *Dereference {
	return &Dereference{base: base{pos}, Base: baseExpr, Field: field}
}

// FunctionCall invokes a scalar or aggregate function by name.
type FunctionCall struct {
	base
	Name name.FunctionName
	Args []Expr
}

func NewFunctionCall(pos perr.Pos, fn name.FunctionName, args []Expr) *FunctionCall {
	return &FunctionCall{base: base{pos}, Name: fn, Args: args}
}

// WhenThen is one WHEN/THEN arm of a SearchedCase.
type WhenThen struct {
	When Expr // must type-infer to BOOLEAN
	Then Expr
}

// SearchedCase is CASE WHEN cond1 THEN r1 WHEN cond2 THEN r2 ... ELSE e END.
type SearchedCase struct {
	base
	Whens   []WhenThen
	Default Expr // nil if no ELSE
}

func NewSearchedCase(pos perr.Pos, whens []WhenThen, def Expr) *SearchedCase {
	return &SearchedCase{base: base{pos}, Whens: whens, Default: def}
}

// SimpleWhenThen is one WHEN/THEN arm of a SimpleCase, matched against a
// shared Value by equality.
type SimpleWhenThen struct {
	Match Expr
	Then  Expr
}

// SimpleCase is CASE value WHEN m1 THEN r1 ... ELSE e END.
type SimpleCase struct {
	base
	Value   Expr
	Whens   []SimpleWhenThen
	Default Expr
}

func NewSimpleCase(pos perr.Pos, value Expr, whens []SimpleWhenThen, def Expr) *SimpleCase {
	return &SimpleCase{base: base{pos}, Value: value, Whens: whens, Default: def}
}

// String renders a compact, deterministic textual form used for
// synthetic-name generation (e.g. GROUP BY key-field joining) and for
// error messages. It is not a SQL pretty-printer.
func String(e Expr) string {
	switch v := e.(type) {
	case *Literal:
		return fmt.Sprintf("%v", v.Value)
	case *ColumnRef:
		return v.Qualified
	case *ArithmeticBinary:
		return fmt.Sprintf("(%s %s %s)", String(v.Left), v.Op, String(v.Right))
	case *ArithmeticUnary:
		return fmt.Sprintf("(%s%s)", v.Op, String(v.Operand))
	case *Comparison:
		return fmt.Sprintf("(%s %s %s)", String(v.Left), v.Op, String(v.Right))
	case *Logical:
		return fmt.Sprintf("(%s %s %s)", String(v.Left), v.Op, String(v.Right))
	case *Not:
		return fmt.Sprintf("(NOT %s)", String(v.Operand))
	case *IsNull:
		return fmt.Sprintf("(%s IS NULL)", String(v.Operand))
	case *IsNotNull:
		return fmt.Sprintf("(%s IS NOT NULL)", String(v.Operand))
	case *Between:
		return fmt.Sprintf("(%s BETWEEN %s AND %s)", String(v.Operand), String(v.Low), String(v.High))
	case *Like:
		return fmt.Sprintf("(%s LIKE %s)", String(v.Operand), String(v.Pattern))
	case *In:
		s := ""
		for i, a := range v.Values {
			if i > 0 {
				s += ", "
			}
			s += String(a)
		}
		return fmt.Sprintf("(%s IN (%s))", String(v.Operand), s)
	case *Cast:
		return fmt.Sprintf("CAST(%s AS %s)", String(v.Operand), v.Target.String())
	case *Subscript:
		return fmt.Sprintf("%s[%s]", String(v.Base), String(v.Index))
	case *Dereference:
		return fmt.Sprintf("%s.%s", String(v.Base), v.Field)
	case *FunctionCall:
		s := v.Name.String() + "("
		for i, a := range v.Args {
			if i > 0 {
				s += ", "
			}
			s += String(a)
		}
		return s + ")"
	case *SearchedCase:
		s := "CASE"
		for _, w := range v.Whens {
			s += fmt.Sprintf(" WHEN %s THEN %s", String(w.When), String(w.Then))
		}
		if v.Default != nil {
			s += " ELSE " + String(v.Default)
		}
		return s + " END"
	case *SimpleCase:
		s := "CASE " + String(v.Value)
		for _, w := range v.Whens {
			s += fmt.Sprintf(" WHEN %s THEN %s", String(w.Match), String(w.Then))
		}
		if v.Default != nil {
			s += " ELSE " + String(v.Default)
		}
		return s + " END"
	default:
		return "?"
	}
}
