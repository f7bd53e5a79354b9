package expr

import "github.com/streamsql-core/planner/engine/perr"

// Rule is a single rewrite plug-in. Rewrite calls it on a node after that
// node's children have already been rewritten; it either returns a
// replacement (ok=true) or keeps the node as rebuilt from its rewritten
// children (ok=false). Rule never mutates node in place; expressions are
// immutable.
type Rule func(node Expr) (replacement Expr, ok bool, err error)

// Rewrite applies rule bottom-up: children are rewritten first, then rule
// is consulted on the (possibly-rewritten) node itself. This matches the
// design doc's "innermost rewrites first, so a rule never has to look
// through an unrewritten child" requirement. Rewrite preserves tree shape
// except where rule substitutes a node, and it never touches types,
// source positions, or anything outside the Expr it is given.
func Rewrite(node Expr, rule Rule) (Expr, error) {
	if node == nil {
		return nil, nil
	}
	rewritten, err := rewriteChildren(node, rule)
	if err != nil {
		return nil, err
	}
	out, ok, err := rule(rewritten)
	if err != nil {
		return nil, err
	}
	if ok {
		return out, nil
	}
	return rewritten, nil
}

func rewriteChildren(node Expr, rule Rule) (Expr, error) {
	switch v := node.(type) {
	case *Literal, *ColumnRef:
		return node, nil
	case *ArithmeticBinary:
		l, err := Rewrite(v.Left, rule)
		if err != nil {
			return nil, err
		}
		r, err := Rewrite(v.Right, rule)
		if err != nil {
			return nil, err
		}
		return &ArithmeticBinary{base: v.base, Op: v.Op, Left: l, Right: r}, nil
	case *ArithmeticUnary:
		o, err := Rewrite(v.Operand, rule)
		if err != nil {
			return nil, err
		}
		return &ArithmeticUnary{base: v.base, Op: v.Op, Operand: o}, nil
	case *Comparison:
		l, err := Rewrite(v.Left, rule)
		if err != nil {
			return nil, err
		}
		r, err := Rewrite(v.Right, rule)
		if err != nil {
			return nil, err
		}
		return &Comparison{base: v.base, Op: v.Op, Left: l, Right: r}, nil
	case *Logical:
		l, err := Rewrite(v.Left, rule)
		if err != nil {
			return nil, err
		}
		r, err := Rewrite(v.Right, rule)
		if err != nil {
			return nil, err
		}
		return &Logical{base: v.base, Op: v.Op, Left: l, Right: r}, nil
	case *Not:
		o, err := Rewrite(v.Operand, rule)
		if err != nil {
			return nil, err
		}
		return &Not{base: v.base, Operand: o}, nil
	case *IsNull:
		o, err := Rewrite(v.Operand, rule)
		if err != nil {
			return nil, err
		}
		return &IsNull{base: v.base, Operand: o}, nil
	case *IsNotNull:
		o, err := Rewrite(v.Operand, rule)
		if err != nil {
			return nil, err
		}
		return &IsNotNull{base: v.base, Operand: o}, nil
	case *Between:
		o, err := Rewrite(v.Operand, rule)
		if err != nil {
			return nil, err
		}
		lo, err := Rewrite(v.Low, rule)
		if err != nil {
			return nil, err
		}
		hi, err := Rewrite(v.High, rule)
		if err != nil {
			return nil, err
		}
		return &Between{base: v.base, Operand: o, Low: lo, High: hi}, nil
	case *Like:
		o, err := Rewrite(v.Operand, rule)
		if err != nil {
			return nil, err
		}
		p, err := Rewrite(v.Pattern, rule)
		if err != nil {
			return nil, err
		}
		return &Like{base: v.base, Operand: o, Pattern: p}, nil
	case *In:
		o, err := Rewrite(v.Operand, rule)
		if err != nil {
			return nil, err
		}
		vals := make([]Expr, len(v.Values))
		for i, a := range v.Values {
			vals[i], err = Rewrite(a, rule)
			if err != nil {
				return nil, err
			}
		}
		return &In{base: v.base, Operand: o, Values: vals}, nil
	case *Cast:
		o, err := Rewrite(v.Operand, rule)
		if err != nil {
			return nil, err
		}
		return &Cast{base: v.base, Operand: o, Target: v.Target}, nil
	case *Subscript:
		b, err := Rewrite(v.Base, rule)
		if err != nil {
			return nil, err
		}
		i, err := Rewrite(v.Index, rule)
		if err != nil {
			return nil, err
		}
		return &Subscript{base: v.base, Base: b, Index: i}, nil
	case *Dereference:
		b, err := Rewrite(v.Base, rule)
		if err != nil {
			return nil, err
		}
		return &Dereference{base: v.base, Base: b, Field: v.Field}, nil
	case *FunctionCall:
		args := make([]Expr, len(v.Args))
		var err error
		for i, a := range v.Args {
			args[i], err = Rewrite(a, rule)
			if err != nil {
				return nil, err
			}
		}
		return &FunctionCall{base: v.base, Name: v.Name, Args: args}, nil
	case *SearchedCase:
		whens := make([]WhenThen, len(v.Whens))
		for i, w := range v.Whens {
			when, err := Rewrite(w.When, rule)
			if err != nil {
				return nil, err
			}
			then, err := Rewrite(w.Then, rule)
			if err != nil {
				return nil, err
			}
			whens[i] = WhenThen{When: when, Then: then}
		}
		var def Expr
		var err error
		if v.Default != nil {
			def, err = Rewrite(v.Default, rule)
			if err != nil {
				return nil, err
			}
		}
		return &SearchedCase{base: v.base, Whens: whens, Default: def}, nil
	case *SimpleCase:
		val, err := Rewrite(v.Value, rule)
		if err != nil {
			return nil, err
		}
		whens := make([]SimpleWhenThen, len(v.Whens))
		for i, w := range v.Whens {
			m, err := Rewrite(w.Match, rule)
			if err != nil {
				return nil, err
			}
			t, err := Rewrite(w.Then, rule)
			if err != nil {
				return nil, err
			}
			whens[i] = SimpleWhenThen{Match: m, Then: t}
		}
		var def Expr
		if v.Default != nil {
			def, err = Rewrite(v.Default, rule)
			if err != nil {
				return nil, err
			}
		}
		return &SimpleCase{base: v.base, Value: val, Whens: whens, Default: def}, nil
	default:
		return nil, perr.New(perr.UnknownFunction, "rewrite: unhandled expression node %T", node)
	}
}
