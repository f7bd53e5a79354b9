package codegen

import (
	"fmt"
	"math/big"

	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/types"
)

// decimal arithmetic runs on *big.Rat for exactness (the design doc's
// "MathContext(precision, UNNECESSARY)" rule: no silent rounding mid
// computation), then the result is rescaled to the statically inferred
// scale exactly once, at the end.

func toRat(x any) (*big.Rat, error) {
	switch n := x.(type) {
	case *big.Rat:
		return n, nil
	case int64:
		return new(big.Rat).SetInt64(n), nil
	case int32:
		return new(big.Rat).SetInt64(int64(n)), nil
	case float64:
		r := new(big.Rat)
		if r.SetFloat64(n) == nil {
			return nil, fmt.Errorf("codegen: cannot represent %v as a rational", n)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("codegen: cannot convert %T to a numeric value", x)
	}
}

// rescale rounds r to scale decimal places, half-up, matching the data
// model's fixed-point DECIMAL(p, s) semantics.
func rescale(r *big.Rat, scale int) *big.Rat {
	factor := new(big.Rat).SetInt(pow10(scale))
	scaled := new(big.Rat).Mul(r, factor)
	num := scaled.Num()
	den := scaled.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	twice := new(big.Int).Mul(rem, big.NewInt(2))
	twice.Abs(twice)
	if twice.Cmp(den) >= 0 {
		if num.Sign() >= 0 {
			q.Add(q, big.NewInt(1))
		} else {
			q.Sub(q, big.NewInt(1))
		}
	}
	out := new(big.Rat).SetInt(q)
	return out.Quo(out, factor)
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func (c *Compiler) compileArithmetic(v *expr.ArithmeticBinary) (ExpressionEvaluator, error) {
	left, err := c.Compile(v.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.Compile(v.Right)
	if err != nil {
		return nil, err
	}

	var resultType types.SqlType
	if c.Checker != nil {
		resultType, _ = c.Checker.Infer(v)
	}

	return func(row Row) (any, error) {
		lv, err := left(row)
		if err != nil {
			return nil, err
		}
		rv, err := right(row)
		if err != nil {
			return nil, err
		}
		if lv == nil || rv == nil {
			return nil, nil
		}

		if resultType.Kind() == types.Double {
			lf, err := toFloatAny(lv)
			if err != nil {
				return nil, err
			}
			rf, err := toFloatAny(rv)
			if err != nil {
				return nil, err
			}
			return applyFloat(v.Op, lf, rf)
		}

		if resultType.Kind() == types.Decimal {
			lr, err := toRat(lv)
			if err != nil {
				return nil, err
			}
			rr, err := toRat(rv)
			if err != nil {
				return nil, err
			}
			result, err := applyRat(v.Op, lr, rr)
			if err != nil {
				return nil, err
			}
			return rescale(result, resultType.Scale()), nil
		}

		// Integer / BigInt path.
		li, err := toInt(lv)
		if err != nil {
			return nil, err
		}
		ri, err := toInt(rv)
		if err != nil {
			return nil, err
		}
		return applyInt(v.Op, li, ri)
	}, nil
}

func toFloatAny(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case *big.Rat:
		f, _ := n.Float64()
		return f, nil
	default:
		return 0, fmt.Errorf("codegen: cannot convert %T to float", v)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("codegen: cannot convert %T to integer", v)
	}
}

func applyFloat(op expr.ArithOp, l, r float64) (any, error) {
	switch op {
	case expr.OpAdd:
		return l + r, nil
	case expr.OpSub:
		return l - r, nil
	case expr.OpMul:
		return l * r, nil
	case expr.OpDiv:
		if r == 0 {
			return nil, fmt.Errorf("codegen: division by zero")
		}
		return l / r, nil
	default:
		return nil, fmt.Errorf("codegen: unsupported float operator %s", op)
	}
}

func applyRat(op expr.ArithOp, l, r *big.Rat) (*big.Rat, error) {
	switch op {
	case expr.OpAdd:
		return new(big.Rat).Add(l, r), nil
	case expr.OpSub:
		return new(big.Rat).Sub(l, r), nil
	case expr.OpMul:
		return new(big.Rat).Mul(l, r), nil
	case expr.OpDiv:
		if r.Sign() == 0 {
			return nil, fmt.Errorf("codegen: division by zero")
		}
		return new(big.Rat).Quo(l, r), nil
	default:
		return nil, fmt.Errorf("codegen: unsupported decimal operator %s", op)
	}
}

func applyInt(op expr.ArithOp, l, r int64) (any, error) {
	switch op {
	case expr.OpAdd:
		return l + r, nil
	case expr.OpSub:
		return l - r, nil
	case expr.OpMul:
		return l * r, nil
	case expr.OpDiv:
		if r == 0 {
			return nil, fmt.Errorf("codegen: division by zero")
		}
		return l / r, nil
	default:
		return nil, fmt.Errorf("codegen: unsupported integer operator %s", op)
	}
}
