package codegen

import (
	"fmt"
	"math/big"

	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/types"
)

// compareValues returns -1, 0, or 1, or an error when the two operand
// types cannot be compared. It has no NULL case: callers check for a nil
// operand first and yield their false/nil result without calling it.
func compareValues(l, r any) (int, error) {
	switch lv := l.(type) {
	case string:
		rv, ok := r.(string)
		if !ok {
			return 0, fmt.Errorf("codegen: cannot compare string with %T", r)
		}
		switch {
		case lv < rv:
			return -1, nil
		case lv > rv:
			return 1, nil
		default:
			return 0, nil
		}
	case bool:
		rv, ok := r.(bool)
		if !ok {
			return 0, fmt.Errorf("codegen: cannot compare bool with %T", r)
		}
		if lv == rv {
			return 0, nil
		}
		if !lv {
			return -1, nil
		}
		return 1, nil
	default:
		lr, err := toRat(l)
		if err != nil {
			return 0, err
		}
		rr, err := toRat(r)
		if err != nil {
			return 0, err
		}
		return lr.Cmp(rr), nil
	}
}

func (c *Compiler) compileComparison(v *expr.Comparison) (ExpressionEvaluator, error) {
	left, err := c.Compile(v.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.Compile(v.Right)
	if err != nil {
		return nil, err
	}
	op := v.Op
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
			return false, nil
		}
		cmp, err := compareValues(lv, rv)
		if err != nil {
			return nil, err
		}
		switch op {
		case expr.CmpEq:
			return cmp == 0, nil
		case expr.CmpNe:
			return cmp != 0, nil
		case expr.CmpLt:
			return cmp < 0, nil
		case expr.CmpLe:
			return cmp <= 0, nil
		case expr.CmpGt:
			return cmp > 0, nil
		case expr.CmpGe:
			return cmp >= 0, nil
		default:
			return nil, fmt.Errorf("codegen: unsupported comparison operator %s", op)
		}
	}, nil
}

func (c *Compiler) compileBetween(v *expr.Between) (ExpressionEvaluator, error) {
	operand, err := c.Compile(v.Operand)
	if err != nil {
		return nil, err
	}
	low, err := c.Compile(v.Low)
	if err != nil {
		return nil, err
	}
	high, err := c.Compile(v.High)
	if err != nil {
		return nil, err
	}
	return func(row Row) (any, error) {
		ov, err := operand(row)
		if err != nil {
			return nil, err
		}
		lv, err := low(row)
		if err != nil {
			return nil, err
		}
		hv, err := high(row)
		if err != nil {
			return nil, err
		}
		if ov == nil || lv == nil || hv == nil {
			return false, nil
		}
		loCmp, err := compareValues(ov, lv)
		if err != nil {
			return nil, err
		}
		hiCmp, err := compareValues(ov, hv)
		if err != nil {
			return nil, err
		}
		return loCmp >= 0 && hiCmp <= 0, nil
	}, nil
}

func (c *Compiler) compileIn(v *expr.In) (ExpressionEvaluator, error) {
	operand, err := c.Compile(v.Operand)
	if err != nil {
		return nil, err
	}
	candidates := make([]ExpressionEvaluator, len(v.Values))
	for i, cand := range v.Values {
		candidates[i], err = c.Compile(cand)
		if err != nil {
			return nil, err
		}
	}
	return func(row Row) (any, error) {
		ov, err := operand(row)
		if err != nil {
			return nil, err
		}
		if ov == nil {
			return false, nil
		}
		for _, cand := range candidates {
			cv, err := cand(row)
			if err != nil {
				return nil, err
			}
			if cv == nil {
				continue
			}
			cmp, err := compareValues(ov, cv)
			if err != nil {
				return nil, err
			}
			if cmp == 0 {
				return true, nil
			}
		}
		return false, nil
	}, nil
}

func (c *Compiler) compileCast(v *expr.Cast) (ExpressionEvaluator, error) {
	operand, err := c.Compile(v.Operand)
	if err != nil {
		return nil, err
	}
	target := v.Target
	return func(row Row) (any, error) {
		ov, err := operand(row)
		if err != nil {
			return nil, err
		}
		if ov == nil {
			return nil, nil
		}
		return castValue(ov, target)
	}, nil
}

func castValue(v any, target types.SqlType) (any, error) {
	switch target.Kind() {
	case types.String:
		return fmt.Sprintf("%v", v), nil
	case types.Boolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			return x == "true" || x == "TRUE", nil
		default:
			return nil, fmt.Errorf("codegen: cannot cast %T to BOOLEAN", v)
		}
	case types.Integer, types.BigInt:
		i, err := toIntAny(v)
		if err != nil {
			return nil, err
		}
		return i, nil
	case types.Double:
		return toFloatAny(v)
	case types.Decimal:
		r, err := toRat(v)
		if err != nil {
			return nil, err
		}
		return rescale(r, target.Scale()), nil
	default:
		return v, nil
	}
}

func toIntAny(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case *big.Rat:
		f, _ := n.Float64()
		return int64(f), nil
	case string:
		var out int64
		_, err := fmt.Sscanf(n, "%d", &out)
		if err != nil {
			return 0, fmt.Errorf("codegen: cannot cast %q to integer", n)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("codegen: cannot cast %T to integer", v)
	}
}

func (c *Compiler) compileSubscript(v *expr.Subscript) (ExpressionEvaluator, error) {
	baseEval, err := c.Compile(v.Base)
	if err != nil {
		return nil, err
	}
	indexEval, err := c.Compile(v.Index)
	if err != nil {
		return nil, err
	}
	return func(row Row) (any, error) {
		bv, err := baseEval(row)
		if err != nil {
			return nil, err
		}
		if bv == nil {
			return nil, nil
		}
		iv, err := indexEval(row)
		if err != nil {
			return nil, err
		}
		if iv == nil {
			return nil, nil
		}
		switch arr := bv.(type) {
		case []any:
			idx, err := toIntAny(iv)
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				idx += int64(len(arr))
			}
			if idx < 0 || idx >= int64(len(arr)) {
				return nil, nil
			}
			return arr[idx], nil
		case map[string]any:
			key, ok := iv.(string)
			if !ok {
				return nil, fmt.Errorf("codegen: MAP subscript requires a string key")
			}
			return arr[key], nil
		default:
			return nil, fmt.Errorf("codegen: cannot subscript %T", bv)
		}
	}, nil
}

func (c *Compiler) compileDereference(v *expr.Dereference) (ExpressionEvaluator, error) {
	baseEval, err := c.Compile(v.Base)
	if err != nil {
		return nil, err
	}
	field := v.Field
	return func(row Row) (any, error) {
		bv, err := baseEval(row)
		if err != nil {
			return nil, err
		}
		if bv == nil {
			return nil, nil
		}
		m, ok := bv.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("codegen: cannot dereference %T", bv)
		}
		return m[field], nil
	}, nil
}
