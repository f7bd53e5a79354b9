package codegen

import (
	"fmt"

	"github.com/streamsql-core/planner/engine/expr"
)

// compileFunctionCall resolves the call's implementation once, at compile
// time, per the design doc's stable-per-call-site requirement: two
// syntactically identical calls in the same expression each get their own
// resolved ScalarImpl, but neither re-resolves on every row.
func (c *Compiler) compileFunctionCall(v *expr.FunctionCall) (ExpressionEvaluator, error) {
	if c.Registry == nil {
		return nil, fmt.Errorf("codegen: no registry configured for function %q", v.Name)
	}
	fn, ok := c.Registry.GetScalar(v.Name)
	if !ok {
		return nil, fmt.Errorf("codegen: %q is not a compilable scalar function", v.Name)
	}
	if fn.Impl == nil {
		return nil, fmt.Errorf("codegen: function %q has no implementation wired", v.Name)
	}
	impl := fn.Impl
	argEvals := make([]ExpressionEvaluator, len(v.Args))
	var err error
	for i, a := range v.Args {
		argEvals[i], err = c.Compile(a)
		if err != nil {
			return nil, err
		}
	}
	return func(row Row) (any, error) {
		args := make([]any, len(argEvals))
		for i, eval := range argEvals {
			args[i], err = eval(row)
			if err != nil {
				return nil, err
			}
		}
		return impl(args)
	}, nil
}

func (c *Compiler) compileSearchedCase(v *expr.SearchedCase) (ExpressionEvaluator, error) {
	type arm struct {
		when ExpressionEvaluator
		then ExpressionEvaluator
	}
	arms := make([]arm, len(v.Whens))
	for i, w := range v.Whens {
		whenEval, err := c.Compile(w.When)
		if err != nil {
			return nil, err
		}
		thenEval, err := c.Compile(w.Then)
		if err != nil {
			return nil, err
		}
		arms[i] = arm{when: whenEval, then: thenEval}
	}
	var defaultEval ExpressionEvaluator
	if v.Default != nil {
		var err error
		defaultEval, err = c.Compile(v.Default)
		if err != nil {
			return nil, err
		}
	}
	return func(row Row) (any, error) {
		for _, a := range arms {
			wv, err := a.when(row)
			if err != nil {
				return nil, err
			}
			if b, ok := wv.(bool); ok && b {
				return a.then(row)
			}
		}
		if defaultEval != nil {
			return defaultEval(row)
		}
		return nil, nil
	}, nil
}

func (c *Compiler) compileSimpleCase(v *expr.SimpleCase) (ExpressionEvaluator, error) {
	valueEval, err := c.Compile(v.Value)
	if err != nil {
		return nil, err
	}
	type arm struct {
		match ExpressionEvaluator
		then  ExpressionEvaluator
	}
	arms := make([]arm, len(v.Whens))
	for i, w := range v.Whens {
		matchEval, err := c.Compile(w.Match)
		if err != nil {
			return nil, err
		}
		thenEval, err := c.Compile(w.Then)
		if err != nil {
			return nil, err
		}
		arms[i] = arm{match: matchEval, then: thenEval}
	}
	var defaultEval ExpressionEvaluator
	if v.Default != nil {
		defaultEval, err = c.Compile(v.Default)
		if err != nil {
			return nil, err
		}
	}
	return func(row Row) (any, error) {
		val, err := valueEval(row)
		if err != nil {
			return nil, err
		}
		for _, a := range arms {
			mv, err := a.match(row)
			if err != nil {
				return nil, err
			}
			if val == nil || mv == nil {
				continue
			}
			cmp, err := compareValues(val, mv)
			if err != nil {
				return nil, err
			}
			if cmp == 0 {
				return a.then(row)
			}
		}
		if defaultEval != nil {
			return defaultEval(row)
		}
		return nil, nil
	}, nil
}
