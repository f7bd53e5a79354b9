package typecheck

import (
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/types"
)

// inferCall resolves a function call against the registry, checks arity
// and per-argument castability against every declared signature, and
// returns the first signature's return type that matches.
func (c *Checker) inferCall(v *expr.FunctionCall) (types.SqlType, error) {
	var fn registry.Function
	var ok bool
	if c.Registry != nil {
		fn, ok = c.Registry.GetScalar(v.Name)
		if !ok {
			fn, ok = c.Registry.GetAggregate(v.Name)
		}
	}
	if !ok {
		return types.SqlType{}, perr.At(perr.UnknownFunction, v.Pos(), "unknown function %q", v.Name).
			WithSuggestion(perr.Suggest(v.Name.String(), c.registryFunctionNames(), 3))
	}

	argTypes := make([]types.SqlType, len(v.Args))
	for i, a := range v.Args {
		t, err := c.Infer(a)
		if err != nil {
			return types.SqlType{}, err
		}
		argTypes[i] = t
	}

	var lastErr error
	for _, sig := range fn.Signatures {
		if err := matchSignature(sig, argTypes); err != nil {
			lastErr = err
			continue
		}
		return sig.ReturnType, nil
	}
	if lastErr != nil {
		return types.SqlType{}, withPos(lastErr, v.Pos())
	}
	return types.SqlType{}, perr.At(perr.FunctionSignatureMismatch, v.Pos(), "no matching signature for %q", v.Name)
}

func matchSignature(sig registry.Signature, argTypes []types.SqlType) error {
	if sig.Variadic {
		if len(argTypes) < len(sig.ParamTypes) {
			return perr.New(perr.FunctionArityMismatch, "expected at least %d arguments, got %d", len(sig.ParamTypes), len(argTypes))
		}
	} else if len(argTypes) != len(sig.ParamTypes) {
		return perr.New(perr.FunctionArityMismatch, "expected %d arguments, got %d", len(sig.ParamTypes), len(argTypes))
	}
	for i, at := range argTypes {
		pt := sig.ParamTypes[minInt(i, len(sig.ParamTypes)-1)]
		if pt.Kind() == types.Unknown || at.Kind() == types.Unknown {
			continue
		}
		if pt.IsNumeric() && at.IsNumeric() {
			continue
		}
		if !pt.Equal(at) {
			return perr.New(perr.FunctionSignatureMismatch, "argument %d: expected %s, got %s", i+1, pt, at)
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func withPos(err error, pos perr.Pos) error {
	pe, ok := err.(*perr.PlanError)
	if !ok {
		return err
	}
	pe.Pos = pos
	return pe
}

func (c *Checker) registryFunctionNames() []string {
	// The Registry interface doesn't expose enumeration; Static callers
	// can type-assert if they want suggestions beyond an empty list.
	return nil
}
