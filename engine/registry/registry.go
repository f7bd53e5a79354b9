// Package registry defines the function-resolution collaborator: the
// signatures the planning core needs to type-check and plan calls, plus
// (in builtins.go) Go implementations of the built-in scalar functions.
// Grounded on the
// corpus's OperatorMap (mapping/operators.go in the teacher repo), which
// held one static table of operator metadata consulted by the planner;
// here split into an interface (for a real catalog-backed registry to
// implement) plus a Static in-memory seed used by tests and simple
// deployments.
package registry

import (
	"strings"

	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/types"
)

// Signature describes one overload of a function: fixed argument types
// plus a result type. Variadic is true when the last ParamType repeats
// for any number of trailing arguments.
type Signature struct {
	ParamTypes []types.SqlType
	Variadic   bool
	ReturnType types.SqlType
}

// ScalarImpl evaluates a resolved scalar call against already-evaluated
// argument values. It is consulted only by engine/codegen at compile
// time, never by type checking.
type ScalarImpl func(args []any) (any, error)

// Function is the resolved metadata for a name the registry knows about.
type Function struct {
	Name        name.FunctionName
	IsAggregate bool
	Signatures  []Signature
	// Impl is nil for aggregates (engine/codegen never compiles an
	// aggregate call directly; engine/plan's aggregate builders handle
	// those through their own accumulator contract).
	Impl ScalarImpl
}

// Registry resolves function names to metadata. Lookups are
// case-insensitive at the boundary, per the design doc's function-name
// Open Question resolution: callers may spell a function any case, but
// two functions differing only by case can never coexist.
type Registry interface {
	IsAggregate(fn name.FunctionName) bool
	GetScalar(fn name.FunctionName) (Function, bool)
	GetAggregate(fn name.FunctionName) (Function, bool)
}

// Static is an in-memory Registry seeded at construction time.
type Static struct {
	fns map[string]Function
}

// NewStatic builds a Static registry from fns, normalizing names to
// upper case for lookup.
func NewStatic(fns []Function) *Static {
	m := make(map[string]Function, len(fns))
	for _, f := range fns {
		m[strings.ToUpper(f.Name.String())] = f
	}
	return &Static{fns: m}
}

func (s *Static) lookup(fn name.FunctionName) (Function, bool) {
	f, ok := s.fns[strings.ToUpper(fn.String())]
	return f, ok
}

func (s *Static) IsAggregate(fn name.FunctionName) bool {
	f, ok := s.lookup(fn)
	return ok && f.IsAggregate
}

func (s *Static) GetScalar(fn name.FunctionName) (Function, bool) {
	f, ok := s.lookup(fn)
	if !ok || f.IsAggregate {
		return Function{}, false
	}
	return f, true
}

func (s *Static) GetAggregate(fn name.FunctionName) (Function, bool) {
	f, ok := s.lookup(fn)
	if !ok || !f.IsAggregate {
		return Function{}, false
	}
	return f, true
}

// NewDefault returns a Static registry seeded with the small built-in
// function set: common scalar functions, the WINDOWSTART/WINDOWEND
// pseudo-functions, plus COUNT/SUM/MIN/MAX/AVG/LATEST_BY_OFFSET
// aggregates, sufficient to exercise the planning core's call-resolution
// paths without a real external catalog.
func NewDefault() *Static {
	str := types.StringType
	i := types.IntegerType
	bi := types.BigIntType
	dbl := types.DoubleType
	boolT := types.BooleanType

	fn := func(n string) name.FunctionName { return name.MustFunction(n) }

	return NewStatic([]Function{
		{Name: fn("ABS"), Signatures: []Signature{{ParamTypes: []types.SqlType{dbl}, ReturnType: dbl}}, Impl: implAbs},
		{Name: fn("CONCAT"), Signatures: []Signature{{ParamTypes: []types.SqlType{str}, Variadic: true, ReturnType: str}}, Impl: implConcat},
		{Name: fn("LEN"), Signatures: []Signature{{ParamTypes: []types.SqlType{str}, ReturnType: i}}, Impl: implLen},
		{Name: fn("UCASE"), Signatures: []Signature{{ParamTypes: []types.SqlType{str}, ReturnType: str}}, Impl: implUcase},
		{Name: fn("LCASE"), Signatures: []Signature{{ParamTypes: []types.SqlType{str}, ReturnType: str}}, Impl: implLcase},
		{Name: fn("SUBSTRING"), Signatures: []Signature{{ParamTypes: []types.SqlType{str, i, i}, ReturnType: str}}, Impl: implSubstring},
		{Name: fn("ROUND"), Signatures: []Signature{{ParamTypes: []types.SqlType{dbl}, ReturnType: bi}}, Impl: implRound},
		{Name: fn("WINDOWSTART"), Signatures: []Signature{{ParamTypes: nil, ReturnType: bi}}},
		{Name: fn("WINDOWEND"), Signatures: []Signature{{ParamTypes: nil, ReturnType: bi}}},
		{Name: fn("IFNULL"), Signatures: []Signature{{ParamTypes: []types.SqlType{str, str}, ReturnType: str}}, Impl: implIfNull},

		{Name: fn("COUNT"), IsAggregate: true, Signatures: []Signature{{ParamTypes: []types.SqlType{types.UnknownType}, ReturnType: bi}}},
		{Name: fn("SUM"), IsAggregate: true, Signatures: []Signature{{ParamTypes: []types.SqlType{dbl}, ReturnType: dbl}}},
		{Name: fn("MIN"), IsAggregate: true, Signatures: []Signature{{ParamTypes: []types.SqlType{dbl}, ReturnType: dbl}}},
		{Name: fn("MAX"), IsAggregate: true, Signatures: []Signature{{ParamTypes: []types.SqlType{dbl}, ReturnType: dbl}}},
		{Name: fn("AVG"), IsAggregate: true, Signatures: []Signature{{ParamTypes: []types.SqlType{dbl}, ReturnType: dbl}}},
		{Name: fn("LATEST_BY_OFFSET"), IsAggregate: true, Signatures: []Signature{{ParamTypes: []types.SqlType{types.UnknownType}, ReturnType: types.UnknownType}}},
		{Name: fn("BOOLEAN"), Signatures: []Signature{{ParamTypes: []types.SqlType{boolT}, ReturnType: boolT}}},
	})
}
