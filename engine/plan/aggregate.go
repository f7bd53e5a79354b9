package plan

import (
	"time"

	"github.com/streamsql-core/planner/engine/config"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/registry"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

// AggregateCall is one aggregate function invocation in an Aggregate
// node's output list, paired with the column name it produces.
type AggregateCall struct {
	Call   *expr.FunctionCall
	Output name.ColumnName
}

// Aggregate computes one row of aggregate state per distinct key from its
// (already grouped, per GroupBy's Key) input. It never windows; windowed
// aggregation is WindowedAggregate below.
type Aggregate struct {
	Input Node
	Calls []AggregateCall
	Out   schema.Schema
	Key   KeyField
}

func (*Aggregate) planNode()            {}
func (a *Aggregate) Schema() schema.Schema { return a.Out }
func (a *Aggregate) Sources() []Node    { return []Node{a.Input} }

// BuildAggregate constructs an Aggregate over a GroupBy input, resolving
// each call against reg and requiring it to be a known aggregate
// function, per the design doc's aggregate legality rule: Aggregate's
// input must already carry a key field (it inherits the GroupBy that
// produced it).
func BuildAggregate(input Node, calls []AggregateCall, reg registry.Registry) (*Aggregate, error) {
	key := KeyFieldOf(input)
	if !key.IsPresent() {
		return nil, perr.New(perr.SchemaArityMismatch, "AGGREGATE requires a keyed input (expected a preceding GROUP BY)")
	}
	keyCols := input.Schema().KeyColumns()
	valueCols := make([]schema.Column, 0, len(calls))
	for _, c := range calls {
		if reg != nil {
			fn, ok := reg.GetAggregate(c.Call.Name)
			if !ok {
				return nil, perr.At(perr.UnknownFunction, c.Call.Pos(), "unknown aggregate function %q", c.Call.Name)
			}
			if len(fn.Signatures) == 0 {
				return nil, perr.At(perr.FunctionSignatureMismatch, c.Call.Pos(), "aggregate %q has no signatures", c.Call.Name)
			}
			valueCols = append(valueCols, schema.Column{Name: c.Output, Type: fn.Signatures[0].ReturnType, Namespace: schema.Value})
		} else {
			valueCols = append(valueCols, schema.Column{Name: c.Output, Type: types.UnknownType, Namespace: schema.Value})
		}
	}
	out, err := schema.Build(keyCols, valueCols)
	if err != nil {
		return nil, err
	}
	return &Aggregate{Input: input, Calls: calls, Out: out, Key: key}, nil
}

// WindowKind identifies one of the three supported windowing strategies.
type WindowKind int

const (
	Tumbling WindowKind = iota
	Hopping
	Session
)

func (k WindowKind) String() string {
	switch k {
	case Tumbling:
		return "TUMBLING"
	case Hopping:
		return "HOPPING"
	case Session:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Window describes one windowing specification.
type Window struct {
	Kind WindowKind
	Size time.Duration // window length, for Tumbling/Hopping
	Hop  time.Duration // advance interval, for Hopping only
	Gap  time.Duration // inactivity gap, for Session only
}

// WindowedAggregate is Aggregate with a time window: each distinct
// (key, window) pair accumulates independently. The node records the
// window, the aggregate calls, the output schema and the key field only;
// it carries no init, accumulator, merger or result-mapper functions.
type WindowedAggregate struct {
	Input  Node
	Window Window
	Calls  []AggregateCall
	Out    schema.Schema
	Key    KeyField
}

func (*WindowedAggregate) planNode()            {}
func (w *WindowedAggregate) Schema() schema.Schema { return w.Out }
func (w *WindowedAggregate) Sources() []Node    { return []Node{w.Input} }

// WindowStartName and WindowEndName are the synthetic column names every
// WindowedAggregate output row carries, resolving WINDOWSTART()/
// WINDOWEND() pseudo-function calls rewritten by RewriteWindowBounds.
var (
	WindowStartName = name.MustColumn("WINDOWSTART")
	WindowEndName   = name.MustColumn("WINDOWEND")
)

// BuildWindowedAggregate constructs a WindowedAggregate. cfg controls
// legacy session-window key naming per the design doc's resolved flag.
// Out always appends WindowStartName/WindowEndName (BIGINT) to the
// underlying Aggregate's value columns, so a downstream Project resolving
// WINDOWSTART()/WINDOWEND() against this node's schema succeeds; an
// execution layer populates their actual millisecond values per window
// instance (see engine/codegen.WindowBounds).
func BuildWindowedAggregate(input Node, window Window, calls []AggregateCall, reg registry.Registry, cfg config.Config) (*WindowedAggregate, error) {
	base, err := BuildAggregate(input, calls, reg)
	if err != nil {
		return nil, err
	}
	key := base.Key
	if window.Kind == Session && !cfg.WindowedSessionKeyLegacy {
		// Session windows with non-legacy semantics widen the key name to
		// signal the value is now window-scoped, matching the design
		// doc's "session key is not the same identity as the ungrouped
		// key" note; legacy mode keeps the bare key name for
		// backward-compatible deployments.
		key = NewKeyField(name.MustColumn(key.Name.String() + "_SESSION"))
	}
	values := append(append([]schema.Column(nil), base.Out.ValueColumns()...),
		schema.Column{Name: WindowStartName, Type: types.BigIntType, Namespace: schema.Value},
		schema.Column{Name: WindowEndName, Type: types.BigIntType, Namespace: schema.Value},
	)
	out, err := schema.Build(base.Out.KeyColumns(), values)
	if err != nil {
		return nil, err
	}
	return &WindowedAggregate{Input: input, Window: window, Calls: calls, Out: out, Key: key}, nil
}

// RewriteWindowBounds replaces WINDOWSTART()/WINDOWEND() pseudo-function
// calls in e with references to the two synthetic columns every
// WindowedAggregate output row carries (WindowStartName/WindowEndName),
// per the design doc's windowed pseudo-function handling. Any other
// function call is left in place.
func RewriteWindowBounds(e expr.Expr) (expr.Expr, error) {
	return expr.Rewrite(e, func(node expr.Expr) (expr.Expr, bool, error) {
		call, ok := node.(*expr.FunctionCall)
		if !ok {
			return nil, false, nil
		}
		switch call.Name.String() {
		case "WINDOWSTART":
			return expr.NewColumnRef(call.Pos(), WindowStartName.String()), true, nil
		case "WINDOWEND":
			return expr.NewColumnRef(call.Pos(), WindowEndName.String()), true, nil
		default:
			return nil, false, nil
		}
	})
}
