package plan

import (
	"github.com/streamsql-core/planner/engine/catalog"
	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/schema"
)

// Node is implemented by every plan tree node. planNode is unexported so
// the tree is closed to this package; callers inspect nodes via type
// switches on the concrete types below.
type Node interface {
	planNode()
	// Schema is this node's output LogicalSchema.
	Schema() schema.Schema
	// Sources returns this node's immediate child nodes, in a fixed order
	// (e.g. [left, right] for a join). Leaf nodes return nil.
	Sources() []Node
}

// KeyField identifies which single column (if any) a stream or table's
// key corresponds to among its value columns. A zero KeyField (Name.IsZero
// true) means the rows are not meaningfully keyed by any one value
// column, per the data model's KeyField contract.
type KeyField struct {
	Name name.ColumnName
	set  bool
}

// NoKeyField is the absent key field.
var NoKeyField = KeyField{}

// NewKeyField wraps a present key-field column name.
func NewKeyField(n name.ColumnName) KeyField { return KeyField{Name: n, set: true} }

// IsPresent reports whether this KeyField names a column, as opposed to
// being the "no key field" state joins and aggregates can produce.
func (k KeyField) IsPresent() bool { return k.set }

// DataSource is a leaf plan node reading directly from a cataloged
// source.
type DataSource struct {
	SourceName name.SourceName
	Kind       catalog.SourceKind
	Out        schema.Schema
	Key        KeyField
}

func (*DataSource) planNode()            {}
func (d *DataSource) Schema() schema.Schema { return d.Out }
func (d *DataSource) Sources() []Node    { return nil }

// NewDataSource builds a DataSource node from catalog metadata. The key
// field starts absent; callers that know the source's declared key column
// name set it via WithKeyField.
func NewDataSource(meta catalog.SourceMetadata) *DataSource {
	return &DataSource{SourceName: meta.Name, Kind: meta.Kind, Out: meta.Schema}
}

// WithKeyField returns a copy of d with Key set.
func (d *DataSource) WithKeyField(k KeyField) *DataSource {
	out := *d
	out.Key = k
	return &out
}

// WithAlias returns a copy of d whose output schema is qualified by
// alias. The key field name is unaffected: KeyField always names a bare
// column, never a qualified one.
func (d *DataSource) WithAlias(alias name.SourceName) (*DataSource, error) {
	aliased, err := d.Out.WithAlias(alias)
	if err != nil {
		return nil, err
	}
	out := *d
	out.Out = aliased
	return &out, nil
}

// Project evaluates a fixed list of expressions per input row, optionally
// under an alias.
type Project struct {
	Input       Node
	Expressions []expr.Expr
	Aliases     []name.ColumnName // same length as Expressions
	Out         schema.Schema
	Key         KeyField
}

func (*Project) planNode()            {}
func (p *Project) Schema() schema.Schema { return p.Out }
func (p *Project) Sources() []Node    { return []Node{p.Input} }

// Filter keeps input rows for which Predicate evaluates to true. A
// Filter's schema and key field are identical to its input's, per the
// data model's "filtering never changes shape" invariant.
type Filter struct {
	Input     Node
	Predicate expr.Expr
}

func (*Filter) planNode()            {}
func (f *Filter) Schema() schema.Schema { return f.Input.Schema() }
func (f *Filter) Sources() []Node    { return []Node{f.Input} }
