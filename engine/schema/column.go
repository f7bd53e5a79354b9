// Package schema implements the logical row schema: ordered key/value
// columns plus the implicit ROWTIME/ROWKEY metadata, alias application,
// and lookup. Grounded on the corpus's single "one struct holds every
// field" container style (engine/models.Query in the teacher repo), but
// expressed here as a proper immutable value type with withers, per the
// design doc's "fluent builders are mechanical" note.
package schema

import (
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/types"
)

// Namespace tags which part of a row a Column belongs to.
type Namespace int

const (
	Value Namespace = iota
	Key
	Meta
)

func (n Namespace) String() string {
	switch n {
	case Value:
		return "VALUE"
	case Key:
		return "KEY"
	case Meta:
		return "META"
	default:
		return "UNKNOWN"
	}
}

// Column is a qualified, typed, namespaced field of a row.
type Column struct {
	Source    name.SourceName // zero value means unqualified
	Name      name.ColumnName
	Type      types.SqlType
	Namespace Namespace
	Index     uint32
}

// FullName is "source.name" when qualified, else "name".
func (c Column) FullName() string {
	if c.Source.IsZero() {
		return c.Name.String()
	}
	return c.Source.String() + "." + c.Name.String()
}

// Equal compares every attribute, per the data model's column equality rule.
func (c Column) Equal(o Column) bool {
	return c.Source.Equal(o.Source) &&
		c.Name.Equal(o.Name) &&
		c.Type.Equal(o.Type) &&
		c.Namespace == o.Namespace &&
		c.Index == o.Index
}

// WithSource returns a copy of c qualified by source. Used by alias
// application; never recurses into struct fields, matching the data
// model's "nested struct fields are never re-qualified" invariant.
func (c Column) WithSource(source name.SourceName) Column {
	c.Source = source
	return c
}

// RowTimeName and RowKeyName are the two constant metadata/key identifiers
// the schema injects automatically.
var (
	RowTimeName = name.MustColumn("ROWTIME")
	RowKeyName  = name.MustColumn("ROWKEY")
)

// RowTimeColumn is the implicit metadata column every schema carries.
func RowTimeColumn() Column {
	return Column{Name: RowTimeName, Type: types.BigIntType, Namespace: Meta}
}

// SyntheticRowKeyColumn is the key column a schema gets when no explicit
// key was declared.
func SyntheticRowKeyColumn() Column {
	return Column{Name: RowKeyName, Type: types.StringType, Namespace: Key}
}
