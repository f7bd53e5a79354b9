package schema

import (
	"github.com/streamsql-core/planner/engine/name"
	"github.com/streamsql-core/planner/engine/perr"
)

// Schema is an ordered (keyColumns, valueColumns) pair plus the implicit
// constant metadata list [ROWTIME: BIGINT]. All Schema values are
// immutable; every transformation below returns a new value.
type Schema struct {
	keys           []Column
	values         []Column
	metaInValue    bool // true after withMetaAndKeyColsInValue
}

// Build constructs a Schema from key and value columns, assigning indices
// and injecting a synthetic ROWKEY when no key was supplied, per the data
// model's "no explicit key => synthetic STRING key" invariant.
func Build(keys, values []Column) (Schema, error) {
	if err := checkUniqueFullNames(keys); err != nil {
		return Schema{}, err
	}
	if err := checkUniqueFullNames(values); err != nil {
		return Schema{}, err
	}
	ks := append([]Column(nil), keys...)
	if len(ks) == 0 {
		ks = []Column{SyntheticRowKeyColumn()}
	}
	vs := append([]Column(nil), values...)
	reindex(ks)
	reindex(vs)
	return Schema{keys: ks, values: vs}, nil
}

func checkUniqueFullNames(cols []Column) error {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		fn := c.FullName()
		if seen[fn] {
			return perr.New(perr.DuplicateColumn, "duplicate column %q", fn)
		}
		seen[fn] = true
	}
	return nil
}

func reindex(cols []Column) {
	for i := range cols {
		cols[i].Index = uint32(i)
	}
}

// KeyColumns returns the schema's key columns, in declared order.
func (s Schema) KeyColumns() []Column { return append([]Column(nil), s.keys...) }

// ValueColumns returns the schema's value columns, in declared order.
func (s Schema) ValueColumns() []Column { return append([]Column(nil), s.values...) }

// MetaColumns returns the implicit metadata columns, currently just ROWTIME.
func (s Schema) MetaColumns() []Column { return []Column{RowTimeColumn()} }

// WithAlias applies source to every top-level key and value column. The
// implicit meta column is not qualified: MetaColumns always returns an
// unqualified ROWTIME. Fails with AlreadyAliased if any top-level column already carries a
// source; nested struct field names are untouched regardless.
func (s Schema) WithAlias(source name.SourceName) (Schema, error) {
	for _, c := range s.keys {
		if !c.Source.IsZero() {
			return Schema{}, perr.New(perr.AlreadyAliased, "column %q is already aliased to %q", c.Name, c.Source)
		}
	}
	for _, c := range s.values {
		if !c.Source.IsZero() {
			return Schema{}, perr.New(perr.AlreadyAliased, "column %q is already aliased to %q", c.Name, c.Source)
		}
	}
	out := s
	out.keys = mapAlias(s.keys, source)
	out.values = mapAlias(s.values, source)
	return out, nil
}

func mapAlias(cols []Column, source name.SourceName) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = c.WithSource(source)
	}
	return out
}

// WithoutAlias strips source from every top-level column. Fails with
// NotAliased if no top-level column currently carries a source.
func (s Schema) WithoutAlias() (Schema, error) {
	aliased := false
	for _, c := range s.keys {
		if !c.Source.IsZero() {
			aliased = true
			break
		}
	}
	if !aliased {
		for _, c := range s.values {
			if !c.Source.IsZero() {
				aliased = true
				break
			}
		}
	}
	if !aliased {
		return Schema{}, perr.New(perr.NotAliased, "schema has no top-level alias to remove")
	}
	out := s
	out.keys = mapAlias(s.keys, name.SourceName{})
	out.values = mapAlias(s.values, name.SourceName{})
	return out, nil
}

// FindColumn searches value, then key, then meta columns, in that order,
// accepting bare or qualified forms. Never folds case. Returns the first
// match or (_, false).
func (s Schema) FindColumn(nameOrQualified string) (Column, bool) {
	if c, ok := findIn(s.values, nameOrQualified); ok {
		return c, true
	}
	if c, ok := findIn(s.keys, nameOrQualified); ok {
		return c, true
	}
	if c, ok := findIn(s.MetaColumns(), nameOrQualified); ok {
		return c, true
	}
	return Column{}, false
}

func findIn(cols []Column, query string) (Column, bool) {
	for _, c := range cols {
		if c.FullName() == query || c.Name.String() == query {
			return c, true
		}
	}
	return Column{}, false
}

// FindValueColumn restricts lookup to value columns.
func (s Schema) FindValueColumn(nameOrQualified string) (Column, bool) {
	return findIn(s.values, nameOrQualified)
}

// FindKeyColumn restricts lookup to key columns.
func (s Schema) FindKeyColumn(nameOrQualified string) (Column, bool) {
	return findIn(s.keys, nameOrQualified)
}

// IsMetaColumn reports whether nameOrQualified resolves to a meta column.
func (s Schema) IsMetaColumn(nameOrQualified string) bool {
	_, ok := findIn(s.MetaColumns(), nameOrQualified)
	return ok
}

// IsKeyColumn reports whether nameOrQualified resolves to a key column.
func (s Schema) IsKeyColumn(nameOrQualified string) bool {
	_, ok := findIn(s.keys, nameOrQualified)
	return ok
}

// ValueColumnIndex returns the ordinal position of a value column.
func (s Schema) ValueColumnIndex(nameOrQualified string) (uint32, bool) {
	c, ok := findIn(s.values, nameOrQualified)
	if !ok {
		return 0, false
	}
	return c.Index, true
}

// HasMetaAndKeyInValue reports whether WithMetaAndKeyColsInValue has been
// applied (and not yet reversed).
func (s Schema) HasMetaAndKeyInValue() bool { return s.metaInValue }

// WithMetaAndKeyColsInValue prepends ROWTIME then ROWKEY to the value
// list, removing any prior occurrences of either, and is idempotent:
// calling it twice in a row is the same as calling it once.
func (s Schema) WithMetaAndKeyColsInValue() Schema {
	if s.metaInValue {
		return s
	}
	rowkey, hasRowKey := s.FindKeyColumn(RowKeyName.String())
	filtered := make([]Column, 0, len(s.values)+2)
	for _, c := range s.values {
		if c.Name.Equal(RowTimeName) || c.Name.Equal(RowKeyName) {
			continue
		}
		filtered = append(filtered, c)
	}
	prefixed := make([]Column, 0, len(filtered)+2)
	prefixed = append(prefixed, RowTimeColumn())
	if hasRowKey {
		prefixed = append(prefixed, Column{Name: RowKeyName, Type: rowkey.Type, Namespace: Value})
	} else {
		prefixed = append(prefixed, Column{Name: RowKeyName, Type: SyntheticRowKeyColumn().Type, Namespace: Value})
	}
	prefixed = append(prefixed, filtered...)
	reindex(prefixed)
	out := s
	out.values = prefixed
	out.metaInValue = true
	return out
}

// WithoutMetaAndKeyColsInValue is the inverse of WithMetaAndKeyColsInValue:
// it removes a leading ROWTIME, ROWKEY pair from the value list if
// present. Idempotent.
func (s Schema) WithoutMetaAndKeyColsInValue() Schema {
	if !s.metaInValue {
		return s
	}
	vals := s.values
	if len(vals) >= 2 && vals[0].Name.Equal(RowTimeName) && vals[1].Name.Equal(RowKeyName) {
		vals = append([]Column(nil), vals[2:]...)
	}
	reindex(vals)
	out := s
	out.values = vals
	out.metaInValue = false
	return out
}

// Equal is value-based equality over key list, value list, and the
// meta-in-value projection flag.
func (s Schema) Equal(o Schema) bool {
	if s.metaInValue != o.metaInValue {
		return false
	}
	if len(s.keys) != len(o.keys) || len(s.values) != len(o.values) {
		return false
	}
	for i := range s.keys {
		if !s.keys[i].Equal(o.keys[i]) {
			return false
		}
	}
	for i := range s.values {
		if !s.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}
