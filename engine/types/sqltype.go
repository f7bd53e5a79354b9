// Package types implements the SQL type system: the closed SqlType sum,
// cast legality, and the arithmetic-promotion rules used by type inference
// and code generation. The shape mirrors the corpus's universal-type-map
// approach (mapping.TypeMap in the teacher repo maps one universal type
// name to N dialect spellings); here there is only one target "dialect" —
// the row evaluator — so the map collapses to direct Go types plus a
// handful of rule functions.
package types

import "fmt"

// Kind is the tag of the SqlType sum.
type Kind int

const (
	Boolean Kind = iota
	Integer
	BigInt
	Double
	String
	Decimal
	Array
	Map
	Struct
	// Unknown is the type of a bare NULL literal: it propagates as "any"
	// until a concrete type is known from context.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Boolean:
		return "BOOLEAN"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Double:
		return "DOUBLE"
	case String:
		return "STRING"
	case Decimal:
		return "DECIMAL"
	case Array:
		return "ARRAY"
	case Map:
		return "MAP"
	case Struct:
		return "STRUCT"
	case Unknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// StructField is one named field of a STRUCT type, in declaration order.
type StructField struct {
	Name string
	Type SqlType
}

// SqlType is the closed sum BOOLEAN | INTEGER | BIGINT | DOUBLE | STRING |
// DECIMAL(p,s) | ARRAY<T> | MAP<STRING,T> | STRUCT<fields>. It is a plain
// immutable value; construct via the New* helpers so invariants are
// checked once at creation.
type SqlType struct {
	kind      Kind
	precision int           // DECIMAL only
	scale     int           // DECIMAL only
	elem      *SqlType      // ARRAY element / MAP value
	fields    []StructField // STRUCT only
}

func (t SqlType) Kind() Kind { return t.kind }
func (t SqlType) Precision() int { return t.precision }
func (t SqlType) Scale() int     { return t.scale }

// Elem returns the ARRAY element type or MAP value type. Panics if t is
// neither — callers must check Kind first, matching the rest of the
// package's "construct once, trust the tag" style.
func (t SqlType) Elem() SqlType {
	if t.elem == nil {
		panic("types: Elem called on a type with no element")
	}
	return *t.elem
}

// Fields returns the STRUCT's ordered fields. Empty slice for non-structs.
func (t SqlType) Fields() []StructField { return t.fields }

var (
	BooleanType = SqlType{kind: Boolean}
	IntegerType = SqlType{kind: Integer}
	BigIntType  = SqlType{kind: BigInt}
	DoubleType  = SqlType{kind: Double}
	StringType  = SqlType{kind: String}
	UnknownType = SqlType{kind: Unknown}
)

// NewDecimal validates 0 <= scale <= precision <= 38: scale 0 is legal
// (an exact whole-number decimal), unlike precision which must be
// positive.
func NewDecimal(precision, scale int) (SqlType, error) {
	if precision < 1 || precision > 38 {
		return SqlType{}, fmt.Errorf("decimal precision %d out of range [1,38]", precision)
	}
	if scale < 0 || scale > precision {
		return SqlType{}, fmt.Errorf("decimal scale %d out of range [0,%d]", scale, precision)
	}
	return SqlType{kind: Decimal, precision: precision, scale: scale}, nil
}

// MustDecimal panics on an invalid precision/scale pair.
func MustDecimal(precision, scale int) SqlType {
	t, err := NewDecimal(precision, scale)
	if err != nil {
		panic(err)
	}
	return t
}

// NewArray builds ARRAY<elem>.
func NewArray(elem SqlType) SqlType {
	e := elem
	return SqlType{kind: Array, elem: &e}
}

// NewMap builds MAP<STRING, elem>. The data model requires STRING keys, so
// there is no key-type parameter.
func NewMap(valueType SqlType) SqlType {
	e := valueType
	return SqlType{kind: Map, elem: &e}
}

// NewStruct builds STRUCT<fields...> preserving declaration order.
func NewStruct(fields []StructField) SqlType {
	cp := make([]StructField, len(fields))
	copy(cp, fields)
	return SqlType{kind: Struct, fields: cp}
}

// Equal is structural equality over the full type tree.
func (t SqlType) Equal(other SqlType) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case Decimal:
		return t.precision == other.precision && t.scale == other.scale
	case Array, Map:
		return t.elem.Equal(*other.elem)
	case Struct:
		if len(t.fields) != len(other.fields) {
			return false
		}
		for i := range t.fields {
			if t.fields[i].Name != other.fields[i].Name || !t.fields[i].Type.Equal(other.fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t SqlType) IsNumeric() bool {
	switch t.kind {
	case Integer, BigInt, Double, Decimal:
		return true
	default:
		return false
	}
}

func (t SqlType) String() string {
	switch t.kind {
	case Decimal:
		return fmt.Sprintf("DECIMAL(%d, %d)", t.precision, t.scale)
	case Array:
		return fmt.Sprintf("ARRAY<%s>", t.elem.String())
	case Map:
		return fmt.Sprintf("MAP<STRING, %s>", t.elem.String())
	case Struct:
		s := "STRUCT<"
		for i, f := range t.fields {
			if i > 0 {
				s += ", "
			}
			s += f.Name + " " + f.Type.String()
		}
		return s + ">"
	default:
		return t.kind.String()
	}
}
