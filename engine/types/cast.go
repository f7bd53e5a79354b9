package types

// castTable encodes which (src.Kind, dst.Kind) pairs are legal for CAST,
// independent of decimal/array/map/struct parameters (those are checked
// separately below). Grounded on the corpus's OperatorMap /
// OperatorCategories style: a flat map keyed by a pair, used as a total
// lookup instead of a chain of if-statements.
var castTable = map[[2]Kind]bool{
	{Boolean, Boolean}: true,
	{Boolean, String}:  true,

	{Integer, Integer}: true,
	{Integer, BigInt}:  true,
	{Integer, Double}:  true,
	{Integer, Decimal}: true,
	{Integer, String}:  true,

	{BigInt, Integer}: true,
	{BigInt, BigInt}:  true,
	{BigInt, Double}:  true,
	{BigInt, Decimal}: true,
	{BigInt, String}:  true,

	{Double, Integer}: true,
	{Double, BigInt}:  true,
	{Double, Double}:  true,
	{Double, Decimal}: true,
	{Double, String}:  true,

	{Decimal, Integer}: true,
	{Decimal, BigInt}:  true,
	{Decimal, Double}:  true,
	{Decimal, Decimal}: true,
	{Decimal, String}:  true,

	{String, String}:  true,
	{String, Boolean}: true,
	{String, Integer}: true,
	{String, BigInt}:  true,
	{String, Double}:  true,
	{String, Decimal}: true,

	{Array, Array}: true,
	{Map, Map}:     true,
}

// CastableTo reports whether a value of type src can be CAST to dst. The
// function is total over the closed SqlType sum: every pair not present
// in castTable (STRUCT involved in any cast, or a container cast whose
// element types differ) is illegal.
func CastableTo(src, dst SqlType) bool {
	if src.kind == Unknown || dst.kind == Unknown {
		return true // NULL casts to anything; casting to unknown is meaningless but never rejected here
	}
	ok, known := castTable[[2]Kind{src.kind, dst.kind}]
	if !known || !ok {
		return false
	}
	switch dst.kind {
	case Array:
		return src.elem != nil && dst.elem != nil && src.elem.Equal(*dst.elem)
	case Map:
		return src.elem != nil && dst.elem != nil && src.elem.Equal(*dst.elem)
	default:
		return true
	}
}

// isIntegerKind reports whether k is INTEGER or BIGINT. In binary
// promotion the integer types widen into DECIMAL or DOUBLE as needed,
// never the other way around.
func isIntegerKind(k Kind) bool { return k == Integer || k == BigInt }

// PromoteArithmetic computes the result type of a binary arithmetic
// operator (+, -, *, /) applied to lhs and rhs, per the rules in the
// design doc:
//   - integer + integer stays integer (BIGINT wins over INTEGER)
//   - decimal absorbs integers; a DOUBLE on either side absorbs decimal
//   - MUL sums precision (+1) and scale; DIV adds 6 scale and 5 precision
//   - ADD/SUB: precision = max(p1-s1, p2-s2) + max(s1,s2) + 1, scale = max(s1,s2)
func PromoteArithmetic(lhs, rhs SqlType, op ArithOp) (SqlType, bool) {
	if !lhs.IsNumeric() || !rhs.IsNumeric() {
		return SqlType{}, false
	}
	if lhs.kind == Double || rhs.kind == Double {
		return DoubleType, true
	}
	if lhs.kind == Decimal || rhs.kind == Decimal {
		ld, rd := asDecimal(lhs), asDecimal(rhs)
		return promoteDecimal(ld, rd, op), true
	}
	if isIntegerKind(lhs.kind) && isIntegerKind(rhs.kind) {
		if lhs.kind == BigInt || rhs.kind == BigInt {
			return BigIntType, true
		}
		return IntegerType, true
	}
	return SqlType{}, false
}

// ArithOp identifies which binary arithmetic operator is being promoted;
// only DIV and MUL have special-cased precision/scale growth.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
)

// asDecimal widens a non-decimal numeric type to an equivalent DECIMAL
// with scale 0, so mixed decimal/integer arithmetic can share one formula.
func asDecimal(t SqlType) SqlType {
	if t.kind == Decimal {
		return t
	}
	switch t.kind {
	case Integer:
		return MustDecimal(10, 0)
	case BigInt:
		return MustDecimal(19, 0)
	default:
		return MustDecimal(1, 0)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func promoteDecimal(l, r SqlType, op ArithOp) SqlType {
	switch op {
	case Mul:
		p := l.precision + r.precision + 1
		s := l.scale + r.scale
		return clampDecimal(p, s)
	case Div:
		p := l.precision + 5
		s := l.scale + 6
		return clampDecimal(p, s)
	default: // Add, Sub
		s := maxInt(l.scale, r.scale)
		p := maxInt(l.precision-l.scale, r.precision-r.scale) + s + 1
		return clampDecimal(p, s)
	}
}

// clampDecimal caps precision at 38 (the data model's maximum), clamping
// scale down in step if needed so scale <= precision still holds.
func clampDecimal(precision, scale int) SqlType {
	if precision > 38 {
		overflow := precision - 38
		precision = 38
		scale -= overflow
		if scale < 0 {
			scale = 0
		}
	}
	if scale > precision {
		scale = precision
	}
	return MustDecimal(precision, scale)
}
