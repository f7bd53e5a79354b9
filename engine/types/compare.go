package types

// ComparisonCompatible reports whether lhs and rhs can appear on either
// side of a comparison operator, per the design doc: string only compares
// with string; decimal compares with any numeric (the narrower side
// widens); equality additionally admits numeric cross-type comparison.
// equalityOnly is true for = / != / IS DISTINCT FROM, false for ordering
// comparisons (<, <=, >, >=) which the design doc calls "order-compatible".
func ComparisonCompatible(lhs, rhs SqlType, equalityOnly bool) bool {
	if lhs.kind == Unknown || rhs.kind == Unknown {
		return true
	}
	if lhs.kind == Boolean || rhs.kind == Boolean {
		return lhs.kind == Boolean && rhs.kind == Boolean
	}
	if lhs.kind == String || rhs.kind == String {
		return lhs.kind == String && rhs.kind == String
	}
	if lhs.IsNumeric() && rhs.IsNumeric() {
		return true
	}
	if equalityOnly {
		if lhs.Equal(rhs) {
			return true
		}
		// Containers compare equal only to their own exact shape.
		return false
	}
	return lhs.Equal(rhs)
}

// WidenForComparison returns the common type two comparable numeric
// operands should be evaluated at: the widest of the two per the
// arithmetic promotion ladder (DOUBLE > DECIMAL > BIGINT > INTEGER).
func WidenForComparison(lhs, rhs SqlType) SqlType {
	if lhs.kind == Double || rhs.kind == Double {
		return DoubleType
	}
	if lhs.kind == Decimal || rhs.kind == Decimal {
		ld, rd := asDecimal(lhs), asDecimal(rhs)
		if ld.precision-ld.scale >= rd.precision-rd.scale {
			return ld
		}
		return rd
	}
	if lhs.kind == BigInt || rhs.kind == BigInt {
		return BigIntType
	}
	return IntegerType
}
