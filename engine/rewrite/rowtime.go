// Package rewrite implements mandatory plan-independent expression
// rewrites that run before type checking. Grounded on the corpus's
// dcl.go/ddl.go pattern of a dedicated pass per concern, but built on top
// of engine/expr's generic Rewrite framework rather than re-walking the
// tree by hand for each concern.
package rewrite

import (
	"strconv"
	"strings"
	"time"

	"github.com/streamsql-core/planner/engine/expr"
	"github.com/streamsql-core/planner/engine/perr"
	"github.com/streamsql-core/planner/engine/schema"
	"github.com/streamsql-core/planner/engine/types"
)

// NormalizeRowTimeLiterals rewrites STRING literals compared against (or
// bounding, via BETWEEN) ROWTIME into BIGINT epoch-millisecond literals,
// per the design doc's mandatory row-time normalization pass. It is
// idempotent: a literal already rewritten to BIGINT is left untouched
// because it no longer matches the "STRING literal beside a ROWTIME
// reference" shape.
func NormalizeRowTimeLiterals(e expr.Expr) (expr.Expr, error) {
	return expr.Rewrite(e, func(node expr.Expr) (expr.Expr, bool, error) {
		switch v := node.(type) {
		case *expr.Comparison:
			lit, other, isRight, match := rowTimeLiteralShape(v)
			if !match {
				return nil, false, nil
			}
			millis, err := ParseTimestampLiteral(lit.Value.(string))
			if err != nil {
				return nil, false, perr.At(perr.InvalidTimestampLiteral, v.Pos(),
					"invalid ROWTIME literal %q: %v", lit.Value, err)
			}
			replaced := expr.NewLiteral(lit.Pos(), millis, types.BigIntType)
			if isRight {
				return expr.NewComparison(v.Pos(), v.Op, other, replaced), true, nil
			}
			return expr.NewComparison(v.Pos(), v.Op, replaced, other), true, nil

		case *expr.Between:
			if !isRowTimeRef(v.Operand) {
				return nil, false, nil
			}
			low, lowChanged, err := rewriteRowTimeBound(v.Low)
			if err != nil {
				return nil, false, err
			}
			high, highChanged, err := rewriteRowTimeBound(v.High)
			if err != nil {
				return nil, false, err
			}
			if !lowChanged && !highChanged {
				return nil, false, nil
			}
			return expr.NewBetween(v.Pos(), v.Operand, low, high), true, nil

		default:
			return nil, false, nil
		}
	})
}

// rewriteRowTimeBound converts e to a BIGINT epoch-millisecond literal
// when it is a STRING literal, for use as one bound of a ROWTIME BETWEEN.
// Returns e unchanged (changed=false) for any other shape.
func rewriteRowTimeBound(e expr.Expr) (out expr.Expr, changed bool, err error) {
	lit, ok := e.(*expr.Literal)
	if !ok || lit.Type.Kind() != types.String {
		return e, false, nil
	}
	millis, err := ParseTimestampLiteral(lit.Value.(string))
	if err != nil {
		return nil, false, perr.At(perr.InvalidTimestampLiteral, lit.Pos(),
			"invalid ROWTIME literal %q: %v", lit.Value, err)
	}
	return expr.NewLiteral(lit.Pos(), millis, types.BigIntType), true, nil
}

// rowTimeLiteralShape detects "ROWTIME <op> 'string literal'" (or
// reversed) and returns the literal, the other operand, whether the
// literal was the right-hand operand, and whether the shape matched.
func rowTimeLiteralShape(cmp *expr.Comparison) (lit *expr.Literal, other expr.Expr, isRight bool, match bool) {
	if isRowTimeRef(cmp.Left) {
		if l, ok := cmp.Right.(*expr.Literal); ok && l.Type.Kind() == types.String {
			return l, cmp.Left, true, true
		}
	}
	if isRowTimeRef(cmp.Right) {
		if l, ok := cmp.Left.(*expr.Literal); ok && l.Type.Kind() == types.String {
			return l, cmp.Right, false, true
		}
	}
	return nil, nil, false, false
}

func isRowTimeRef(e expr.Expr) bool {
	col, ok := e.(*expr.ColumnRef)
	if !ok {
		return false
	}
	parts := strings.Split(col.Qualified, ".")
	return strings.EqualFold(parts[len(parts)-1], schema.RowTimeName.String())
}

// ParseTimestampLiteral parses the fixed grammar
// yyyy-MM-dd'T'HH:mm:ss.SSS[Z|+HH:mm|-HH:mm], applying leftward
// zero-completion: a literal may be truncated from the right at any
// component boundary ("2019-01-01", "2019-01-01T10:00") and the missing
// suffix is filled with zeros. A literal with no explicit offset is
// interpreted as UTC, never the local timezone, per the design doc's
// resolved Open Question.
func ParseTimestampLiteral(s string) (int64, error) {
	datePart, timePart, hasTime := strings.Cut(s, "T")

	y, mo, d, err := parseDate(datePart)
	if err != nil {
		return 0, err
	}

	h, mi, sec, nanos, offset, hasOffset := 0, 0, 0, 0, time.Duration(0), false
	if hasTime {
		h, mi, sec, nanos, offset, hasOffset, err = parseTime(timePart)
		if err != nil {
			return 0, err
		}
	}

	loc := time.UTC
	t := time.Date(y, time.Month(mo), d, h, mi, sec, nanos, loc)
	if hasOffset {
		t = t.Add(-offset)
	}
	return t.UnixMilli(), nil
}

func parseDate(s string) (year, month, day int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return 0, 0, 0, perr.New(perr.InvalidTimestampLiteral, "malformed date %q", s)
	}
	nums := make([]int, 3)
	nums[1], nums[2] = 1, 1 // month/day default to 1 when truncated
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, perr.New(perr.InvalidTimestampLiteral, "malformed date component %q", p)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// parseTime parses "HH:mm:ss.SSS" with leftward-truncated suffix and an
// optional trailing "Z" or "+HH:mm"/"-HH:mm" offset.
func parseTime(s string) (hour, minute, second, nanos int, offset time.Duration, hasOffset bool, err error) {
	body := s
	if strings.HasSuffix(body, "Z") {
		hasOffset = true
		body = strings.TrimSuffix(body, "Z")
	} else if idx := findOffsetSign(body); idx >= 0 {
		hasOffset = true
		offStr := body[idx:]
		body = body[:idx]
		offset, err = parseOffset(offStr)
		if err != nil {
			return 0, 0, 0, 0, 0, false, err
		}
	}

	secParts := strings.SplitN(body, ".", 2)
	clockPart := secParts[0]
	if len(secParts) == 2 {
		frac := secParts[1]
		for len(frac) < 9 {
			frac += "0"
		}
		n, err := strconv.Atoi(frac[:9])
		if err != nil {
			return 0, 0, 0, 0, 0, false, perr.New(perr.InvalidTimestampLiteral, "malformed fractional seconds %q", secParts[1])
		}
		nanos = n
	}

	clockParts := strings.Split(clockPart, ":")
	if len(clockParts) == 0 || len(clockParts) > 3 {
		return 0, 0, 0, 0, 0, false, perr.New(perr.InvalidTimestampLiteral, "malformed time %q", s)
	}
	nums := make([]int, 3)
	for i, p := range clockParts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, 0, 0, false, perr.New(perr.InvalidTimestampLiteral, "malformed time component %q", p)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nanos, offset, hasOffset, nil
}

func findOffsetSign(s string) int {
	// Skip index 0: the string never starts with +/- at the top level here.
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			return i
		}
	}
	return -1
}

func parseOffset(s string) (time.Duration, error) {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	parts := strings.Split(s, ":")
	if len(parts) == 0 || len(parts) > 2 {
		return 0, perr.New(perr.InvalidTimestampLiteral, "malformed offset %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, perr.New(perr.InvalidTimestampLiteral, "malformed offset hours %q", parts[0])
	}
	m := 0
	if len(parts) == 2 {
		m, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, perr.New(perr.InvalidTimestampLiteral, "malformed offset minutes %q", parts[1])
		}
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	if neg {
		d = -d
	}
	return d, nil
}
