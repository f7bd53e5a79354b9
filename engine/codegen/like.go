package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/streamsql-core/planner/engine/expr"
)

// likeShape is one of the five compiled LIKE forms the design doc calls
// for: a pattern with no wildcards compiles to an equality check, a
// trailing-% pattern to a prefix check, a leading-% pattern to a suffix
// check, a leading-and-trailing-% pattern to a substring check, and
// anything else falls back to a compiled regular expression. Compiling
// the shape once at plan time instead of re-scanning the pattern per row
// is the whole point of this file.
type likeShape struct {
	kind    int
	literal string
	re      *regexp.Regexp
}

const (
	likeEqual = iota
	likePrefix
	likeSuffix
	likeContains
	likeRegex
)

// compileLikePattern analyzes a LIKE pattern using SQL wildcards % (any
// run of characters) and _ (any single character) with backslash escapes,
// and picks the cheapest matching shape.
func compileLikePattern(pattern string) likeShape {
	hasUnderscore := strings.ContainsRune(unescape(pattern, '_', false), '_')
	if !hasUnderscore {
		trimmed := pattern
		leading := strings.HasPrefix(trimmed, "%")
		trailing := strings.HasSuffix(trimmed, "%") && !strings.HasSuffix(trimmed, `\%`)
		inner := trimmed
		if leading {
			inner = inner[1:]
		}
		if trailing {
			inner = inner[:len(inner)-1]
		}
		if !strings.ContainsRune(inner, '%') {
			lit := unescape(inner, '%', true)
			switch {
			case leading && trailing:
				return likeShape{kind: likeContains, literal: lit}
			case trailing:
				return likeShape{kind: likePrefix, literal: lit}
			case leading:
				return likeShape{kind: likeSuffix, literal: lit}
			default:
				return likeShape{kind: likeEqual, literal: lit}
			}
		}
	}
	return likeShape{kind: likeRegex, re: regexp.MustCompile(likeToRegex(pattern))}
}

func unescape(s string, wildcard rune, all bool) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func likeToRegex(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes):
			b.WriteString(regexp.QuoteMeta(string(runes[i+1])))
			i++
		case r == '%':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}

func (s likeShape) match(value string) bool {
	switch s.kind {
	case likeEqual:
		return value == s.literal
	case likePrefix:
		return strings.HasPrefix(value, s.literal)
	case likeSuffix:
		return strings.HasSuffix(value, s.literal)
	case likeContains:
		return strings.Contains(value, s.literal)
	case likeRegex:
		return s.re.MatchString(value)
	default:
		return false
	}
}

func (c *Compiler) compileLike(v *expr.Like) (ExpressionEvaluator, error) {
	operand, err := c.Compile(v.Operand)
	if err != nil {
		return nil, err
	}
	// A constant pattern compiles its shape once here; a computed pattern
	// (rare) falls back to compiling the shape per row.
	if lit, ok := v.Pattern.(*expr.Literal); ok {
		pat, ok := lit.Value.(string)
		if !ok {
			return nil, fmt.Errorf("codegen: LIKE pattern must be a string literal")
		}
		shape := compileLikePattern(pat)
		return func(row Row) (any, error) {
			ov, err := operand(row)
			if err != nil {
				return nil, err
			}
			if ov == nil {
				return false, nil
			}
			s, ok := ov.(string)
			if !ok {
				return nil, fmt.Errorf("codegen: LIKE operand is not a string")
			}
			return shape.match(s), nil
		}, nil
	}
	patternEval, err := c.Compile(v.Pattern)
	if err != nil {
		return nil, err
	}
	return func(row Row) (any, error) {
		ov, err := operand(row)
		if err != nil {
			return nil, err
		}
		if ov == nil {
			return false, nil
		}
		pv, err := patternEval(row)
		if err != nil {
			return nil, err
		}
		if pv == nil {
			return false, nil
		}
		s, ok := ov.(string)
		if !ok {
			return nil, fmt.Errorf("codegen: LIKE operand is not a string")
		}
		p, ok := pv.(string)
		if !ok {
			return nil, fmt.Errorf("codegen: LIKE pattern is not a string")
		}
		return compileLikePattern(p).match(s), nil
	}, nil
}
