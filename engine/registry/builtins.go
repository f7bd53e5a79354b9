package registry

import (
	"fmt"
	"math"
	"strings"
)

func implAbs(args []any) (any, error) {
	v, err := toFloat(args[0])
	if err != nil {
		return nil, err
	}
	return math.Abs(v), nil
}

func implConcat(args []any) (any, error) {
	var b strings.Builder
	for _, a := range args {
		if a == nil {
			return nil, nil
		}
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("CONCAT: argument %v is not a string", a)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func implLen(args []any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("LEN: argument is not a string")
	}
	return int64(len([]rune(s))), nil
}

func implUcase(args []any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("UCASE: argument is not a string")
	}
	return strings.ToUpper(s), nil
}

func implLcase(args []any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("LCASE: argument is not a string")
	}
	return strings.ToLower(s), nil
}

func implSubstring(args []any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("SUBSTRING: argument is not a string")
	}
	runes := []rune(s)
	start, err := toInt(args[1])
	if err != nil {
		return nil, err
	}
	length, err := toInt(args[2])
	if err != nil {
		return nil, err
	}
	start-- // SQL SUBSTRING is 1-indexed
	if start < 0 {
		start = 0
	}
	end := start + length
	if start > int64(len(runes)) {
		return "", nil
	}
	if end > int64(len(runes)) {
		end = int64(len(runes))
	}
	if end < start {
		return "", nil
	}
	return string(runes[start:end]), nil
}

func implRound(args []any) (any, error) {
	v, err := toFloat(args[0])
	if err != nil {
		return nil, err
	}
	return int64(math.Round(v)), nil
}

func implIfNull(args []any) (any, error) {
	if args[0] != nil {
		return args[0], nil
	}
	return args[1], nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected numeric value, got %T", v)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer value, got %T", v)
	}
}
