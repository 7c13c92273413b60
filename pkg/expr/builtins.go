package expr

import (
	"math"
	"strings"
)

// builtinFn implements one of the expression language's built-in
// functions. args have already been evaluated; the receiver (for
// method-call syntax such as x.trim()) is args[0].
type builtinFn func(args []interface{}) (interface{}, error)

var builtins map[string]builtinFn

func init() {
	builtins = map[string]builtinFn{
		"contains":    fnContains,
		"startsWith":  fnStartsWith,
		"endsWith":    fnEndsWith,
		"length":      fnLength,
		"toLowerCase": fnToLowerCase,
		"toUpperCase": fnToUpperCase,
		"trim":        fnTrim,
		"typeof":      fnTypeof,
		"isNull":      fnIsNull,
		"isNumber":    fnIsNumber,
		"isString":    fnIsString,
		"isBoolean":   fnIsBoolean,
		"isArray":     fnIsArray,
		"isObject":    fnIsObject,
		"toString":    fnToString,
		"toNumber":    fnToNumber,
		"abs":         fnAbs,
		"floor":       fnFloor,
		"ceil":        fnCeil,
		"round":       fnRound,
		"min":         fnMin,
		"max":         fnMax,
	}
}

func arg(args []interface{}, i int) interface{} {
	if i < 0 || i >= len(args) {
		return Unset
	}
	return args[i]
}

func fnContains(args []interface{}) (interface{}, error) {
	recv, needle := arg(args, 0), arg(args, 1)
	switch r := recv.(type) {
	case string:
		return strings.Contains(r, toStringForm(needle)), nil
	case []interface{}:
		for _, e := range r {
			if valuesEqual(e, needle) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

func fnStartsWith(args []interface{}) (interface{}, error) {
	return strings.HasPrefix(toStringForm(arg(args, 0)), toStringForm(arg(args, 1))), nil
}

func fnEndsWith(args []interface{}) (interface{}, error) {
	return strings.HasSuffix(toStringForm(arg(args, 0)), toStringForm(arg(args, 1))), nil
}

func fnLength(args []interface{}) (interface{}, error) {
	switch v := arg(args, 0).(type) {
	case string:
		return float64(len([]rune(v))), nil
	case []interface{}:
		return float64(len(v)), nil
	case map[string]interface{}:
		return float64(len(v)), nil
	default:
		return float64(0), nil
	}
}

func fnToLowerCase(args []interface{}) (interface{}, error) {
	return strings.ToLower(toStringForm(arg(args, 0))), nil
}

func fnToUpperCase(args []interface{}) (interface{}, error) {
	return strings.ToUpper(toStringForm(arg(args, 0))), nil
}

func fnTrim(args []interface{}) (interface{}, error) {
	return strings.TrimSpace(toStringForm(arg(args, 0))), nil
}

func fnTypeof(args []interface{}) (interface{}, error) {
	v := arg(args, 0)
	switch v.(type) {
	case nil:
		return "null", nil
	case unsetType:
		return "unset", nil
	case bool:
		return "boolean", nil
	case float64:
		return "number", nil
	case string:
		return "string", nil
	case []interface{}:
		return "array", nil
	case map[string]interface{}:
		return "object", nil
	default:
		return "unknown", nil
	}
}

func fnIsNull(args []interface{}) (interface{}, error)    { return arg(args, 0) == nil, nil }
func fnIsNumber(args []interface{}) (interface{}, error)  { return isNumeric(arg(args, 0)), nil }
func fnIsString(args []interface{}) (interface{}, error) {
	_, ok := arg(args, 0).(string)
	return ok, nil
}
func fnIsBoolean(args []interface{}) (interface{}, error) {
	_, ok := arg(args, 0).(bool)
	return ok, nil
}
func fnIsArray(args []interface{}) (interface{}, error) {
	_, ok := arg(args, 0).([]interface{})
	return ok, nil
}
func fnIsObject(args []interface{}) (interface{}, error) {
	_, ok := arg(args, 0).(map[string]interface{})
	return ok, nil
}

func fnToString(args []interface{}) (interface{}, error) {
	return toStringForm(arg(args, 0)), nil
}

func fnToNumber(args []interface{}) (interface{}, error) {
	return toNumber(arg(args, 0)), nil
}

func fnAbs(args []interface{}) (interface{}, error) {
	return math.Abs(toNumber(arg(args, 0))), nil
}

func fnFloor(args []interface{}) (interface{}, error) {
	return math.Floor(toNumber(arg(args, 0))), nil
}

func fnCeil(args []interface{}) (interface{}, error) {
	return math.Ceil(toNumber(arg(args, 0))), nil
}

func fnRound(args []interface{}) (interface{}, error) {
	return math.Round(toNumber(arg(args, 0))), nil
}

func fnMin(args []interface{}) (interface{}, error) {
	if len(args) == 0 {
		return math.NaN(), nil
	}
	m := toNumber(args[0])
	for _, a := range args[1:] {
		if n := toNumber(a); n < m {
			m = n
		}
	}
	return m, nil
}

func fnMax(args []interface{}) (interface{}, error) {
	if len(args) == 0 {
		return math.NaN(), nil
	}
	m := toNumber(args[0])
	for _, a := range args[1:] {
		if n := toNumber(a); n > m {
			m = n
		}
	}
	return m, nil
}
