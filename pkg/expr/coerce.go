package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// unset is the distinguished value returned by member access and
// identifier lookups that find nothing. It is distinct from nil (which
// represents the literal/explicit null value) so that "x == null" and
// "x == unsetVar" can both hold without treating every missing field as
// an error.
type unsetType struct{}

// Unset is the sentinel value for "no such variable/field".
var Unset = unsetType{}

func isUnset(v interface{}) bool {
	_, ok := v.(unsetType)
	return ok
}

func isNullOrUnset(v interface{}) bool {
	return v == nil || isUnset(v)
}

// toBool implements the boolean coercion table: false, null, unset, 0,
// "", empty list and empty map are false; everything else is true.
func toBool(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case unsetType:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) != 0
	case map[string]interface{}:
		return len(t) != 0
	default:
		return true
	}
}

func isNumeric(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}

// toNumber coerces a value to float64 for arithmetic/ordering. Go ints
// convert directly, booleans become 1/0, strings parse as numbers when
// they look numeric; anything else yields NaN.
func toNumber(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}

// toStringForm renders a value the way string concatenation and
// string-form equality fallbacks do.
func toStringForm(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case unsetType:
		return "unset"
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(t)
	default:
		b, err := json.Marshal(normalizeForJSON(v))
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if math.IsNaN(n) {
		return "NaN"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// canonicalJSON serializes objects/lists deterministically (map keys
// sorted) so that structural equality doesn't depend on field order.
func canonicalJSON(v interface{}) string {
	b, _ := json.Marshal(normalizeForJSON(v))
	return string(b)
}

func normalizeForJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]interface{}, len(t))
		for _, k := range keys {
			out[k] = normalizeForJSON(t[k])
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeForJSON(e)
		}
		return out
	default:
		return v
	}
}

// valuesEqual implements the equality rules from the expression
// language spec: same-type direct comparison, object/list compared by
// canonical serialization, cross-numeric types compared numerically,
// otherwise compared by string form; null and unset are equal to each
// other and to themselves.
func valuesEqual(a, b interface{}) bool {
	if isNullOrUnset(a) && isNullOrUnset(b) {
		return true
	}
	if isNullOrUnset(a) || isNullOrUnset(b) {
		return false
	}

	switch av := a.(type) {
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return toStringForm(a) == toStringForm(b)
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		if bv, ok := b.(string); ok {
			if n, err := strconv.ParseFloat(bv, 64); err == nil {
				return av == n
			}
			return false
		}
		return false
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		if bv, ok := b.(float64); ok {
			if n, err := strconv.ParseFloat(av, 64); err == nil {
				return n == bv
			}
			return false
		}
		return false
	case map[string]interface{}, []interface{}:
		switch b.(type) {
		case map[string]interface{}, []interface{}:
			return canonicalJSON(a) == canonicalJSON(b)
		default:
			return false
		}
	default:
		return toStringForm(a) == toStringForm(b)
	}
}

// compareValues implements ordering: null/unset sorts before any
// non-null value; if either operand is numeric (or a numeric-looking
// string) they are compared numerically, otherwise lexicographically
// by string form. Returns -1, 0, or 1.
func compareValues(a, b interface{}) int {
	aNull, bNull := isNullOrUnset(a), isNullOrUnset(b)
	if aNull && bNull {
		return 0
	}
	if aNull {
		return -1
	}
	if bNull {
		return 1
	}

	aNum, aIsNum := numericValue(a)
	bNum, bIsNum := numericValue(b)
	if aIsNum || bIsNum {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		default:
			return 0
		}
	}

	as, bs := toStringForm(a), toStringForm(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func numericValue(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
