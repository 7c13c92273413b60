package builtin

import (
	"encoding/json"
	"sort"
	"strings"
)

// parseJSONValue decodes a JSON document, preserving number precision.
// It backs the set-state node's "json" value type.
func parseJSONValue(raw string) (interface{}, error) {
	decoder := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	decoder.UseNumber()
	var v interface{}
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeJSONNumbers(v), nil
}

// normalizeJSONNumbers converts json.Number leaves to float64 so the
// rest of the engine (expression evaluator, equality/ordering) sees the
// same numeric representation it would for any other value.
func normalizeJSONNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeJSONNumbers(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeJSONNumbers(val)
		}
		return t
	default:
		return v
	}
}

// sortedJSONString serializes v with object keys sorted recursively,
// for deterministic logging/debugging output. Grounded on the teacher's
// JSON-to-string adapter's sortMapKeys helper.
func sortedJSONString(v interface{}) (string, error) {
	data, err := json.Marshal(sortMapKeys(v))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortMapKeys(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sorted := make(map[string]interface{}, len(v))
		for _, k := range keys {
			sorted[k] = sortMapKeys(v[k])
		}
		return sorted
	case []interface{}:
		sorted := make([]interface{}, len(v))
		for i, item := range v {
			sorted[i] = sortMapKeys(item)
		}
		return sorted
	default:
		return data
	}
}
