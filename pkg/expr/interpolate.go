package expr

import (
	"encoding/json"
	"strings"
)

// Interpolate scans src for "{{ expr }}" placeholders, evaluates each
// inner expression against resolver, and substitutes the result.
// Placeholders whose expression resolves to unset are left untouched
// (literal braces preserved) rather than substituted with an empty
// string, so a template can be re-interpolated later once the variable
// is set. Map/list results are JSON-serialized; everything else is
// rendered with the same string-form rules as "+" concatenation.
func Interpolate(src string, resolver Resolver) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(src) {
		start := strings.Index(src[i:], "{{")
		if start == -1 {
			out.WriteString(src[i:])
			break
		}
		start += i
		out.WriteString(src[i:start])

		end := strings.Index(src[start+2:], "}}")
		if end == -1 {
			out.WriteString(src[start:])
			break
		}
		end += start + 2

		inner := strings.TrimSpace(src[start+2 : end])
		v, err := Evaluate(inner, resolver)
		if err != nil || isUnset(v) {
			out.WriteString(src[start : end+2])
		} else {
			out.WriteString(renderInterpolated(v))
		}
		i = end + 2
	}
	return out.String(), nil
}

func renderInterpolated(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return toStringForm(v)
		}
		return string(b)
	default:
		return toStringForm(v)
	}
}
