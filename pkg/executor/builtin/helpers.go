package builtin

import (
	"github.com/flowforge/agentengine/pkg/engine"
	expr "github.com/flowforge/agentengine/pkg/expr"
)

// setStateVariable writes value under state.<variable>, auto-vivifying
// intermediate maps along the way. It is a no-op for an empty variable
// name.
func setStateVariable(execCtx *engine.ExecutionContext, variable string, value interface{}) {
	if variable == "" {
		return
	}
	execCtx.Set("state."+variable, value)
}

// setOutputVariable writes value under output.<key>, auto-vivifying
// intermediate maps. Unlike setStateVariable this targets the run's
// externally-visible output map, not the internal variable store.
func setOutputVariable(execCtx *engine.ExecutionContext, key string, value interface{}) {
	if key == "" {
		return
	}
	execCtx.Set("output."+key, value)
}

// interpolateOrLiteral runs template interpolation over s against the
// execution context; a syntax/evaluation error falls back to the
// original literal string rather than failing the node, mirroring how
// Interpolate itself treats unset values.
func interpolateOrLiteral(s string, execCtx *engine.ExecutionContext) string {
	out, err := expr.Interpolate(s, execCtx)
	if err != nil {
		return s
	}
	return out
}

// isEmptyValue reports whether v is nil, an empty string, or an empty
// map/slice, matching the context's notion of "no input supplied".
func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	default:
		return false
	}
}
