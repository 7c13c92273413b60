package expr

import "fmt"

// Resolver resolves bare identifiers against whatever dot-path variable
// space the caller exposes (the engine's execution context resolves
// input/output/state roots this way). A missing path must return
// Unset, not an error: reads never fail in this language.
type Resolver interface {
	Resolve(name string) interface{}
}

// MapResolver is a Resolver backed by a plain map, useful for tests and
// for evaluating expressions against a single flat scope.
type MapResolver map[string]interface{}

func (m MapResolver) Resolve(name string) interface{} {
	if v, ok := m[name]; ok {
		return v
	}
	return Unset
}

// Evaluate parses and evaluates src against resolver, returning the raw
// result value (which may be any JSON-like Go value, or Unset).
func Evaluate(src string, resolver Resolver) (interface{}, error) {
	ast, err := parseCached(src)
	if err != nil {
		return nil, err
	}
	return evalNode(ast, resolver)
}

// EvaluateCondition evaluates src and coerces the result to bool using
// the language's truthiness rules. Used by if-else and while nodes.
func EvaluateCondition(src string, resolver Resolver) (bool, error) {
	v, err := Evaluate(src, resolver)
	if err != nil {
		return false, err
	}
	return toBool(v), nil
}

func evalNode(n Node, r Resolver) (interface{}, error) {
	switch t := n.(type) {
	case NumberLit:
		return t.Value, nil
	case StringLit:
		return t.Value, nil
	case BoolLit:
		return t.Value, nil
	case NullLit:
		return nil, nil
	case Ident:
		return r.Resolve(t.Name), nil
	case Unary:
		return evalUnary(t, r)
	case Binary:
		return evalBinary(t, r)
	case Member:
		return evalMember(t, r)
	case Call:
		return evalCall(t, r)
	default:
		return nil, fmt.Errorf("unhandled node type %T", n)
	}
}

func evalUnary(u Unary, r Resolver) (interface{}, error) {
	v, err := evalNode(u.Operand, r)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case tokBang:
		return !toBool(v), nil
	case tokMinus:
		return -toNumber(v), nil
	default:
		return nil, &EvalError{Offset: u.Offset, Msg: "unknown unary operator"}
	}
}

func evalBinary(b Binary, r Resolver) (interface{}, error) {
	// && and || short-circuit and return the operand itself, not a
	// boolean, unless coercion changes it: "a || b" yields a if a is
	// truthy, else b; neither side is coerced to bool in the result.
	if b.Op == tokOr {
		left, err := evalNode(b.Left, r)
		if err != nil {
			return nil, err
		}
		if toBool(left) {
			return left, nil
		}
		return evalNode(b.Right, r)
	}
	if b.Op == tokAnd {
		left, err := evalNode(b.Left, r)
		if err != nil {
			return nil, err
		}
		if !toBool(left) {
			return left, nil
		}
		return evalNode(b.Right, r)
	}

	left, err := evalNode(b.Left, r)
	if err != nil {
		return nil, err
	}
	right, err := evalNode(b.Right, r)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case tokPlus:
		if _, ok := left.(string); ok {
			return left.(string) + toStringForm(right), nil
		}
		if _, ok := right.(string); ok {
			return toStringForm(left) + right.(string), nil
		}
		return toNumber(left) + toNumber(right), nil
	case tokMinus:
		return toNumber(left) - toNumber(right), nil
	case tokStar:
		return toNumber(left) * toNumber(right), nil
	case tokSlash:
		rv := toNumber(right)
		if rv == 0 {
			return nil, &EvalError{Offset: b.Offset, Msg: "division by zero"}
		}
		return toNumber(left) / rv, nil
	case tokPercent:
		rv := toNumber(right)
		if rv == 0 {
			return nil, &EvalError{Offset: b.Offset, Msg: "modulo by zero"}
		}
		lv := toNumber(left)
		return lv - rv*float64(int64(lv/rv)), nil
	case tokEq:
		return valuesEqual(left, right), nil
	case tokNeq:
		return !valuesEqual(left, right), nil
	case tokLt:
		return compareValues(left, right) < 0, nil
	case tokLte:
		return compareValues(left, right) <= 0, nil
	case tokGt:
		return compareValues(left, right) > 0, nil
	case tokGte:
		return compareValues(left, right) >= 0, nil
	default:
		return nil, &EvalError{Offset: b.Offset, Msg: "unknown binary operator"}
	}
}

func evalMember(m Member, r Resolver) (interface{}, error) {
	base, err := evalNode(m.Base, r)
	if err != nil {
		return nil, err
	}
	if isNullOrUnset(base) {
		return Unset, nil
	}

	if !m.Bracket {
		return memberByName(base, m.Name), nil
	}

	idx, err := evalNode(m.Index, r)
	if err != nil {
		return nil, err
	}
	return memberByIndex(base, idx), nil
}

func memberByName(base interface{}, name string) interface{} {
	switch b := base.(type) {
	case map[string]interface{}:
		if v, ok := b[name]; ok {
			return v
		}
		return Unset
	default:
		return Unset
	}
}

func memberByIndex(base interface{}, idx interface{}) interface{} {
	switch b := base.(type) {
	case []interface{}:
		n := toNumber(idx)
		i := int(n)
		if float64(i) != n || i < 0 || i >= len(b) {
			return Unset
		}
		return b[i]
	case string:
		runes := []rune(b)
		n := toNumber(idx)
		i := int(n)
		if float64(i) != n || i < 0 || i >= len(runes) {
			return Unset
		}
		return string(runes[i])
	case map[string]interface{}:
		key := toStringForm(idx)
		if v, ok := b[key]; ok {
			return v
		}
		return Unset
	default:
		return Unset
	}
}

func evalCall(c Call, r Resolver) (interface{}, error) {
	fn, ok := builtins[c.Fn]
	if !ok {
		return nil, &EvalError{Offset: c.Offset, Msg: fmt.Sprintf("unknown function %q", c.Fn)}
	}
	args := make([]interface{}, len(c.Args))
	for i, a := range c.Args {
		v, err := evalNode(a, r)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn(args)
}
