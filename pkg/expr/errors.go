package expr

import "fmt"

// SyntaxError is raised by the lexer or parser when the source text does
// not match the expression grammar. Offset is a rune index into the
// original source string.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expression syntax error at offset %d: %s", e.Offset, e.Msg)
}

// EvalError is raised by the evaluator when a syntactically valid
// expression cannot be evaluated (division by zero, unknown function,
// wrong argument count). Offset is best-effort: it identifies the
// operator or call site that failed, not a full source span.
type EvalError struct {
	Offset int
	Msg    string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("expression evaluation error at offset %d: %s", e.Offset, e.Msg)
}
