package builtin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/expr"
	"github.com/flowforge/agentengine/pkg/models"
)

// transformTimeout bounds how long a single transform script may run
// before the node fails, regardless of how long its statements take to
// evaluate.
const transformTimeout = 5 * time.Second

// transformResolver layers a transform script's local variables over
// the execution context: locals shadow input/output/state, everything
// else falls through to execCtx.
type transformResolver struct {
	execCtx *engine.ExecutionContext
	locals  map[string]interface{}
}

func (r *transformResolver) Resolve(name string) interface{} {
	if v, ok := r.locals[name]; ok {
		return v
	}
	return r.execCtx.Resolve(name)
}

// TransformExecutor runs a script of newline-separated statements
// against the execution context. Each line is one of:
//
//	name = <expr>           assigns a script-local variable
//	state.path = <expr>     writes through to the shared state root,
//	input.path = <expr>     visible to the rest of the workflow (and,
//	output.path = <expr>    inside a while body, to the next iteration)
//	log(<expr>)             appends to the execution's log stream
//	<expr>                  evaluated for its value; the last such line
//	                        becomes the node's output (also written to
//	                        state.<outputVariable> when configured)
//
// Code is statically scanned for forbidden identifiers at config-parse
// time (config.ScanForbiddenPatterns); this executor adds no further
// sandboxing since the expression language has no ambient I/O to deny.
// Execution itself is bounded by transformTimeout: a script that takes
// longer than that fails the node instead of running unbounded.
type TransformExecutor struct{}

func NewTransformExecutor() *TransformExecutor { return &TransformExecutor{} }

func (e *TransformExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.TransformConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeTransformExecution, node.ID, "invalid transform config: %v", err)
	}

	type runResult struct {
		value interface{}
		err   error
	}
	done := make(chan runResult, 1)
	go func() {
		v, err := runTransformScript(cfg.Code, node.ID, execCtx)
		done <- runResult{v, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		setStateVariable(execCtx, cfg.OutputVariable, r.value)
		setOutputVariable(execCtx, "result", r.value)
		return &models.NodeExecutionResult{Output: r.value}, nil
	case <-time.After(transformTimeout):
		return nil, executor.NodeErrorf(models.ErrCodeTransformExecution, node.ID, "transform exceeded %s timeout", transformTimeout)
	}
}

// runTransformScript executes cfg.Code's statements in order, returning
// the last evaluated expression's value.
func runTransformScript(code, nodeID string, execCtx *engine.ExecutionContext) (interface{}, error) {
	resolver := &transformResolver{execCtx: execCtx, locals: make(map[string]interface{})}
	var last interface{}

	for _, raw := range strings.Split(code, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if msg, ok := callArg(line, "log"); ok {
			v, err := expr.Evaluate(msg, resolver)
			if err != nil {
				return nil, executor.NodeErrorf(models.ErrCodeTransformExecution, nodeID, "line %q: %v", line, err)
			}
			execCtx.Log("info", fmt.Sprint(v), nodeID, nil)
			continue
		}

		if name, rhs, ok := splitAssignment(line); ok {
			v, err := expr.Evaluate(rhs, resolver)
			if err != nil {
				return nil, executor.NodeErrorf(models.ErrCodeTransformExecution, nodeID, "line %q: %v", line, err)
			}
			if isContextRoot(name) {
				execCtx.Set(name, v)
			} else {
				resolver.locals[name] = v
			}
			last = v
			continue
		}

		v, err := expr.Evaluate(line, resolver)
		if err != nil {
			return nil, executor.NodeErrorf(models.ErrCodeTransformExecution, nodeID, "line %q: %v", line, err)
		}
		last = v
	}

	return last, nil
}

// callArg recognizes a "name(arg)" line and returns its single argument
// expression unparsed; used for the script's one pseudo-statement, log.
func callArg(line, name string) (string, bool) {
	prefix := name + "("
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, ")") {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix) : len(line)-1]), true
}

// splitAssignment recognizes "name = expr" (not "==", "<=", ">=", "!=")
// at the top level of a line, where name is either a bare identifier
// (a script-local) or a dot-path rooted at input/output/state.
func splitAssignment(line string) (name, rhs string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 || idx == len(line)-1 {
		return "", "", false
	}
	if line[idx-1] == '=' || line[idx-1] == '!' || line[idx-1] == '<' || line[idx-1] == '>' || line[idx+1] == '=' {
		return "", "", false
	}
	candidate := strings.TrimSpace(line[:idx])
	if !isIdentifier(candidate) && !isDotPath(candidate) {
		return "", "", false
	}
	return candidate, strings.TrimSpace(line[idx+1:]), true
}

func isContextRoot(name string) bool {
	return strings.HasPrefix(name, "input.") || strings.HasPrefix(name, "output.") ||
		strings.HasPrefix(name, "state.") || strings.HasPrefix(name, "variables.")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func isDotPath(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if !isIdentifier(p) {
			return false
		}
	}
	return true
}

func (e *TransformExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.TransformConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
