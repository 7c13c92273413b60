package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/expr"
	"github.com/flowforge/agentengine/pkg/models"
)

// SetStateExecutor assigns a single value to a state dot-path. The raw
// Value string is interpreted according to ValueType: a literal
// string/number/boolean, a parsed JSON document, or an expression
// evaluated against the context.
type SetStateExecutor struct{}

func NewSetStateExecutor() *SetStateExecutor { return &SetStateExecutor{} }

func (e *SetStateExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.SetStateConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeSetState, node.ID, "invalid set-state config: %v", err)
	}

	value, err := resolveSetStateValue(cfg, execCtx)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeSetState, node.ID, "%v", err)
	}

	execCtx.Set("state."+cfg.Variable, value)
	setOutputVariable(execCtx, cfg.Variable, value)
	return &models.NodeExecutionResult{Output: map[string]interface{}{cfg.Variable: value}}, nil
}

func resolveSetStateValue(cfg *config.SetStateConfig, execCtx *engine.ExecutionContext) (interface{}, error) {
	switch cfg.ValueType {
	case config.SetStateValueString:
		return interpolateOrLiteral(cfg.Value, execCtx), nil
	case config.SetStateValueNumber:
		n, err := strconv.ParseFloat(cfg.Value, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case config.SetStateValueBoolean:
		return parseLooseBool(cfg.Value)
	case config.SetStateValueJSON:
		return parseJSONValue(cfg.Value)
	case config.SetStateValueExpression:
		return expr.Evaluate(cfg.Value, execCtx)
	default:
		return cfg.Value, nil
	}
}

// parseLooseBool maps the common truthy/falsy spellings used in
// workflow configs, case-insensitively, rather than requiring the
// strict "true"/"false" strconv.ParseBool demands.
func parseLooseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %q", raw)
	}
}

func (e *SetStateExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.SetStateConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
