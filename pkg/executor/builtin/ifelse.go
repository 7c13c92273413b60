package builtin

import (
	"context"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/expr"
	"github.com/flowforge/agentengine/pkg/models"
)

// IfElseExecutor evaluates its ordered conditions in turn and routes
// to the first truthy one's output handle; if none match, it routes
// to ElseOutputHandle (or engine.SourceHandleFalse when unset).
type IfElseExecutor struct{}

func NewIfElseExecutor() *IfElseExecutor { return &IfElseExecutor{} }

func (e *IfElseExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.IfElseConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeIfElseExecution, node.ID, "invalid if-else config: %v", err)
	}

	for _, cond := range cfg.Conditions {
		matched, err := expr.EvaluateCondition(cond.Expression, execCtx)
		if err != nil {
			return nil, executor.NodeErrorf(models.ErrCodeConditionEval, node.ID, "condition %s: %v", cond.ID, err)
		}
		if matched {
			return &models.NodeExecutionResult{
				Output: map[string]interface{}{"matchedConditionId": cond.ID},
				Handle: cond.OutputHandle,
			}, nil
		}
	}

	handle := cfg.ElseOutputHandle
	if handle == "" {
		handle = engine.SourceHandleFalse
	}
	return &models.NodeExecutionResult{
		Output: map[string]interface{}{"matchedConditionId": nil},
		Handle: handle,
	}, nil
}

func (e *IfElseExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.IfElseConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
