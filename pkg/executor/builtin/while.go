package builtin

import (
	"context"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/expr"
	"github.com/flowforge/agentengine/pkg/models"
)

// WhileExecutor is the gate of a while loop: each dispatch checks the
// node's iteration counter against MaxIterations before evaluating
// Condition, and returns SourceHandleTrue (enter the body) or
// SourceHandleFalse (exit the loop). Exceeding the iteration ceiling
// ends the loop rather than failing the run, the same as a
// false-condition exit, so a runaway loop can never fail an otherwise
// healthy workflow. The while node is dispatched again only through an
// edge the workflow draws from its body's last node back to it; this
// executor only ever sees the gate check.
type WhileExecutor struct{}

func NewWhileExecutor() *WhileExecutor { return &WhileExecutor{} }

func (e *WhileExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.WhileConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeWhileExecution, node.ID, "invalid while config: %v", err)
	}

	if execCtx.CurrentIteration(node.ID) >= cfg.MaxIterations {
		execCtx.ResetIteration(node.ID)
		return &models.NodeExecutionResult{
			Output: map[string]interface{}{"continue": false, "reason": "max_iterations_reached"},
			Handle: engine.SourceHandleFalse,
		}, nil
	}

	matched, err := expr.EvaluateCondition(cfg.Condition, execCtx)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeConditionEval, node.ID, "condition evaluation failed: %v", err)
	}

	if !matched {
		execCtx.ResetIteration(node.ID)
		return &models.NodeExecutionResult{
			Output: map[string]interface{}{"continue": false, "reason": "condition_false"},
			Handle: engine.SourceHandleFalse,
		}, nil
	}

	iteration := execCtx.IncrementIteration(node.ID)
	execCtx.Set("state._loopIteration", iteration)
	execCtx.Set("state._"+node.ID+"_iteration", iteration)
	return &models.NodeExecutionResult{
		Output: map[string]interface{}{"iteration": iteration, "continue": true},
		Handle: engine.SourceHandleTrue,
	}, nil
}

func (e *WhileExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.WhileConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
