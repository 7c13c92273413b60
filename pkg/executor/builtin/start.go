package builtin

import (
	"context"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/models"
)

// StartExecutor is the no-op entry point of every workflow: it seeds
// its output with the run's input so the first real node downstream
// can read input.* immediately.
type StartExecutor struct{}

func NewStartExecutor() *StartExecutor { return &StartExecutor{} }

func (e *StartExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	return &models.NodeExecutionResult{Output: execCtx.Input}, nil
}

func (e *StartExecutor) Validate(config map[string]any) error { return nil }
