package builtin

import (
	"context"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/models"
)

// EndExecutor terminates a run. With no outputMapping configured it
// passes the context's output root through unchanged; with one, each
// entry remaps a dot-path read off the context (input/output/state)
// onto a key in the workflow's final result.
type EndExecutor struct{}

func NewEndExecutor() *EndExecutor { return &EndExecutor{} }

func (e *EndExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.EndConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeNodeExecution, node.ID, "invalid end config: %v", err)
	}
	if len(cfg.OutputMapping) == 0 {
		return &models.NodeExecutionResult{Output: execCtx.Output}, nil
	}
	final := make(map[string]interface{}, len(cfg.OutputMapping))
	for key, path := range cfg.OutputMapping {
		value := execCtx.Get(path)
		final[key] = value
		setOutputVariable(execCtx, key, value)
	}
	return &models.NodeExecutionResult{Output: final}, nil
}

func (e *EndExecutor) Validate(config map[string]any) error {
	return nil
}
