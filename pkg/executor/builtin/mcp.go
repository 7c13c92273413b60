package builtin

import (
	"context"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/models"
)

// MCPExecutor calls a single named tool on a configured MCP server.
// Each string parameter is interpolated against the execution context
// before the call.
type MCPExecutor struct{}

func NewMCPExecutor() *MCPExecutor { return &MCPExecutor{} }

func (e *MCPExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.MCPConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeMCPExecution, node.ID, "invalid mcp config: %v", err)
	}
	if opts == nil || opts.MCPProvider == nil {
		return nil, executor.NodeErrorf(models.ErrCodeMCPExecution, node.ID, "no MCP provider configured")
	}
	if !opts.MCPProvider.IsServerAvailable(cfg.ServerID) {
		return nil, executor.NodeErrorf(models.ErrCodeMCPExecution, node.ID, "mcp server %s unavailable", cfg.ServerID)
	}

	params := interpolateParams(cfg.Parameters, execCtx)
	result, err := opts.MCPProvider.CallTool(ctx, cfg.ServerID, cfg.ToolName, params)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeMCPExecution, node.ID, "tool call failed: %v", err)
	}

	setStateVariable(execCtx, cfg.OutputVariable, result)
	return &models.NodeExecutionResult{Output: result}, nil
}

// interpolateParams walks a parameter map interpolating every string
// leaf, recursing into nested maps and lists; other values pass through.
func interpolateParams(params map[string]interface{}, execCtx *engine.ExecutionContext) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = interpolateValue(v, execCtx)
	}
	return out
}

func interpolateValue(v interface{}, execCtx *engine.ExecutionContext) interface{} {
	switch t := v.(type) {
	case string:
		return interpolateOrLiteral(t, execCtx)
	case map[string]interface{}:
		return interpolateParams(t, execCtx)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = interpolateValue(item, execCtx)
		}
		return out
	default:
		return v
	}
}

func (e *MCPExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.MCPConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
