// Package executor defines the node executor contract and registry.
//
// Each of the engine's closed set of node types (start, end, agent,
// classify, if-else, while, transform, set-state, user-approval,
// guardrails, file-search, mcp) has exactly one Executor implementation,
// registered under its NodeType in a Registry and looked up by the
// workflow executor once per dispatch.
package executor

import (
	"context"
	"fmt"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/models"
)

// Executor is the contract every node-type handler implements. Execute
// runs one node against the current execution context and returns its
// result, or an error (ordinarily a *models.NodeError) describing why
// it failed; Validate checks a node's raw config at build time, before
// any execution.
type Executor interface {
	Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error)
	Validate(config map[string]any) error
}

// Manager is the registry interface the workflow executor dispatches
// through.
type Manager interface {
	Register(nodeType models.NodeType, exec Executor) error
	Get(nodeType models.NodeType) (Executor, error)
	Has(nodeType models.NodeType) bool
	List() []models.NodeType
	Unregister(nodeType models.NodeType) error
}

// ExecutorFunc adapts two plain functions to the Executor interface.
type ExecutorFunc struct {
	ExecuteFn  func(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error)
	ValidateFn func(config map[string]any) error
}

// Execute calls the ExecuteFn function.
func (f *ExecutorFunc) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	return f.ExecuteFn(ctx, node, execCtx, opts)
}

// Validate calls the ValidateFn function.
func (f *ExecutorFunc) Validate(config map[string]any) error {
	if f.ValidateFn == nil {
		return nil
	}
	return f.ValidateFn(config)
}

// NewExecutorFunc creates a new ExecutorFunc with the given functions.
func NewExecutorFunc(
	executeFn func(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error),
	validateFn func(config map[string]any) error,
) Executor {
	return &ExecutorFunc{ExecuteFn: executeFn, ValidateFn: validateFn}
}

// BaseExecutor provides common config-reading helpers for executors
// that read raw config maps directly rather than through pkg/executor/config.
type BaseExecutor struct {
	NodeType models.NodeType
}

// NewBaseExecutor creates a new BaseExecutor.
func NewBaseExecutor(nodeType models.NodeType) *BaseExecutor {
	return &BaseExecutor{NodeType: nodeType}
}

// ValidateRequired validates that required fields are present in the configuration.
func (b *BaseExecutor) ValidateRequired(config map[string]any, fields ...string) error {
	for _, field := range fields {
		if _, ok := config[field]; !ok {
			return fmt.Errorf("required field missing: %s", field)
		}
	}
	return nil
}

// GetStringDefault safely retrieves a string value from config with a default.
func (b *BaseExecutor) GetStringDefault(config map[string]any, key, defaultValue string) string {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	str, ok := val.(string)
	if !ok {
		return defaultValue
	}
	return str
}

// GetIntDefault safely retrieves an int value from config with a default.
func (b *BaseExecutor) GetIntDefault(config map[string]any, key string, defaultValue int) int {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

// GetBoolDefault safely retrieves a bool value from config with a default.
func (b *BaseExecutor) GetBoolDefault(config map[string]any, key string, defaultValue bool) bool {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	boolVal, ok := val.(bool)
	if !ok {
		return defaultValue
	}
	return boolVal
}

// NodeErrorf builds a *models.NodeError from a formatted message.
func NodeErrorf(code models.ErrorCode, nodeID, format string, args ...interface{}) *models.NodeError {
	return &models.NodeError{Code: code, Message: fmt.Sprintf(format, args...), NodeID: nodeID}
}
