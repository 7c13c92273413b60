// Package engine provides the public types of the workflow execution
// engine: the execution context, DAG indices, and the executor options
// a caller tunes to bound a run.
package engine

import (
	"time"

	"github.com/flowforge/agentengine/pkg/provider"
)

// NodeEventFunc is invoked around a node's execution.
type NodeEventFunc func(event *ExecutionEvent)

// LogFunc receives one log entry as it is appended to the execution.
type LogFunc func(entry LogEntry)

// ApprovalWaitFunc is invoked when a user-approval node suspends the run.
type ApprovalWaitFunc func(nodeID string, prompt string)

// ExecutorOptions configures a single WorkflowExecutor run. The zero
// value is not usable directly; callers should start from
// DefaultExecutorOptions and override what they need.
type ExecutorOptions struct {
	// LLMProvider backs agent/classify nodes. Nil is valid only for
	// workflows that contain neither node type.
	LLMProvider provider.LLMProvider

	// VectorStoreProvider backs file-search nodes.
	VectorStoreProvider provider.VectorStoreProvider

	// MCPProvider backs mcp nodes.
	MCPProvider provider.MCPServerProvider

	// MaxExecutionTime bounds the wall-clock duration of a single run,
	// measured from the first node dispatch. Exceeding it fails the
	// run with ErrCodeWorkflowExecution.
	MaxExecutionTime time.Duration

	// MaxNodeExecutions bounds the total number of node dispatches
	// across the run (while-loop bodies count per iteration). Exceeding
	// it fails the run with ErrCodeWorkflowExecution.
	MaxNodeExecutions int

	// OnNodeStart fires immediately before a node's executor runs.
	OnNodeStart NodeEventFunc

	// OnNodeComplete fires after a node's executor returns, success or
	// failure.
	OnNodeComplete NodeEventFunc

	// OnLog holds a log-entry callback. Neither WorkflowExecutor nor
	// ExecutionContext.Log invokes it; entries are only collected in
	// ExecutionContext.Logs.
	OnLog LogFunc

	// OnWaitingForApproval fires when a user-approval node suspends the
	// run pending Resume.
	OnWaitingForApproval ApprovalWaitFunc
}

// DefaultExecutorOptions returns options with the engine's documented
// defaults: a five-minute execution budget and a thousand-node
// execution ceiling, no providers wired.
func DefaultExecutorOptions() *ExecutorOptions {
	return &ExecutorOptions{
		MaxExecutionTime:  5 * time.Minute,
		MaxNodeExecutions: 1000,
	}
}
