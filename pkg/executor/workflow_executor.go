package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/expr"
	"github.com/flowforge/agentengine/pkg/models"
)

// WorkflowExecutor runs a single workflow to completion (or to
// suspension, or to a limit violation) using a single-threaded FIFO
// dispatch queue: nodes never run concurrently, and a while node's
// body re-enters the queue through the ordinary edges a workflow
// author draws from the loop's last body node back to the while node
// itself, not through any special-cased executor logic.
//
// A WorkflowExecutor instance is single-use per run: construct one,
// call Run, and if it suspends on a user-approval node, hold onto the
// same instance and call Resume once a decision is available.
type WorkflowExecutor struct {
	workflow *models.Workflow
	dag      *engine.DAG
	manager  Manager
	opts     *engine.ExecutorOptions
	runtime  *engine.NodeRuntime

	execCtx       *engine.ExecutionContext
	queue         []string
	dispatched    int
	startedAt     time.Time
	pendingNodeID string
}

// NewWorkflowExecutor validates the workflow and prepares its DAG
// indices. opts may be nil, in which case engine.DefaultExecutorOptions
// is used.
func NewWorkflowExecutor(workflow *models.Workflow, manager Manager, opts *engine.ExecutorOptions) (*WorkflowExecutor, error) {
	if err := workflow.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = engine.DefaultExecutorOptions()
	}
	return &WorkflowExecutor{
		workflow: workflow,
		dag:      engine.BuildDAG(workflow),
		manager:  manager,
		opts:     opts,
		runtime:  engine.NewNodeRuntime(),
	}, nil
}

// Validate statically checks the workflow's structure and every node's
// configuration against its registered executor, without running
// anything.
func (e *WorkflowExecutor) Validate() error {
	if err := e.workflow.Validate(); err != nil {
		return err
	}
	for _, node := range e.workflow.Nodes {
		exec, err := e.manager.Get(node.Type)
		if err != nil {
			return fmt.Errorf("node %s: %w", node.ID, err)
		}
		if err := exec.Validate(node.Config); err != nil {
			return fmt.Errorf("node %s: invalid config: %w", node.ID, err)
		}
	}
	return nil
}

func (e *WorkflowExecutor) startNode() (*models.Node, error) {
	for _, node := range e.workflow.Nodes {
		if node.Type == models.NodeTypeStart {
			return node, nil
		}
	}
	return nil, models.ErrInvalidWorkflow
}

// Run starts a new execution from the workflow's single start node.
// It returns the execution context whether the run completes, fails,
// or suspends on a user-approval node; callers distinguish these by
// inspecting execCtx.GetStatus().
func (e *WorkflowExecutor) Run(ctx context.Context, input, variables map[string]interface{}) (*engine.ExecutionContext, error) {
	start, err := e.startNode()
	if err != nil {
		return nil, err
	}

	executionID := fmt.Sprintf("exec-%d", time.Now().UnixNano())
	e.execCtx = engine.NewExecutionContext(executionID, e.workflow.ID, input, variables)
	e.execCtx.SetStatus(models.ExecutionStatusRunning)
	e.queue = []string{start.ID}
	e.dispatched = 0
	e.startedAt = time.Now()

	return e.drain(ctx)
}

// Resume supplies the pending user-approval node's decision and
// continues the run. It is an error to call Resume on an executor that
// is not currently suspended.
func (e *WorkflowExecutor) Resume(ctx context.Context, nodeID string, approved bool) (*engine.ExecutionContext, error) {
	if e.execCtx == nil || e.execCtx.GetStatus() != models.ExecutionStatusWaiting {
		return nil, models.ErrApprovalNotFound
	}
	if e.pendingNodeID != nodeID {
		return nil, models.ErrApprovalNotFound
	}

	e.execCtx.Set("state."+approvalStateKeyName(nodeID), approved)
	e.execCtx.SetStatus(models.ExecutionStatusRunning)
	e.pendingNodeID = ""

	return e.drain(ctx)
}

// approvalStateKeyName mirrors builtin.approvalStateKey without an
// import cycle: executor -> builtin would be backwards (builtin already
// imports executor), so the key format is duplicated here as the one
// piece of shared contract between the two.
func approvalStateKeyName(nodeID string) string { return "__approval_" + nodeID }

func (e *WorkflowExecutor) drain(ctx context.Context) (*engine.ExecutionContext, error) {
	for len(e.queue) > 0 {
		if e.opts.MaxExecutionTime > 0 && time.Since(e.startedAt) > e.opts.MaxExecutionTime {
			e.execCtx.SetStatus(models.ExecutionStatusFailed)
			return e.execCtx, &models.NodeError{Code: models.ErrCodeWorkflowExecution, Message: "execution time limit exceeded"}
		}
		if e.opts.MaxNodeExecutions > 0 && e.dispatched >= e.opts.MaxNodeExecutions {
			e.execCtx.SetStatus(models.ExecutionStatusFailed)
			return e.execCtx, &models.NodeError{Code: models.ErrCodeWorkflowExecution, Message: "node execution limit exceeded"}
		}

		nodeID := e.queue[0]
		e.queue = e.queue[1:]

		node := e.dag.Index.NodesByID[nodeID]
		if node == nil {
			e.execCtx.SetStatus(models.ExecutionStatusFailed)
			return e.execCtx, fmt.Errorf("%w: %s", models.ErrNodeNotFound, nodeID)
		}

		result, err := e.dispatch(ctx, node)
		if err != nil {
			e.execCtx.SetStatus(models.ExecutionStatusFailed)
			return e.execCtx, err
		}

		if result.Suspended {
			e.execCtx.SetStatus(models.ExecutionStatusWaiting)
			e.pendingNodeID = node.ID
			e.queue = append([]string{node.ID}, e.queue...)
			return e.execCtx, nil
		}

		if node.Type == models.NodeTypeEnd {
			e.execCtx.SetStatus(models.ExecutionStatusCompleted)
			continue
		}

		for _, nextID := range e.nextNodes(node, result) {
			e.queue = append(e.queue, nextID)
		}
	}

	if e.execCtx.GetStatus() == models.ExecutionStatusRunning {
		e.execCtx.SetStatus(models.ExecutionStatusCompleted)
	}
	return e.execCtx, nil
}

func (e *WorkflowExecutor) dispatch(ctx context.Context, node *models.Node) (*models.NodeExecutionResult, error) {
	exec, err := e.manager.Get(node.Type)
	if err != nil {
		return nil, &models.NodeError{Code: models.ErrCodeExecutorNotFound, Message: err.Error(), NodeID: node.ID}
	}

	e.runtime.Start(node.ID)
	e.execCtx.AppendPath(node.ID)
	e.fireNodeEvent("node_start", node, nil, nil)

	result, err := exec.Execute(ctx, node, e.execCtx, e.opts)
	e.dispatched++

	status := models.NodeExecutionStatusCompleted
	if err != nil {
		status = models.NodeExecutionStatusFailed
	} else if result != nil && result.Suspended {
		status = models.NodeExecutionStatusWaiting
	}
	e.runtime.Finish(node.ID, status, err)

	var output interface{}
	if result != nil {
		output = result.Output
	}
	e.execCtx.AppendHistory(&models.NodeExecution{
		NodeID:    node.ID,
		Status:    status,
		Output:    toMapOrWrap(output),
		StartedAt: time.Now().Add(-time.Duration(e.runtime.DurationMs(node.ID)) * time.Millisecond),
	})
	e.fireNodeEvent("node_complete", node, output, err)

	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &models.NodeExecutionResult{}
	}
	return result, nil
}

func toMapOrWrap(v interface{}) map[string]interface{} {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"value": v}
}

func (e *WorkflowExecutor) fireNodeEvent(eventType string, node *models.Node, output interface{}, err error) {
	var cb engine.NodeEventFunc
	if eventType == "node_start" {
		cb = e.opts.OnNodeStart
	} else {
		cb = e.opts.OnNodeComplete
	}
	if cb == nil {
		return
	}
	cb(&engine.ExecutionEvent{
		Type:        eventType,
		ExecutionID: e.execCtx.ExecutionID,
		WorkflowID:  e.workflow.ID,
		NodeID:      node.ID,
		NodeName:    node.Name,
		NodeType:    string(node.Type),
		Output:      output,
		Error:       err,
		DurationMs:  e.runtime.DurationMs(node.ID),
		Timestamp:   time.Now(),
	})
}

// nextNodes resolves a dispatched node's outgoing edges into the set
// of successor node IDs to enqueue: when the result carries a Handle
// (if-else/classify/while/guardrails/user-approval routing), only edges
// whose SourceHandle equals it are followed; otherwise every edge
// without a SourceHandle is followed, except those with a Condition
// that evaluates falsy or fails to evaluate. When a node fans
// out to more than one successor, they are ordered by metadata.priority
// (highest first, stable otherwise) so that, with a single-threaded
// FIFO queue, priority reads as dispatch order.
func (e *WorkflowExecutor) nextNodes(node *models.Node, result *models.NodeExecutionResult) []string {
	edges := e.dag.Index.EdgesBySource[node.ID]
	if len(edges) == 0 {
		return nil
	}

	var successors []*models.Node

	if result.Handle != "" {
		for _, edge := range edges {
			if edge.SourceHandle == result.Handle {
				if n := e.dag.Index.NodesByID[edge.To]; n != nil {
					successors = append(successors, n)
				}
			}
		}
	} else {
		for _, edge := range edges {
			if edge.SourceHandle != "" {
				continue
			}
			if edge.Condition != "" {
				ok, err := expr.EvaluateCondition(edge.Condition, e.execCtx)
				if err != nil || !ok {
					continue
				}
			}
			if n := e.dag.Index.NodesByID[edge.To]; n != nil {
				successors = append(successors, n)
			}
		}
	}

	if len(successors) < 2 {
		ids := make([]string, len(successors))
		for i, n := range successors {
			ids[i] = n.ID
		}
		return ids
	}

	sorted := engine.SortNodesByPriority(successors)
	ids := make([]string, len(sorted))
	for i, n := range sorted {
		ids[i] = n.ID
	}
	return ids
}
