package executor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agentengine/pkg/builder"
	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/builtin"
	"github.com/flowforge/agentengine/pkg/models"
)

func defaultOptsWithApprovalHook(hook func(nodeID, prompt string)) *engine.ExecutorOptions {
	opts := engine.DefaultExecutorOptions()
	opts.OnWaitingForApproval = hook
	return opts
}

func newManager(t *testing.T) executor.Manager {
	t.Helper()
	mgr := executor.NewManager()
	require.NoError(t, builtin.RegisterBuiltins(mgr))
	return mgr
}

func mustNode(t *testing.T, nb *builder.NodeBuilder) *models.Node {
	t.Helper()
	n, err := nb.Build()
	require.NoError(t, err)
	return n
}

func mustEdge(t *testing.T, eb *builder.EdgeBuilder) *models.Edge {
	t.Helper()
	e, err := eb.Build()
	require.NoError(t, err)
	return e
}

func TestWorkflowExecutor_Run_LinearWorkflow(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-1",
		Name: "linear",
		Nodes: []*models.Node{
			mustNode(t, builder.NewNode("start", models.NodeTypeStart, "Start")),
			mustNode(t, builder.NewNode("set", models.NodeTypeSetState, "Set",
				builder.WithConfig(map[string]interface{}{
					"variable":  "greeting",
					"valueType": "string",
					"value":     "hello",
				}))),
			mustNode(t, builder.NewNode("end", models.NodeTypeEnd, "End")),
		},
		Edges: []*models.Edge{
			mustEdge(t, builder.NewEdge("start", "set")),
			mustEdge(t, builder.NewEdge("set", "end")),
		},
	}

	wfExecutor, err := executor.NewWorkflowExecutor(wf, newManager(t), nil)
	require.NoError(t, err)

	execCtx, err := wfExecutor.Run(context.Background(), map[string]interface{}{"x": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execCtx.GetStatus())
	assert.Equal(t, "hello", execCtx.Get("state.greeting"))
	assert.Equal(t, []string{"start", "set", "end"}, execCtx.ExecutionPath)
}

func TestWorkflowExecutor_Run_IfElseRoutesOnHandle(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-2",
		Name: "branching",
		Nodes: []*models.Node{
			mustNode(t, builder.NewNode("start", models.NodeTypeStart, "Start")),
			mustNode(t, builder.NewNode("branch", models.NodeTypeIfElse, "Branch",
				builder.WithConfig(map[string]interface{}{
					"conditions": []interface{}{
						map[string]interface{}{
							"id":           "c1",
							"expression":   "input.flag == true",
							"outputHandle": "true",
						},
					},
					"elseOutputHandle": "false",
				}))),
			mustNode(t, builder.NewNode("onTrue", models.NodeTypeSetState, "OnTrue",
				builder.WithConfig(map[string]interface{}{
					"variable": "path", "valueType": "string", "value": "true-branch",
				}))),
			mustNode(t, builder.NewNode("onFalse", models.NodeTypeSetState, "OnFalse",
				builder.WithConfig(map[string]interface{}{
					"variable": "path", "valueType": "string", "value": "false-branch",
				}))),
			mustNode(t, builder.NewNode("end", models.NodeTypeEnd, "End")),
		},
		Edges: []*models.Edge{
			mustEdge(t, builder.NewEdge("start", "branch")),
			mustEdge(t, builder.NewEdge("branch", "onTrue", builder.WithSourceHandle("true"))),
			mustEdge(t, builder.NewEdge("branch", "onFalse", builder.WithSourceHandle("false"))),
			mustEdge(t, builder.NewEdge("onTrue", "end")),
			mustEdge(t, builder.NewEdge("onFalse", "end")),
		},
	}

	wfExecutor, err := executor.NewWorkflowExecutor(wf, newManager(t), nil)
	require.NoError(t, err)

	execCtx, err := wfExecutor.Run(context.Background(), map[string]interface{}{"flag": true}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execCtx.GetStatus())
	assert.Equal(t, "true-branch", execCtx.Get("state.path"))
}

func TestWorkflowExecutor_Run_SuspendsAndResumesOnApproval(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-3",
		Name: "approval",
		Nodes: []*models.Node{
			mustNode(t, builder.NewNode("start", models.NodeTypeStart, "Start")),
			mustNode(t, builder.NewNode("approve", models.NodeTypeUserApproval, "Approve",
				builder.WithConfig(map[string]interface{}{"message": "ok?"}))),
			mustNode(t, builder.NewNode("onApproved", models.NodeTypeSetState, "OnApproved",
				builder.WithConfig(map[string]interface{}{
					"variable": "decision", "valueType": "string", "value": "approved",
				}))),
			mustNode(t, builder.NewNode("onRejected", models.NodeTypeSetState, "OnRejected",
				builder.WithConfig(map[string]interface{}{
					"variable": "decision", "valueType": "string", "value": "rejected",
				}))),
			mustNode(t, builder.NewNode("end", models.NodeTypeEnd, "End")),
		},
		Edges: []*models.Edge{
			mustEdge(t, builder.NewEdge("start", "approve")),
			mustEdge(t, builder.NewEdge("approve", "onApproved", builder.WithSourceHandle("true"))),
			mustEdge(t, builder.NewEdge("approve", "onRejected", builder.WithSourceHandle("false"))),
			mustEdge(t, builder.NewEdge("onApproved", "end")),
			mustEdge(t, builder.NewEdge("onRejected", "end")),
		},
	}

	var waitingNodeID, waitingPrompt string
	opts := defaultOptsWithApprovalHook(func(nodeID, prompt string) {
		waitingNodeID, waitingPrompt = nodeID, prompt
	})

	wfExecutor, err := executor.NewWorkflowExecutor(wf, newManager(t), opts)
	require.NoError(t, err)

	execCtx, err := wfExecutor.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusWaiting, execCtx.GetStatus())
	assert.Equal(t, "approve", waitingNodeID)
	assert.Equal(t, "ok?", waitingPrompt)

	execCtx, err = wfExecutor.Resume(context.Background(), "approve", true)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execCtx.GetStatus())
	assert.Equal(t, "approved", execCtx.Get("state.decision"))
}

func TestWorkflowExecutor_Resume_WrongNodeIDFails(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-4",
		Name: "approval-mismatch",
		Nodes: []*models.Node{
			mustNode(t, builder.NewNode("start", models.NodeTypeStart, "Start")),
			mustNode(t, builder.NewNode("approve", models.NodeTypeUserApproval, "Approve",
				builder.WithConfig(map[string]interface{}{"message": "ok?"}))),
			mustNode(t, builder.NewNode("end", models.NodeTypeEnd, "End")),
		},
		Edges: []*models.Edge{
			mustEdge(t, builder.NewEdge("start", "approve")),
			mustEdge(t, builder.NewEdge("approve", "end", builder.WithSourceHandle("true"))),
		},
	}

	wfExecutor, err := executor.NewWorkflowExecutor(wf, newManager(t), nil)
	require.NoError(t, err)

	_, err = wfExecutor.Run(context.Background(), nil, nil)
	require.NoError(t, err)

	_, err = wfExecutor.Resume(context.Background(), "not-the-pending-node", true)
	assert.ErrorIs(t, err, models.ErrApprovalNotFound)
}

func TestWorkflowExecutor_Run_FailsOnNodeExecutionLimit(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-5",
		Name: "limited",
		Nodes: []*models.Node{
			mustNode(t, builder.NewNode("start", models.NodeTypeStart, "Start")),
			mustNode(t, builder.NewNode("set", models.NodeTypeSetState, "Set",
				builder.WithConfig(map[string]interface{}{
					"variable": "x", "valueType": "string", "value": "y",
				}))),
			mustNode(t, builder.NewNode("end", models.NodeTypeEnd, "End")),
		},
		Edges: []*models.Edge{
			mustEdge(t, builder.NewEdge("start", "set")),
			mustEdge(t, builder.NewEdge("set", "end")),
		},
	}

	opts := defaultOptsWithApprovalHook(nil)
	opts.MaxNodeExecutions = 1

	wfExecutor, err := executor.NewWorkflowExecutor(wf, newManager(t), opts)
	require.NoError(t, err)

	execCtx, err := wfExecutor.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, execCtx.GetStatus())
}

func TestWorkflowExecutor_Run_OrdersFanOutByPriority(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-7",
		Name: "fan-out",
		Nodes: []*models.Node{
			mustNode(t, builder.NewNode("start", models.NodeTypeStart, "Start")),
			mustNode(t, builder.NewNode("low", models.NodeTypeSetState, "Low",
				builder.WithNodeMetadata("priority", 1),
				builder.WithConfig(map[string]interface{}{
					"variable": "order", "valueType": "expression", "value": `state.order + "low,"`,
				}))),
			mustNode(t, builder.NewNode("high", models.NodeTypeSetState, "High",
				builder.WithNodeMetadata("priority", 10),
				builder.WithConfig(map[string]interface{}{
					"variable": "order", "valueType": "expression", "value": `state.order + "high,"`,
				}))),
			mustNode(t, builder.NewNode("end", models.NodeTypeEnd, "End")),
		},
		Edges: []*models.Edge{
			mustEdge(t, builder.NewEdge("start", "low")),
			mustEdge(t, builder.NewEdge("start", "high")),
			mustEdge(t, builder.NewEdge("low", "end")),
			mustEdge(t, builder.NewEdge("high", "end")),
		},
	}

	wfExecutor, err := executor.NewWorkflowExecutor(wf, newManager(t), nil)
	require.NoError(t, err)

	execCtx, err := wfExecutor.Run(context.Background(), nil, map[string]interface{}{"order": ""})
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execCtx.GetStatus())
	assert.Equal(t, "high,low,", execCtx.Get("state.order"))
}

func TestWorkflowExecutor_Validate_RejectsUnknownNodeType(t *testing.T) {
	wf := &models.Workflow{
		ID:   "wf-6",
		Name: "bad-type",
		Nodes: []*models.Node{
			{ID: "start", Name: "Start", Type: models.NodeTypeStart, Config: map[string]interface{}{}},
			{ID: "end", Name: "End", Type: models.NodeTypeEnd, Config: map[string]interface{}{}},
		},
		Edges: []*models.Edge{
			{ID: "e1", From: "start", To: "end"},
		},
	}

	mgr := executor.NewRegistry()
	require.NoError(t, mgr.Register(models.NodeTypeStart, builtin.NewStartExecutor()))

	wfExecutor, err := executor.NewWorkflowExecutor(wf, mgr, nil)
	require.NoError(t, err)

	err = wfExecutor.Validate()
	assert.Error(t, err)
}
