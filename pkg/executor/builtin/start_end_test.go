package builtin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor/builtin"
	"github.com/flowforge/agentengine/pkg/models"
)

func TestStartExecutor_Execute_EchoesInput(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"a": 1}, nil)
	node := &models.Node{ID: "start", Name: "Start", Type: models.NodeTypeStart}

	exec := builtin.NewStartExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	assert.Equal(t, execCtx.Input, result.Output)
}

func TestEndExecutor_Execute_PassesThroughOutputByDefault(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", nil, nil)
	execCtx.Set("output.result", "done")
	node := &models.Node{ID: "end", Name: "End", Type: models.NodeTypeEnd, Config: map[string]interface{}{}}

	exec := builtin.NewEndExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	assert.Equal(t, execCtx.Output, result.Output)
}

func TestEndExecutor_Execute_AppliesOutputMapping(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"name": "Ada"}, nil)
	node := &models.Node{ID: "end", Name: "End", Type: models.NodeTypeEnd, Config: map[string]interface{}{
		"outputMapping": map[string]interface{}{"who": "input.name"},
	}}

	exec := builtin.NewEndExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	final := result.Output.(map[string]interface{})
	assert.Equal(t, "Ada", final["who"])
	assert.Equal(t, "Ada", execCtx.Get("output.who"))
}
