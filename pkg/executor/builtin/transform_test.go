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

func TestTransformExecutor_Execute_AssignsLocalsAndWritesState(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"count": 2}, nil)
	node := &models.Node{ID: "t1", Name: "Transform", Type: models.NodeTypeTransform, Config: map[string]interface{}{
		"code":           "doubled = input.count * 2\nstate.result = doubled\ndoubled",
		"outputVariable": "transformResult",
	}}

	exec := builtin.NewTransformExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)

	assert.EqualValues(t, 4, result.Output)
	assert.EqualValues(t, 4, execCtx.Get("state.result"))
	assert.EqualValues(t, 4, execCtx.Get("state.transformResult"))
}

func TestTransformExecutor_Execute_WritesResultToOutput(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"count": 2}, nil)
	node := &models.Node{ID: "t1", Name: "Transform", Type: models.NodeTypeTransform, Config: map[string]interface{}{
		"code":           "input.count * 2",
		"outputVariable": "transformResult",
	}}

	exec := builtin.NewTransformExecutor()
	_, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	assert.EqualValues(t, 4, execCtx.Get("output.result"))
}

func TestTransformExecutor_Validate_RejectsForbiddenPattern(t *testing.T) {
	exec := builtin.NewTransformExecutor()
	err := exec.Validate(map[string]interface{}{"code": "x = process.env"})
	assert.Error(t, err)
}

func TestTransformExecutor_Validate_DefaultsOutputVariable(t *testing.T) {
	exec := builtin.NewTransformExecutor()
	assert.NoError(t, exec.Validate(map[string]interface{}{"code": "1 + 1"}))
}
