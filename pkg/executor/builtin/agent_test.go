package builtin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor/builtin"
	"github.com/flowforge/agentengine/pkg/models"
	"github.com/flowforge/agentengine/pkg/provider"
)

func TestAgentExecutor_Execute_WritesResponseToState(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"name": "Ada"}, nil)
	opts := engine.DefaultExecutorOptions()
	opts.LLMProvider = provider.NewMockLLMProvider(&models.LLMResponse{
		Content:      "hello Ada",
		Model:        "mock-model",
		FinishReason: "stop",
		Usage:        models.LLMUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	})

	node := &models.Node{ID: "n1", Name: "Agent", Type: models.NodeTypeAgent, Config: map[string]interface{}{
		"instructions":   "Greet {{ input.name }}",
		"outputVariable": "reply",
	}}

	exec := builtin.NewAgentExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, opts)
	require.NoError(t, err)

	assert.Equal(t, "hello Ada", execCtx.Get("state.reply"))
	assert.Equal(t, "hello Ada", execCtx.Get("output.response"))
	assert.EqualValues(t, 5, execCtx.Get("state.reply_tokens"))
	output := result.Output.(map[string]interface{})
	assert.Equal(t, "hello Ada", output["response"])
}

func TestAgentExecutor_Execute_SendsInputJSONAlongsideInstructions(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"name": "Ada"}, nil)
	opts := engine.DefaultExecutorOptions()
	mock := provider.NewMockLLMProvider(&models.LLMResponse{Content: "ok"})
	opts.LLMProvider = mock

	node := &models.Node{ID: "n1", Name: "Agent", Type: models.NodeTypeAgent, Config: map[string]interface{}{
		"instructions":   "Greet the user",
		"outputVariable": "reply",
	}}

	exec := builtin.NewAgentExecutor()
	_, err := exec.Execute(context.Background(), node, execCtx, opts)
	require.NoError(t, err)

	require.Len(t, mock.Requests, 1)
	sent := mock.Requests[0]
	userMsg := sent.Messages[len(sent.Messages)-1]
	assert.Contains(t, userMsg.Content, "Greet the user")
	assert.Contains(t, userMsg.Content, "Ada")
}

func TestAgentExecutor_Execute_FailsWithoutProvider(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", nil, nil)
	node := &models.Node{ID: "n1", Name: "Agent", Type: models.NodeTypeAgent, Config: map[string]interface{}{
		"instructions": "hi",
	}}

	exec := builtin.NewAgentExecutor()
	_, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	assert.Error(t, err)
}

func TestAgentExecutor_Validate_RequiresInstructions(t *testing.T) {
	exec := builtin.NewAgentExecutor()
	assert.Error(t, exec.Validate(map[string]interface{}{}))
	assert.NoError(t, exec.Validate(map[string]interface{}{"instructions": "hi"}))
}
