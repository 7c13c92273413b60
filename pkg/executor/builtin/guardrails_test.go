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

func TestGuardrailsExecutor_Execute_KeywordViolationBlocks(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"text": "my password is hunter2"}, nil)
	node := &models.Node{ID: "g1", Name: "Guardrails", Type: models.NodeTypeGuardrails, Config: map[string]interface{}{
		"mode":   "input",
		"onFail": "block",
		"rules": []interface{}{
			map[string]interface{}{
				"id":     "r1",
				"type":   "keyword",
				"config": map[string]interface{}{"keywords": []interface{}{"password"}},
			},
		},
	}}

	exec := builtin.NewGuardrailsExecutor()
	_, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.Error(t, err)
	var nodeErr *models.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, models.ErrCodeGuardrailsBlocked, nodeErr.Code)
	assert.Contains(t, nodeErr.Details["failedRules"], "r1")
}

func TestGuardrailsExecutor_Execute_PassesWhenNoRuleMatches(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"text": "hello there"}, nil)
	node := &models.Node{ID: "g1", Name: "Guardrails", Type: models.NodeTypeGuardrails, Config: map[string]interface{}{
		"mode": "input",
		"rules": []interface{}{
			map[string]interface{}{
				"id":     "r1",
				"type":   "keyword",
				"config": map[string]interface{}{"keywords": []interface{}{"password"}},
			},
		},
	}}

	exec := builtin.NewGuardrailsExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	assert.Equal(t, engine.SourceHandleTrue, result.Handle)
	assert.Equal(t, true, execCtx.Get("state._guardrailsPassed"))
}

func TestGuardrailsExecutor_Execute_KeywordShouldContainFalseRequiresAbsence(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"text": "clean text"}, nil)
	node := &models.Node{ID: "g1", Name: "Guardrails", Type: models.NodeTypeGuardrails, Config: map[string]interface{}{
		"mode":   "input",
		"onFail": "block",
		"rules": []interface{}{
			map[string]interface{}{
				"id":   "r1",
				"type": "keyword",
				"config": map[string]interface{}{
					"keywords":      []interface{}{"password"},
					"shouldContain": false,
				},
			},
		},
	}}

	exec := builtin.NewGuardrailsExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	assert.Equal(t, engine.SourceHandleTrue, result.Handle)
}

func TestGuardrailsExecutor_Execute_RegexShouldMatchFalsePassesWhenAbsent(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"text": "no card here"}, nil)
	node := &models.Node{ID: "g1", Name: "Guardrails", Type: models.NodeTypeGuardrails, Config: map[string]interface{}{
		"mode":   "input",
		"onFail": "block",
		"rules": []interface{}{
			map[string]interface{}{
				"id":   "r1",
				"type": "regex",
				"config": map[string]interface{}{
					"pattern":     `\d{16}`,
					"shouldMatch": false,
				},
			},
		},
	}}

	exec := builtin.NewGuardrailsExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	assert.Equal(t, engine.SourceHandleTrue, result.Handle)
}

func TestGuardrailsExecutor_Execute_RegexViolationBlocksWithFailingRuleInDetails(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"text": "card 4111111111111111"}, nil)
	node := &models.Node{ID: "g1", Name: "Guardrails", Type: models.NodeTypeGuardrails, Config: map[string]interface{}{
		"mode":   "input",
		"onFail": "block",
		"rules": []interface{}{
			map[string]interface{}{
				"id":   "cc",
				"type": "regex",
				"config": map[string]interface{}{
					"pattern":     `\d{16}`,
					"shouldMatch": false,
				},
			},
		},
	}}

	exec := builtin.NewGuardrailsExecutor()
	_, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.Error(t, err)
	var nodeErr *models.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, models.ErrCodeGuardrailsBlocked, nodeErr.Code)
	assert.Contains(t, nodeErr.Details["failedRules"], "cc")
}

func TestGuardrailsExecutor_Execute_OnFailWarnAddsWarningsAndCompletes(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"text": "my password is hunter2"}, nil)
	node := &models.Node{ID: "g1", Name: "Guardrails", Type: models.NodeTypeGuardrails, Config: map[string]interface{}{
		"mode":   "input",
		"onFail": "warn",
		"rules": []interface{}{
			map[string]interface{}{
				"id":     "r1",
				"type":   "keyword",
				"config": map[string]interface{}{"keywords": []interface{}{"password"}},
			},
		},
	}}

	exec := builtin.NewGuardrailsExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	out := result.Output.(map[string]interface{})
	assert.NotEmpty(t, out["warnings"])
	assert.Equal(t, false, execCtx.Get("state._guardrailsPassed"))
}

func TestGuardrailsExecutor_Execute_OnFailContinuePassesSilently(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"text": "my password is hunter2"}, nil)
	node := &models.Node{ID: "g1", Name: "Guardrails", Type: models.NodeTypeGuardrails, Config: map[string]interface{}{
		"mode":   "input",
		"onFail": "continue",
		"rules": []interface{}{
			map[string]interface{}{
				"id":     "r1",
				"type":   "keyword",
				"config": map[string]interface{}{"keywords": []interface{}{"password"}},
			},
		},
	}}

	exec := builtin.NewGuardrailsExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	out := result.Output.(map[string]interface{})
	assert.Nil(t, out["warnings"])
}

func TestGuardrailsExecutor_Execute_CustomRuleReadsContentAndContext(t *testing.T) {
	execCtx := engine.NewExecutionContext("e1", "wf1", map[string]interface{}{"text": "hello"}, nil)
	node := &models.Node{ID: "g1", Name: "Guardrails", Type: models.NodeTypeGuardrails, Config: map[string]interface{}{
		"mode":   "input",
		"onFail": "block",
		"rules": []interface{}{
			map[string]interface{}{
				"id":     "r1",
				"type":   "custom",
				"config": map[string]interface{}{"validator": `input.text == "hello"`},
			},
		},
	}}

	exec := builtin.NewGuardrailsExecutor()
	result, err := exec.Execute(context.Background(), node, execCtx, engine.DefaultExecutorOptions())
	require.NoError(t, err)
	assert.Equal(t, engine.SourceHandleTrue, result.Handle)
}

func TestGuardrailsExecutor_Validate_RejectsDuplicateRuleIDs(t *testing.T) {
	exec := builtin.NewGuardrailsExecutor()
	err := exec.Validate(map[string]interface{}{
		"rules": []interface{}{
			map[string]interface{}{"id": "dup", "type": "keyword", "config": map[string]interface{}{"keywords": []interface{}{"x"}}},
			map[string]interface{}{"id": "dup", "type": "keyword", "config": map[string]interface{}{"keywords": []interface{}{"y"}}},
		},
	})
	assert.Error(t, err)
}
