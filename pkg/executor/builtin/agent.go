package builtin

import (
	"context"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/models"
)

// AgentExecutor runs a single LLM chat turn: its configured
// instructions (and optional system prompt) are interpolated against
// the execution context and sent to the configured LLMProvider, and
// the reply is written to state.<outputVariable>.
type AgentExecutor struct{}

func NewAgentExecutor() *AgentExecutor { return &AgentExecutor{} }

func (e *AgentExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.AgentConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeAgentExecution, node.ID, "invalid agent config: %v", err)
	}
	if opts == nil || opts.LLMProvider == nil {
		return nil, executor.NodeErrorf(models.ErrCodeAgentExecution, node.ID, "no LLM provider configured")
	}

	var messages []models.LLMMessage
	if cfg.SystemPrompt != "" {
		messages = append(messages, models.LLMMessage{
			Role:    models.LLMRoleSystem,
			Content: interpolateOrLiteral(cfg.SystemPrompt, execCtx),
		})
	}
	userContent := interpolateOrLiteral(cfg.Instructions, execCtx)
	if input := execCtx.Get("input"); !isEmptyValue(input) {
		if dump, err := sortedJSONString(input); err == nil {
			userContent = userContent + "\n\n" + dump
		}
	}
	messages = append(messages, models.LLMMessage{
		Role:    models.LLMRoleUser,
		Content: userContent,
	})

	req := &models.LLMRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	resp, err := opts.LLMProvider.Chat(ctx, req)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeAgentExecution, node.ID, "llm call failed: %v", err)
	}

	output := map[string]interface{}{
		"response":     resp.Content,
		"model":        resp.Model,
		"finishReason": resp.FinishReason,
		"usage": map[string]interface{}{
			"promptTokens":     resp.Usage.PromptTokens,
			"completionTokens": resp.Usage.CompletionTokens,
			"totalTokens":      resp.Usage.TotalTokens,
		},
	}
	if len(resp.ToolCalls) > 0 {
		output["toolCalls"] = resp.ToolCalls
	}
	setStateVariable(execCtx, cfg.OutputVariable, resp.Content)
	setOutputVariable(execCtx, "response", resp.Content)
	if resp.Usage.TotalTokens > 0 {
		setStateVariable(execCtx, cfg.OutputVariable+"_tokens", resp.Usage.TotalTokens)
	}
	return &models.NodeExecutionResult{Output: output}, nil
}

func (e *AgentExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.AgentConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
