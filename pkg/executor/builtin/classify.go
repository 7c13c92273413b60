package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/models"
)

// ClassifyExecutor asks the LLM to pick exactly one of a fixed set of
// category labels for the configured input, then routes to that
// category's output handle.
//
// If the model's answer does not match any configured category id or
// name, the node falls back silently to the first configured category
// rather than failing the run: a classify node is meant to always
// produce a route, and an unparseable model answer is treated as
// "least informative", not as an error.
type ClassifyExecutor struct{}

func NewClassifyExecutor() *ClassifyExecutor { return &ClassifyExecutor{} }

func (e *ClassifyExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.ClassifyConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeClassifyExecution, node.ID, "invalid classify config: %v", err)
	}
	if opts == nil || opts.LLMProvider == nil {
		return nil, executor.NodeErrorf(models.ErrCodeClassifyExecution, node.ID, "no LLM provider configured")
	}

	input := execCtx.Get(cfg.InputVariable)
	prompt := buildClassifyPrompt(cfg.Categories, input)

	resp, err := opts.LLMProvider.Chat(ctx, &models.LLMRequest{
		Model: cfg.Model,
		Messages: []models.LLMMessage{
			{Role: models.LLMRoleSystem, Content: "Respond with only the category id, nothing else."},
			{Role: models.LLMRoleUser, Content: prompt},
		},
		ResponseFormat: &models.LLMResponseFormat{Type: "text"},
	})
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeClassifyExecution, node.ID, "llm call failed: %v", err)
	}

	chosen := matchCategory(cfg.Categories, resp.Content)
	handle := chosen.OutputHandle
	if handle == "" {
		handle = chosen.ID
	}

	output := map[string]interface{}{
		"categoryId":   chosen.ID,
		"categoryName": chosen.Name,
		"raw":          resp.Content,
	}
	setStateVariable(execCtx, cfg.OutputVariable, chosen.Name)
	setOutputVariable(execCtx, "category", chosen.Name)
	setOutputVariable(execCtx, "categoryId", chosen.ID)
	return &models.NodeExecutionResult{Output: output, Handle: handle}, nil
}

func buildClassifyPrompt(categories []config.ClassifyCategory, input interface{}) string {
	var b strings.Builder
	b.WriteString("Categories:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s: %s %s\n", c.ID, c.Name, c.Description)
	}
	b.WriteString("\nInput:\n")
	data, err := json.Marshal(input)
	if err != nil {
		fmt.Fprintf(&b, "%v", input)
	} else {
		b.Write(data)
	}
	return b.String()
}

func matchCategory(categories []config.ClassifyCategory, answer string) config.ClassifyCategory {
	trimmed := strings.TrimSpace(strings.ToLower(answer))
	for _, c := range categories {
		if strings.ToLower(c.ID) == trimmed || strings.ToLower(c.Name) == trimmed {
			return c
		}
	}
	for _, c := range categories {
		if strings.Contains(trimmed, strings.ToLower(c.ID)) {
			return c
		}
	}
	return categories[0]
}

func (e *ClassifyExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.ClassifyConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
