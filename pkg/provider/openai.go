package provider

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/flowforge/agentengine/pkg/models"
)

// OpenAIChatProvider adapts the go-openai client to the LLMProvider
// interface. It is the only LLMProvider wired by default; additional
// providers (Anthropic, local models) implement the same interface.
type OpenAIChatProvider struct {
	client       *openai.Client
	providerName string
	models       []string
}

// NewOpenAIChatProvider constructs a provider over the given API key
// and optional base URL (empty uses the default OpenAI endpoint, set
// it to point at an OpenAI-compatible gateway).
func NewOpenAIChatProvider(apiKey, baseURL string, supportedModels []string) *OpenAIChatProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIChatProvider{
		client:       openai.NewClientWithConfig(cfg),
		providerName: "openai",
		models:       supportedModels,
	}
}

func (p *OpenAIChatProvider) Name() string    { return p.providerName }
func (p *OpenAIChatProvider) Models() []string { return p.models }
func (p *OpenAIChatProvider) IsAvailable() bool { return p.client != nil }

func (p *OpenAIChatProvider) Chat(ctx context.Context, req *models.LLMRequest) (*models.LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	creq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
	}
	if req.MaxTokens > 0 {
		creq.MaxTokens = req.MaxTokens
	}
	if len(req.StopSequences) > 0 {
		creq.Stop = req.StopSequences
	}

	resp, err := p.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return &models.LLMResponse{Model: resp.Model}, nil
	}

	choice := resp.Choices[0]
	out := &models.LLMResponse{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: models.LLMUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, models.LLMToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: models.LLMFunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out, nil
}
