package models

import "time"

// LLMRole identifies the speaker of a chat message.
type LLMRole string

const (
	LLMRoleSystem    LLMRole = "system"
	LLMRoleUser      LLMRole = "user"
	LLMRoleAssistant LLMRole = "assistant"
	LLMRoleTool      LLMRole = "tool"
)

// LLMMessage is one turn in a chat-style conversation passed to an
// LLMProvider. Agent and classify nodes build a []LLMMessage from their
// configured instruction/prompt fields (after interpolation) before
// calling the provider.
type LLMMessage struct {
	Role       LLMRole       `json:"role"`
	Content    string        `json:"content"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolCalls  []LLMToolCall `json:"tool_calls,omitempty"`
}

// LLMRequest represents a request to an LLM provider.
type LLMRequest struct {
	Model            string                 `json:"model"`
	Messages         []LLMMessage           `json:"messages"`
	MaxTokens        int                    `json:"max_tokens,omitempty"`
	Temperature      float64                `json:"temperature,omitempty"`
	TopP             float64                `json:"top_p,omitempty"`
	StopSequences    []string               `json:"stop_sequences,omitempty"`
	Tools            []LLMTool              `json:"tools,omitempty"`
	ResponseFormat   *LLMResponseFormat     `json:"response_format,omitempty"`
	ProviderConfig   map[string]interface{} `json:"provider_config,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// LLMTool represents a function tool available to the model.
type LLMTool struct {
	Type     string          `json:"type"` // "function"
	Function LLMFunctionTool `json:"function"`
}

// LLMFunctionTool represents a function definition exposed as a tool.
type LLMFunctionTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// LLMResponseFormat defines the expected response shape (plain text, JSON
// object, or a JSON schema for structured output).
type LLMResponseFormat struct {
	Type       string         `json:"type"` // "text", "json_object", "json_schema"
	JSONSchema *LLMJSONSchema `json:"json_schema,omitempty"`
}

// LLMJSONSchema defines a JSON schema for structured outputs.
type LLMJSONSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Schema      map[string]interface{} `json:"schema"`
	Strict      bool                   `json:"strict,omitempty"`
}

// LLMResponse represents a response from an LLM provider.
type LLMResponse struct {
	Content      string                 `json:"content"`
	Model        string                 `json:"model"`
	Usage        LLMUsage               `json:"usage"`
	ToolCalls    []LLMToolCall          `json:"tool_calls,omitempty"`
	FinishReason string                 `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
	CreatedAt    time.Time              `json:"created_at"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// LLMUsage represents token usage statistics for a single call.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// LLMToolCall represents a function call requested by the model.
type LLMToolCall struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"` // "function"
	Function LLMFunctionCall `json:"function"`
}

// LLMFunctionCall represents a function call with its arguments.
type LLMFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// LLMError represents an error surfaced by an LLM provider call.
type LLMError struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (e *LLMError) Error() string {
	return "LLM error (" + e.Provider + "): " + e.Message
}
