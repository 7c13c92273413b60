// Package provider defines the pluggable integration points an
// executing workflow reaches out through: chat-completion LLMs,
// vector-store backed retrieval, and MCP tool servers. Node executors
// depend only on these interfaces, never on a concrete SDK, so a
// workflow can run against OpenAI in production and an in-memory fake
// in tests.
package provider

import (
	"context"

	"github.com/flowforge/agentengine/pkg/models"
)

// LLMProvider performs chat-completion calls on behalf of the agent
// node executor.
type LLMProvider interface {
	Name() string
	Models() []string
	Chat(ctx context.Context, req *models.LLMRequest) (*models.LLMResponse, error)
	IsAvailable() bool
}

// VectorStoreProvider performs similarity search on behalf of the
// file-search node executor.
type VectorStoreProvider interface {
	Search(ctx context.Context, storeID, query string, maxResults int) ([]SearchResult, error)
	IsAvailable() bool
}

// SearchResult is a single hit from a vector store search.
type SearchResult struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// MCPServerProvider dispatches tool calls to a configured MCP server
// on behalf of the mcp node executor.
type MCPServerProvider interface {
	CallTool(ctx context.Context, serverID, toolName string, params map[string]interface{}) (interface{}, error)
	IsServerAvailable(serverID string) bool
	GetServerTools(serverID string) ([]MCPToolDescriptor, error)
}

// MCPToolDescriptor describes a tool exposed by an MCP server.
type MCPToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"input_schema,omitempty"`
}

// ApprovalFunc is the signature of a callback that decides a
// user-approval node from the node and a context snapshot. No option or
// executor in this module accepts or calls one; user-approval nodes
// suspend the run until WorkflowExecutor.Resume supplies the decision.
type ApprovalFunc func(ctx context.Context, node *models.Node, contextSnapshot map[string]interface{}) (bool, error)
