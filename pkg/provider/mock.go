package provider

import (
	"context"
	"fmt"

	"github.com/flowforge/agentengine/pkg/models"
)

// MockLLMProvider returns a canned response (or a queued sequence of
// them) without making a network call. Used by node-executor tests
// that need a deterministic agent reply.
type MockLLMProvider struct {
	ProviderName string
	ModelList    []string
	Responses    []*models.LLMResponse
	Err          error
	calls        int
	Requests     []*models.LLMRequest
}

func NewMockLLMProvider(responses ...*models.LLMResponse) *MockLLMProvider {
	return &MockLLMProvider{ProviderName: "mock", ModelList: []string{"mock-model"}, Responses: responses}
}

func (m *MockLLMProvider) Name() string    { return m.ProviderName }
func (m *MockLLMProvider) Models() []string { return m.ModelList }
func (m *MockLLMProvider) IsAvailable() bool { return m.Err == nil }

func (m *MockLLMProvider) Chat(ctx context.Context, req *models.LLMRequest) (*models.LLMResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return &models.LLMResponse{Content: "mock response", Model: req.Model}, nil
	}
	idx := m.calls
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.calls++
	return m.Responses[idx], nil
}

// MockVectorStoreProvider returns canned search results per store ID.
type MockVectorStoreProvider struct {
	Results map[string][]SearchResult
	Err     error
}

func NewMockVectorStoreProvider() *MockVectorStoreProvider {
	return &MockVectorStoreProvider{Results: make(map[string][]SearchResult)}
}

func (m *MockVectorStoreProvider) IsAvailable() bool { return m.Err == nil }

func (m *MockVectorStoreProvider) Search(ctx context.Context, storeID, query string, maxResults int) ([]SearchResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	results := m.Results[storeID]
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// MockMCPServerProvider returns canned tool-call results keyed by
// "serverID/toolName".
type MockMCPServerProvider struct {
	ToolResults     map[string]interface{}
	Tools           map[string][]MCPToolDescriptor
	UnavailableIDs  map[string]bool
	Err             error
}

func NewMockMCPServerProvider() *MockMCPServerProvider {
	return &MockMCPServerProvider{
		ToolResults:    make(map[string]interface{}),
		Tools:          make(map[string][]MCPToolDescriptor),
		UnavailableIDs: make(map[string]bool),
	}
}

func (m *MockMCPServerProvider) IsServerAvailable(serverID string) bool {
	return !m.UnavailableIDs[serverID]
}

func (m *MockMCPServerProvider) GetServerTools(serverID string) ([]MCPToolDescriptor, error) {
	return m.Tools[serverID], nil
}

func (m *MockMCPServerProvider) CallTool(ctx context.Context, serverID, toolName string, params map[string]interface{}) (interface{}, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	key := serverID + "/" + toolName
	if v, ok := m.ToolResults[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("mcp: no canned result for %s", key)
}
