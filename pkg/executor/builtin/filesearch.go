package builtin

import (
	"context"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/models"
	"github.com/flowforge/agentengine/pkg/provider"
)

// FileSearchExecutor runs a RAG lookup against one or more configured
// vector stores and merges their results (in store order) up to
// MaxResults, writing them to state.<outputVariable>.
type FileSearchExecutor struct{}

func NewFileSearchExecutor() *FileSearchExecutor { return &FileSearchExecutor{} }

func (e *FileSearchExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.FileSearchConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeFileSearch, node.ID, "invalid file-search config: %v", err)
	}
	if opts == nil || opts.VectorStoreProvider == nil {
		return nil, executor.NodeErrorf(models.ErrCodeFileSearch, node.ID, "no vector store provider configured")
	}

	query := cfg.Query
	if cfg.QueryVariable != "" {
		if v, ok := execCtx.Get(cfg.QueryVariable).(string); ok {
			query = v
		}
	}
	query = interpolateOrLiteral(query, execCtx)

	var merged []provider.SearchResult
	for _, storeID := range cfg.VectorStoreIDs {
		if len(merged) >= cfg.MaxResults {
			break
		}
		results, err := opts.VectorStoreProvider.Search(ctx, storeID, query, cfg.MaxResults-len(merged))
		if err != nil {
			return nil, executor.NodeErrorf(models.ErrCodeFileSearch, node.ID, "search against %s failed: %v", storeID, err)
		}
		merged = append(merged, results...)
	}

	setStateVariable(execCtx, cfg.OutputVariable, merged)
	return &models.NodeExecutionResult{Output: merged}, nil
}

func (e *FileSearchExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.FileSearchConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
