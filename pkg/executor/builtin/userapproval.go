package builtin

import (
	"context"
	"time"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/expr"
	"github.com/flowforge/agentengine/pkg/models"
)

// UserApprovalExecutor suspends the run the first time it is
// dispatched, surfacing its (interpolated) message through
// ExecutorOptions.OnWaitingForApproval. The workflow executor is
// responsible for persisting the suspension and for calling Execute
// again, with a resume decision already recorded on the context, once
// Resume is invoked; this executor reads that decision back from
// state.__approval_<nodeId> rather than taking it as a parameter, so
// its Execute signature stays identical to every other node type's.
type UserApprovalExecutor struct{}

func NewUserApprovalExecutor() *UserApprovalExecutor { return &UserApprovalExecutor{} }

func approvalStateKey(nodeID string) string { return "__approval_" + nodeID }

func approvalRequestedAtKey(nodeID string) string { return "__approval_" + nodeID + "_requestedAt" }

func (e *UserApprovalExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.UserApprovalConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeUserApproval, node.ID, "invalid user-approval config: %v", err)
	}

	decision := execCtx.Get("state." + approvalStateKey(node.ID))
	if decision == expr.Unset {
		prompt := interpolateOrLiteral(cfg.Message, execCtx)
		execCtx.Set("state."+approvalRequestedAtKey(node.ID), time.Now().UnixMilli())
		if opts != nil && opts.OnWaitingForApproval != nil {
			opts.OnWaitingForApproval(node.ID, prompt)
		}
		return &models.NodeExecutionResult{Suspended: true, ApprovalPrompt: prompt}, nil
	}

	if cfg.TimeoutMS > 0 {
		if requestedAt, ok := toInt64(execCtx.Get("state." + approvalRequestedAtKey(node.ID))); ok {
			elapsed := time.Since(time.UnixMilli(requestedAt)).Milliseconds()
			if elapsed >= cfg.TimeoutMS {
				return e.resolveTimeout(node, cfg, execCtx)
			}
		}
	}

	approved, _ := decision.(bool)
	handle := engine.SourceHandleFalse
	if approved {
		handle = engine.SourceHandleTrue
	}
	execCtx.Set("state."+approvalStateKey(node.ID), expr.Unset)
	execCtx.Set("state."+approvalRequestedAtKey(node.ID), expr.Unset)
	return &models.NodeExecutionResult{
		Output: map[string]interface{}{"approved": approved},
		Handle: handle,
	}, nil
}

// resolveTimeout dispatches the configured timeoutAction once a
// pending approval has sat past cfg.TimeoutMS without a decision.
func (e *UserApprovalExecutor) resolveTimeout(node *models.Node, cfg *config.UserApprovalConfig, execCtx *engine.ExecutionContext) (*models.NodeExecutionResult, error) {
	execCtx.Set("state."+approvalStateKey(node.ID), expr.Unset)
	execCtx.Set("state."+approvalRequestedAtKey(node.ID), expr.Unset)

	switch cfg.TimeoutAction {
	case config.ApprovalTimeoutApprove:
		return &models.NodeExecutionResult{
			Output: map[string]interface{}{"approved": true, "timedOut": true},
			Handle: engine.SourceHandleTrue,
		}, nil
	case config.ApprovalTimeoutReject:
		return &models.NodeExecutionResult{
			Output: map[string]interface{}{"approved": false, "timedOut": true},
			Handle: engine.SourceHandleFalse,
		}, nil
	default:
		return nil, executor.NodeErrorf(models.ErrCodeApprovalTimeout, node.ID, "approval timed out after %dms", cfg.TimeoutMS)
	}
}

// toInt64 coerces a context-resolved value (stored as int64, int, or
// float64 after a JSON round-trip) back into an int64.
func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

func (e *UserApprovalExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.UserApprovalConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
