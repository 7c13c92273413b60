package builtin

import (
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/models"
)

// RegisterBuiltins registers the engine's twelve node-type executors
// with the given manager.
func RegisterBuiltins(manager executor.Manager) error {
	executors := map[models.NodeType]executor.Executor{
		models.NodeTypeStart:        NewStartExecutor(),
		models.NodeTypeEnd:          NewEndExecutor(),
		models.NodeTypeAgent:        NewAgentExecutor(),
		models.NodeTypeClassify:     NewClassifyExecutor(),
		models.NodeTypeIfElse:       NewIfElseExecutor(),
		models.NodeTypeWhile:        NewWhileExecutor(),
		models.NodeTypeTransform:    NewTransformExecutor(),
		models.NodeTypeSetState:     NewSetStateExecutor(),
		models.NodeTypeUserApproval: NewUserApprovalExecutor(),
		models.NodeTypeGuardrails:   NewGuardrailsExecutor(),
		models.NodeTypeFileSearch:   NewFileSearchExecutor(),
		models.NodeTypeMCP:          NewMCPExecutor(),
	}

	for name, exec := range executors {
		if err := manager.Register(name, exec); err != nil {
			return err
		}
	}

	return nil
}

// MustRegisterBuiltins registers all built-in executors and panics on error.
// This is a convenience function for initialization code.
func MustRegisterBuiltins(manager executor.Manager) {
	if err := RegisterBuiltins(manager); err != nil {
		panic("failed to register built-in executors: " + err.Error())
	}
}
