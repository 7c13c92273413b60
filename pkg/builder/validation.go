package builder

import (
	"fmt"

	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/models"
)

// ValidateNodeConfig validates a node's configuration against the
// typed config struct its node type parses into. Start nodes take no
// configuration and always pass.
func ValidateNodeConfig(nodeType models.NodeType, cfg map[string]any) error {
	switch nodeType {
	case models.NodeTypeStart:
		return nil
	case models.NodeTypeEnd:
		return validateTyped[config.EndConfig](cfg)
	case models.NodeTypeAgent:
		return validateTyped[config.AgentConfig](cfg)
	case models.NodeTypeClassify:
		return validateTyped[config.ClassifyConfig](cfg)
	case models.NodeTypeIfElse:
		return validateTyped[config.IfElseConfig](cfg)
	case models.NodeTypeWhile:
		return validateTyped[config.WhileConfig](cfg)
	case models.NodeTypeTransform:
		return validateTyped[config.TransformConfig](cfg)
	case models.NodeTypeSetState:
		return validateTyped[config.SetStateConfig](cfg)
	case models.NodeTypeUserApproval:
		return validateTyped[config.UserApprovalConfig](cfg)
	case models.NodeTypeGuardrails:
		return validateTyped[config.GuardrailsConfig](cfg)
	case models.NodeTypeFileSearch:
		return validateTyped[config.FileSearchConfig](cfg)
	case models.NodeTypeMCP:
		return validateTyped[config.MCPConfig](cfg)
	default:
		return fmt.Errorf("unknown node type: %s", nodeType)
	}
}

type validatable interface {
	Validate() error
}

func validateTyped[T any](cfg map[string]any) error {
	parsed, err := config.ParseConfig[T](cfg)
	if err != nil {
		return err
	}
	v, ok := any(parsed).(validatable)
	if !ok {
		return nil
	}
	return v.Validate()
}
