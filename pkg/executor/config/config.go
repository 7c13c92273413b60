// Package config provides typed configuration structs for each of the
// engine's node types. Node executors parse their raw map[string]any
// config into one of these via ParseConfig and validate it with
// go-playground/validator struct tags before use.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AgentConfig configures an "agent" node: a single LLM chat turn.
type AgentConfig struct {
	Instructions   string                   `json:"instructions" validate:"required"`
	Model          string                   `json:"model,omitempty"`
	Temperature    float64                  `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	MaxTokens      int                      `json:"maxTokens,omitempty" validate:"gte=0"`
	SystemPrompt   string                   `json:"systemPrompt,omitempty"`
	Tools          []map[string]interface{} `json:"tools,omitempty"`
	OutputVariable string                   `json:"outputVariable,omitempty"`
}

// Validate validates the agent configuration and fills in defaults.
func (c *AgentConfig) Validate() error {
	if c.OutputVariable == "" {
		c.OutputVariable = "agentResponse"
	}
	return validate.Struct(c)
}

// ClassifyCategory is one labeled bucket a classify node can route to.
type ClassifyCategory struct {
	ID           string   `json:"id" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description,omitempty"`
	Examples     []string `json:"examples,omitempty"`
	OutputHandle string   `json:"outputHandle,omitempty"`
}

// ClassifyConfig configures a "classify" node: an LLM call constrained to
// pick one of a fixed set of category labels.
type ClassifyConfig struct {
	Categories     []ClassifyCategory `json:"categories" validate:"required,min=1,dive"`
	InputVariable  string             `json:"inputVariable,omitempty"`
	OutputVariable string             `json:"outputVariable,omitempty"`
	Model          string             `json:"model,omitempty"`
}

// Validate validates the classify configuration, checking for unique ids
// and case-insensitive-unique names, and filling in defaults.
func (c *ClassifyConfig) Validate() error {
	if c.InputVariable == "" {
		c.InputVariable = "input"
	}
	if c.OutputVariable == "" {
		c.OutputVariable = "classification"
	}
	if err := validate.Struct(c); err != nil {
		return err
	}
	ids := make(map[string]bool, len(c.Categories))
	names := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if ids[cat.ID] {
			return fmt.Errorf("duplicate category id: %s", cat.ID)
		}
		ids[cat.ID] = true
		lname := toLowerASCII(cat.Name)
		if names[lname] {
			return fmt.Errorf("duplicate category name: %s", cat.Name)
		}
		names[lname] = true
	}
	return nil
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// IfElseCondition is one ordered branch of an if-else node.
type IfElseCondition struct {
	ID           string `json:"id" validate:"required"`
	Expression   string `json:"expression" validate:"required"`
	Label        string `json:"label,omitempty"`
	OutputHandle string `json:"outputHandle" validate:"required"`
}

// IfElseConfig configures an "if-else" node: an ordered list of
// expression conditions, the first truthy one wins, with an optional
// "else" fallback handle.
type IfElseConfig struct {
	Conditions       []IfElseCondition `json:"conditions" validate:"required,min=1,dive"`
	ElseOutputHandle string            `json:"elseOutputHandle,omitempty"`
}

// Validate validates the if-else configuration.
func (c *IfElseConfig) Validate() error {
	ids := make(map[string]bool, len(c.Conditions))
	for _, cond := range c.Conditions {
		if ids[cond.ID] {
			return fmt.Errorf("duplicate condition id: %s", cond.ID)
		}
		ids[cond.ID] = true
	}
	return validate.Struct(c)
}

// WhileConfig configures a "while" node: a condition re-evaluated before
// each iteration, a list of body node ids, and a hard iteration ceiling.
type WhileConfig struct {
	Condition     string   `json:"condition" validate:"required"`
	MaxIterations int      `json:"maxIterations,omitempty" validate:"gte=0,lte=10000"`
	BodyNodes     []string `json:"bodyNodes" validate:"required,min=1"`
}

// Validate validates the while configuration and fills in the default
// iteration ceiling.
func (c *WhileConfig) Validate() error {
	if c.MaxIterations == 0 {
		c.MaxIterations = 100
	}
	return validate.Struct(c)
}

// TransformConfig configures a "transform" node: a small line-oriented
// script of expressions, assignments to locals or context paths, and
// log(...) calls, evaluated against the input/output/state roots.
type TransformConfig struct {
	Code           string   `json:"code" validate:"required"`
	InputVariables []string `json:"inputVariables,omitempty"`
	OutputVariable string   `json:"outputVariable,omitempty"`
}

// Validate validates the transform configuration and runs the static
// forbidden-pattern security scan.
func (c *TransformConfig) Validate() error {
	if c.OutputVariable == "" {
		c.OutputVariable = "transformResult"
	}
	if err := validate.Struct(c); err != nil {
		return err
	}
	return ScanForbiddenPatterns(c.Code)
}

// forbiddenPatterns is the belt-and-suspenders static scan required
// before a transform script ever reaches the sandbox.
var forbiddenPatterns = []string{
	"eval(", "Function(", "require(", "process", "__dirname", "__filename",
	"globalThis", "window", "document", "localStorage", "sessionStorage",
	"fetch(", "XMLHttpRequest", "WebSocket", "import(",
}

// ScanForbiddenPatterns rejects transform/custom-guardrail code containing
// any disallowed identifier or call. It is the primary validation-time
// defense; the sandbox's restricted binding surface is the runtime one.
func ScanForbiddenPatterns(code string) error {
	for _, pattern := range forbiddenPatterns {
		if containsSubstring(code, pattern) {
			return fmt.Errorf("code contains forbidden pattern: %s", pattern)
		}
	}
	return nil
}

func containsSubstring(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// SetStateValueType is the closed set of value kinds a set-state node can
// assign.
type SetStateValueType string

const (
	SetStateValueString     SetStateValueType = "string"
	SetStateValueNumber     SetStateValueType = "number"
	SetStateValueBoolean    SetStateValueType = "boolean"
	SetStateValueJSON       SetStateValueType = "json"
	SetStateValueExpression SetStateValueType = "expression"
)

// SetStateConfig configures a "set-state" node.
type SetStateConfig struct {
	Variable  string            `json:"variable" validate:"required"`
	ValueType SetStateValueType `json:"valueType" validate:"required,oneof=string number boolean json expression"`
	Value     string            `json:"value"`
}

// Validate validates the set-state configuration, including that
// Variable is a dot-path of identifiers.
func (c *SetStateConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if !isDotPath(c.Variable) {
		return fmt.Errorf("variable %q must be a dot-path of identifiers", c.Variable)
	}
	return nil
}

func isDotPath(s string) bool {
	if s == "" {
		return false
	}
	start := true
	for _, r := range s {
		switch {
		case r == '.':
			if start {
				return false
			}
			start = true
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			start = false
		case !start && r >= '0' && r <= '9':
			start = false
		default:
			return false
		}
	}
	return !start
}

// UserApprovalTimeoutAction is what happens when a pending approval times
// out.
type UserApprovalTimeoutAction string

const (
	ApprovalTimeoutApprove UserApprovalTimeoutAction = "approve"
	ApprovalTimeoutReject  UserApprovalTimeoutAction = "reject"
	ApprovalTimeoutFail    UserApprovalTimeoutAction = "fail"
)

// UserApprovalConfig configures a "user-approval" node: it pauses the run
// until an external caller resumes it with an approve/reject decision, or
// until it times out.
type UserApprovalConfig struct {
	Message       string                    `json:"message" validate:"required"`
	ApproveLabel  string                    `json:"approveLabel,omitempty"`
	RejectLabel   string                    `json:"rejectLabel,omitempty"`
	TimeoutMS     int64                     `json:"timeout,omitempty" validate:"omitempty,gte=1000,lte=86400000"`
	TimeoutAction UserApprovalTimeoutAction `json:"timeoutAction,omitempty"`
}

// Validate validates the user-approval configuration and fills in
// defaults.
func (c *UserApprovalConfig) Validate() error {
	if c.TimeoutAction == "" {
		c.TimeoutAction = ApprovalTimeoutFail
	}
	return validate.Struct(c)
}

// GuardrailMode selects which part of the context a guardrails node
// inspects.
type GuardrailMode string

const (
	GuardrailModeInput  GuardrailMode = "input"
	GuardrailModeOutput GuardrailMode = "output"
	GuardrailModeBoth   GuardrailMode = "both"
)

// GuardrailOnFail selects what happens when a rule fails.
type GuardrailOnFail string

const (
	GuardrailOnFailBlock    GuardrailOnFail = "block"
	GuardrailOnFailWarn     GuardrailOnFail = "warn"
	GuardrailOnFailContinue GuardrailOnFail = "continue"
)

// GuardrailRuleType is the closed set of guardrail rule kinds.
type GuardrailRuleType string

const (
	GuardrailRuleRegex   GuardrailRuleType = "regex"
	GuardrailRuleKeyword GuardrailRuleType = "keyword"
	GuardrailRuleLLM     GuardrailRuleType = "llm"
	GuardrailRuleCustom  GuardrailRuleType = "custom"
)

// GuardrailRule is a single check a guardrails node evaluates.
type GuardrailRule struct {
	ID      string                 `json:"id" validate:"required"`
	Name    string                 `json:"name,omitempty"`
	Type    GuardrailRuleType      `json:"type" validate:"required,oneof=regex keyword llm custom"`
	Config  map[string]interface{} `json:"config"`
	Message string                 `json:"message,omitempty"`
}

// GuardrailsConfig configures a "guardrails" node.
type GuardrailsConfig struct {
	Mode    GuardrailMode   `json:"mode,omitempty"`
	OnFail  GuardrailOnFail `json:"onFail,omitempty"`
	Rules   []GuardrailRule `json:"rules" validate:"required,min=1,dive"`
}

// Validate validates the guardrails configuration, checking rule-id
// uniqueness and filling in defaults.
func (c *GuardrailsConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = GuardrailModeInput
	}
	if c.OnFail == "" {
		c.OnFail = GuardrailOnFailBlock
	}
	if err := validate.Struct(c); err != nil {
		return err
	}
	ids := make(map[string]bool, len(c.Rules))
	for _, r := range c.Rules {
		if ids[r.ID] {
			return fmt.Errorf("duplicate guardrail rule id: %s", r.ID)
		}
		ids[r.ID] = true
		if r.Type == GuardrailRuleCustom {
			if src, ok := r.Config["validator"].(string); ok {
				if err := ScanForbiddenPatterns(src); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// FileSearchConfig configures a "file-search" node: a RAG lookup against
// one or more configured vector stores.
type FileSearchConfig struct {
	VectorStoreIDs []string `json:"vectorStoreIds" validate:"required,min=1,dive,required"`
	MaxResults     int      `json:"maxResults,omitempty" validate:"gte=0,lte=100"`
	Query          string   `json:"query,omitempty"`
	QueryVariable  string   `json:"queryVariable,omitempty"`
	OutputVariable string   `json:"outputVariable,omitempty"`
}

// Validate validates the file-search configuration and fills in
// defaults.
func (c *FileSearchConfig) Validate() error {
	if c.MaxResults == 0 {
		c.MaxResults = 5
	}
	if c.OutputVariable == "" {
		c.OutputVariable = "searchResults"
	}
	return validate.Struct(c)
}

// MCPConfig configures an "mcp" node: an external tool call against a
// named MCP server.
type MCPConfig struct {
	ServerID       string                 `json:"serverId" validate:"required"`
	ToolName       string                 `json:"toolName" validate:"required"`
	Parameters     map[string]interface{} `json:"parameters,omitempty"`
	OutputVariable string                 `json:"outputVariable,omitempty"`
}

// Validate validates the mcp configuration and fills in defaults.
func (c *MCPConfig) Validate() error {
	if c.OutputVariable == "" {
		c.OutputVariable = "mcpResult"
	}
	return validate.Struct(c)
}

// EndConfig configures an "end" node's optional output remapping.
type EndConfig struct {
	OutputMapping map[string]string `json:"outputMapping,omitempty"`
}

// Validate validates the end configuration. It has no required fields.
func (c *EndConfig) Validate() error { return nil }

// ParseConfig parses a map[string]any into a typed config struct and, when
// the type has a Validate method, runs it so defaults are filled in and
// invalid configs are rejected before use.
func ParseConfig[T any](cfg map[string]any) (*T, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if v, ok := any(&result).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// ToMap converts a typed config struct to map[string]any.
func ToMap(cfg any) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to convert to map: %w", err)
	}
	return result, nil
}
