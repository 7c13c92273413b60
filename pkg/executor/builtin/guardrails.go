package builtin

import (
	"context"
	"regexp"
	"strings"

	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/config"
	"github.com/flowforge/agentengine/pkg/expr"
	"github.com/flowforge/agentengine/pkg/models"
)

// GuardrailsExecutor runs a list of rules against the context's input
// and/or output, per Mode, and blocks, warns, or passes through
// according to OnFail. Every rule's pass/fail verdict and message is
// recorded in variables._guardrailResults, alongside an overall
// variables._guardrailsPassed flag, regardless of OnFail.
type GuardrailsExecutor struct{}

func NewGuardrailsExecutor() *GuardrailsExecutor { return &GuardrailsExecutor{} }

// ruleVerdict is one rule's evaluation outcome.
type ruleVerdict struct {
	RuleID  string `json:"ruleId"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

func (e *GuardrailsExecutor) Execute(ctx context.Context, node *models.Node, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (*models.NodeExecutionResult, error) {
	cfg, err := config.ParseConfig[config.GuardrailsConfig](node.Config)
	if err != nil {
		return nil, executor.NodeErrorf(models.ErrCodeGuardrailsError, node.ID, "invalid guardrails config: %v", err)
	}

	content := buildGuardrailContent(cfg.Mode, execCtx)

	var verdicts []ruleVerdict
	var failedIDs []string
	var messages []string
	for _, rule := range cfg.Rules {
		passed, msg, err := evalGuardrailRule(ctx, rule, content, execCtx, opts)
		if err != nil {
			return nil, executor.NodeErrorf(models.ErrCodeGuardrailsError, node.ID, "rule %s: %v", rule.ID, err)
		}
		if msg == "" && !passed {
			msg = rule.Message
			if msg == "" {
				msg = "rule " + rule.ID + " violated"
			}
		}
		verdicts = append(verdicts, ruleVerdict{RuleID: rule.ID, Passed: passed, Message: msg})
		if !passed {
			failedIDs = append(failedIDs, rule.ID)
			messages = append(messages, msg)
		}
	}

	passedAll := len(failedIDs) == 0
	resultsRaw := make([]map[string]interface{}, len(verdicts))
	for i, v := range verdicts {
		resultsRaw[i] = map[string]interface{}{"ruleId": v.RuleID, "passed": v.Passed, "message": v.Message}
	}
	execCtx.Set("state._guardrailResults", resultsRaw)
	execCtx.Set("state._guardrailsPassed", passedAll)

	output := map[string]interface{}{
		"passed":  passedAll,
		"results": resultsRaw,
	}

	if !passedAll && cfg.OnFail == config.GuardrailOnFailBlock {
		return nil, &models.NodeError{
			Code:    models.ErrCodeGuardrailsBlocked,
			Message: strings.Join(messages, "; "),
			NodeID:  node.ID,
			Details: map[string]interface{}{"failedRules": failedIDs},
		}
	}

	if !passedAll && cfg.OnFail == config.GuardrailOnFailWarn {
		output["warnings"] = messages
	}

	return &models.NodeExecutionResult{Output: output, Handle: engine.SourceHandleTrue}, nil
}

// buildGuardrailContent serializes the part(s) of the context the rule
// set inspects into a single string, per Mode.
func buildGuardrailContent(mode config.GuardrailMode, execCtx *engine.ExecutionContext) string {
	switch mode {
	case config.GuardrailModeOutput:
		return stringifyForGuardrail(execCtx.Get("output"))
	case config.GuardrailModeBoth:
		return stringifyForGuardrail(map[string]interface{}{
			"input":  execCtx.Get("input"),
			"output": execCtx.Get("output"),
		})
	default:
		return stringifyForGuardrail(execCtx.Get("input"))
	}
}

func stringifyForGuardrail(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, err := sortedJSONString(v); err == nil {
		return s
	}
	return ""
}

// guardrailResolver exposes `content` as a bound identifier alongside
// the context's usual input/output/state roots, for the custom rule's
// validator expression. The expression language has no call-scoped
// argument binding (evalCall only dispatches through the fixed global
// builtins table), so getVariable/getInput/getOutput from the original
// validator contract are served the same way every other node reads
// the context: via the already read-only input.*/output.*/state.*
// member paths, rather than as literal function calls.
type guardrailResolver struct {
	execCtx *engine.ExecutionContext
	content string
}

func (r guardrailResolver) Resolve(name string) interface{} {
	if name == "content" {
		return r.content
	}
	return r.execCtx.Resolve(name)
}

func evalGuardrailRule(ctx context.Context, rule config.GuardrailRule, content string, execCtx *engine.ExecutionContext, opts *engine.ExecutorOptions) (bool, string, error) {
	switch rule.Type {
	case config.GuardrailRuleKeyword:
		return evalKeywordRule(rule, content)

	case config.GuardrailRuleRegex:
		return evalRegexRule(rule, content)

	case config.GuardrailRuleCustom:
		validator, _ := rule.Config["validator"].(string)
		if validator == "" {
			return true, "", nil
		}
		result, err := expr.Evaluate(validator, guardrailResolver{execCtx: execCtx, content: content})
		if err != nil {
			return false, "", err
		}
		return interpretCustomResult(result)

	case config.GuardrailRuleLLM:
		return evalLLMRule(ctx, rule, content, opts)

	default:
		return true, "", nil
	}
}

func evalKeywordRule(rule config.GuardrailRule, content string) (bool, string, error) {
	raw, _ := rule.Config["keywords"].([]interface{})
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		if s, ok := k.(string); ok {
			keywords = append(keywords, s)
		}
	}
	caseSensitive, _ := rule.Config["caseSensitive"].(bool)
	shouldContain, _ := rule.Config["shouldContain"].(bool)

	haystack := content
	if !caseSensitive {
		haystack = strings.ToLower(haystack)
	}
	contains := false
	for _, kw := range keywords {
		needle := kw
		if !caseSensitive {
			needle = strings.ToLower(needle)
		}
		if needle != "" && strings.Contains(haystack, needle) {
			contains = true
			break
		}
	}

	passed := contains == shouldContain
	if passed {
		return true, "", nil
	}
	return false, "keyword rule: expected contains-a-keyword=" + boolString(shouldContain), nil
}

func evalRegexRule(rule config.GuardrailRule, content string) (bool, string, error) {
	pattern, _ := rule.Config["pattern"].(string)
	if pattern == "" {
		return true, "", nil
	}
	flags, _ := rule.Config["flags"].(string)
	if flags == "" {
		flags = "gi"
	}
	shouldMatch, _ := rule.Config["shouldMatch"].(bool)

	re, err := regexp.Compile(applyRegexFlags(pattern, flags))
	if err != nil {
		return false, "", err
	}
	matchPresent := re.MatchString(content)

	passed := matchPresent == shouldMatch
	if passed {
		return true, "", nil
	}
	return false, "regex rule: expected match=" + boolString(shouldMatch), nil
}

// applyRegexFlags translates the JS-style flag letters the config
// carries ("g", "i", "m", "s") into Go's inline flag syntax. "g" has no
// Go equivalent (MatchString already finds any occurrence) and is
// ignored.
func applyRegexFlags(pattern, flags string) string {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		}
	}
	if inline.Len() == 0 {
		return pattern
	}
	return "(?" + inline.String() + ")" + pattern
}

func interpretCustomResult(result interface{}) (bool, string, error) {
	switch v := result.(type) {
	case bool:
		return v, "", nil
	case map[string]interface{}:
		passed, _ := v["passed"].(bool)
		msg, _ := v["message"].(string)
		return passed, msg, nil
	case nil:
		return false, "", nil
	case string:
		return v != "", "", nil
	case float64:
		return v != 0, "", nil
	default:
		return true, "", nil
	}
}

func evalLLMRule(ctx context.Context, rule config.GuardrailRule, content string, opts *engine.ExecutorOptions) (bool, string, error) {
	if opts == nil || opts.LLMProvider == nil {
		return true, "", nil
	}
	prompt, _ := rule.Config["prompt"].(string)
	model, _ := rule.Config["model"].(string)
	resp, err := opts.LLMProvider.Chat(ctx, &models.LLMRequest{
		Model: model,
		Messages: []models.LLMMessage{
			{Role: models.LLMRoleSystem, Content: "Respond with PASS or FAIL, optionally followed by a reason."},
			{Role: models.LLMRoleUser, Content: prompt + "\n\n" + content},
		},
	})
	if err != nil {
		return false, "", err
	}
	answer := strings.TrimSpace(resp.Content)
	passed := strings.HasPrefix(strings.ToUpper(answer), "PASS")
	return passed, answer, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (e *GuardrailsExecutor) Validate(cfg map[string]any) error {
	parsed, err := config.ParseConfig[config.GuardrailsConfig](cfg)
	if err != nil {
		return err
	}
	return parsed.Validate()
}
