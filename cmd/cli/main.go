// Command agentengine-cli runs a workflow definition from a JSON file
// through the execution engine and prints the resulting execution
// context, for local exercising of the library without embedding it in
// a larger service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/flowforge/agentengine/internal/application/observer"
	"github.com/flowforge/agentengine/internal/config"
	"github.com/flowforge/agentengine/internal/infrastructure/logger"
	"github.com/flowforge/agentengine/internal/infrastructure/tracing"
	"github.com/flowforge/agentengine/pkg/engine"
	"github.com/flowforge/agentengine/pkg/executor"
	"github.com/flowforge/agentengine/pkg/executor/builtin"
	"github.com/flowforge/agentengine/pkg/models"
	"github.com/flowforge/agentengine/pkg/provider"
)

const usage = `agentengine-cli - run a workflow definition through the execution engine

USAGE:
    agentengine-cli run <workflow.json> [-input <input.json>]
    agentengine-cli validate <workflow.json>
    agentengine-cli version

Set OPENAI_API_KEY to enable agent/classify/guardrails-llm nodes against
the real OpenAI API; without it, a mock provider echoes canned responses.
`

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)

	switch os.Args[1] {
	case "run":
		runCommand(cfg, log, os.Args[2:])
	case "validate":
		validateCommand(os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runCommand(cfg *config.Config, log *logger.Logger, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	inputPath := fs.String("input", "", "path to a JSON file of input values")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: agentengine-cli run <workflow.json> [-input <input.json>]")
		os.Exit(1)
	}

	workflow, err := loadWorkflow(fs.Arg(0))
	if err != nil {
		log.Error("failed to load workflow", "error", err)
		os.Exit(1)
	}

	input := map[string]interface{}{}
	if *inputPath != "" {
		data, err := os.ReadFile(*inputPath)
		if err != nil {
			log.Error("failed to read input file", "error", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &input); err != nil {
			log.Error("failed to parse input file", "error", err)
			os.Exit(1)
		}
	}

	manager := executor.NewManager()
	builtin.MustRegisterBuiltins(manager)

	mgr := observer.NewObserverManager(observer.WithLogger(log))
	mgr.Register(loggingObserver{log: log})

	opts := observer.ExecutorOptions(context.Background(), mgr)
	opts.MaxExecutionTime = cfg.Engine.MaxExecutionTime
	opts.MaxNodeExecutions = cfg.Engine.MaxNodeExecutions
	opts.LLMProvider = resolveLLMProvider(cfg)

	runCtx, opts, endSpan := tracing.Instrument(context.Background(), opts, "workflow.run "+workflow.ID)

	wfExecutor, err := executor.NewWorkflowExecutor(workflow, manager, opts)
	if err != nil {
		log.Error("invalid workflow", "error", err)
		os.Exit(1)
	}

	execCtx, err := wfExecutor.Run(runCtx, input, nil)
	endSpan(err)
	if err != nil {
		log.Error("execution failed", "error", err)
		os.Exit(1)
	}

	printResult(execCtx)
}

func validateCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: agentengine-cli validate <workflow.json>")
		os.Exit(1)
	}

	workflow, err := loadWorkflow(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load workflow:", err)
		os.Exit(1)
	}

	manager := executor.NewManager()
	builtin.MustRegisterBuiltins(manager)

	wfExecutor, err := executor.NewWorkflowExecutor(workflow, manager, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid:", err)
		os.Exit(1)
	}
	if err := wfExecutor.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid:", err)
		os.Exit(1)
	}

	fmt.Println("workflow is valid")
}

func loadWorkflow(path string) (*models.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	return &workflow, nil
}

func resolveLLMProvider(cfg *config.Config) provider.LLMProvider {
	if cfg.Provider.OpenAIAPIKey == "" {
		return provider.NewMockLLMProvider()
	}
	return provider.NewOpenAIChatProvider(cfg.Provider.OpenAIAPIKey, cfg.Provider.OpenAIBaseURL, nil)
}

func printResult(execCtx *engine.ExecutionContext) {
	out := map[string]interface{}{
		"executionId": execCtx.ExecutionID,
		"status":      execCtx.GetStatus(),
		"output":      execCtx.Output,
		"path":        execCtx.ExecutionPath,
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

// loggingObserver forwards execution events to the structured process
// logger, fulfilling observer.Observer for CLI runs.
type loggingObserver struct {
	log *logger.Logger
}

func (o loggingObserver) Name() string { return "cli-logger" }

func (o loggingObserver) Filter() observer.EventFilter { return nil }

func (o loggingObserver) OnEvent(ctx context.Context, event observer.Event) error {
	nodeID := ""
	if event.NodeID != nil {
		nodeID = *event.NodeID
	}
	o.log.Info("execution event", "type", event.Type, "node", nodeID, "status", event.Status)
	return nil
}
