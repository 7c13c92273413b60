package engine

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/flowforge/agentengine/pkg/models"

	"github.com/flowforge/agentengine/pkg/expr"
)

// LogEntry is one append-only entry in an execution's log stream. This
// is distinct from the process-wide slog logger configured under
// internal/infrastructure/logger: it travels with the execution and is
// returned to callers, while the slog logger only ever writes to the
// host process's own log sink.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	NodeID    string                 `json:"nodeId,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// ExecutionContext is the mutable state threaded through a single
// workflow run: the variables/input/output roots expressions resolve
// against, the append-only path/history/log streams, and per-loop
// iteration counters. It implements expr.Resolver directly so node
// executors can evaluate expressions against it without an adapter.
type ExecutionContext struct {
	mu sync.RWMutex

	ExecutionID string
	WorkflowID  string

	Variables map[string]interface{} // aliased as "state" in expressions
	Input     map[string]interface{}
	Output    map[string]interface{}

	ExecutionPath   []string       // node IDs in dispatch order, may repeat for while bodies
	History         []*models.NodeExecution
	IterationCounts map[string]int // "while_<nodeId>" -> current iteration

	Logs []LogEntry

	Status models.ExecutionStatus
}

// NewExecutionContext creates a fresh context seeded with the given
// input and workflow-level variables.
func NewExecutionContext(executionID, workflowID string, input, variables map[string]interface{}) *ExecutionContext {
	if input == nil {
		input = make(map[string]interface{})
	}
	if variables == nil {
		variables = make(map[string]interface{})
	}
	return &ExecutionContext{
		ExecutionID:     executionID,
		WorkflowID:      workflowID,
		Variables:       variables,
		Input:           input,
		Output:          make(map[string]interface{}),
		IterationCounts: make(map[string]int),
		Status:          models.ExecutionStatusPending,
	}
}

// Resolve implements expr.Resolver: the only bare identifiers an
// expression can reference are the three context roots. Nested access
// ("input.user.name") is handled by the evaluator's Member nodes once
// it has the root map.
func (c *ExecutionContext) Resolve(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch name {
	case "input":
		return toInterfaceMap(c.Input)
	case "output":
		return toInterfaceMap(c.Output)
	case "state", "variables":
		return toInterfaceMap(c.Variables)
	default:
		return expr.Unset
	}
}

func toInterfaceMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

// rootMap resolves the first dot-path segment to the backing map the
// caller must hold c.mu for.
func (c *ExecutionContext) rootMap(root string) map[string]interface{} {
	switch root {
	case "input":
		if c.Input == nil {
			c.Input = make(map[string]interface{})
		}
		return c.Input
	case "output":
		if c.Output == nil {
			c.Output = make(map[string]interface{})
		}
		return c.Output
	case "state", "variables":
		if c.Variables == nil {
			c.Variables = make(map[string]interface{})
		}
		return c.Variables
	default:
		return nil
	}
}

// Get resolves a dot path such as "output.classification" against the
// context. A missing path never errors: it returns expr.Unset.
func (c *ExecutionContext) Get(path string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	segments := strings.Split(path, ".")
	if len(segments) == 0 {
		return expr.Unset
	}
	root := c.rootMap(segments[0])
	if root == nil {
		return expr.Unset
	}
	var cur interface{} = root
	for _, seg := range segments[1:] {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return expr.Unset
		}
		v, ok := m[seg]
		if !ok {
			return expr.Unset
		}
		cur = v
	}
	return cur
}

// Set writes a dot path, auto-vivifying intermediate maps as needed.
// The root segment must be one of input/output/state/variables.
func (c *ExecutionContext) Set(path string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	segments := strings.Split(path, ".")
	root := c.rootMap(segments[0])
	if root == nil {
		return
	}
	if len(segments) == 1 {
		// setting the root itself is a no-op: roots are always maps
		return
	}
	cur := root
	for i := 1; i < len(segments)-1; i++ {
		seg := segments[i]
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[seg] = next
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
}

// AppendPath records a node dispatch in the execution path.
func (c *ExecutionContext) AppendPath(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExecutionPath = append(c.ExecutionPath, nodeID)
}

// AppendHistory records one completed NodeExecutionResult.
func (c *ExecutionContext) AppendHistory(result *models.NodeExecution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.History = append(c.History, result)
}

// IncrementIteration increments and returns the loop's iteration count.
func (c *ExecutionContext) IncrementIteration(nodeID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := "while_" + nodeID
	c.IterationCounts[key]++
	return c.IterationCounts[key]
}

// CurrentIteration returns the loop's iteration count without mutating
// it, so callers can gate on the ceiling before deciding to increment.
func (c *ExecutionContext) CurrentIteration(nodeID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.IterationCounts["while_"+nodeID]
}

// ResetIteration clears the loop's iteration counter (on exit or error).
func (c *ExecutionContext) ResetIteration(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.IterationCounts, "while_"+nodeID)
}

// Log appends a structured entry to the execution's own log stream.
func (c *ExecutionContext) Log(level, message, nodeID string, data map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Logs = append(c.Logs, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		NodeID:    nodeID,
		Data:      data,
	})
}

// SetStatus transitions the context's status.
func (c *ExecutionContext) SetStatus(status models.ExecutionStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Status = status
}

// GetStatus reads the context's current status.
func (c *ExecutionContext) GetStatus() models.ExecutionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Status
}

// Clone returns a deep copy of the context via a JSON round-trip of its
// data (mirrors models.Workflow.Clone's pattern); the mutex is not
// copied, each clone gets its own.
func (c *ExecutionContext) Clone() (*ExecutionContext, error) {
	c.mu.RLock()
	snapshot := struct {
		Variables       map[string]interface{}
		Input           map[string]interface{}
		Output          map[string]interface{}
		ExecutionPath   []string
		History         []*models.NodeExecution
		IterationCounts map[string]int
		Logs            []LogEntry
		Status          models.ExecutionStatus
	}{c.Variables, c.Input, c.Output, c.ExecutionPath, c.History, c.IterationCounts, c.Logs, c.Status}
	c.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Variables       map[string]interface{}
		Input           map[string]interface{}
		Output          map[string]interface{}
		ExecutionPath   []string
		History         []*models.NodeExecution
		IterationCounts map[string]int
		Logs            []LogEntry
		Status          models.ExecutionStatus
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	clone := &ExecutionContext{
		ExecutionID:     c.ExecutionID,
		WorkflowID:      c.WorkflowID,
		Variables:       decoded.Variables,
		Input:           decoded.Input,
		Output:          decoded.Output,
		ExecutionPath:   decoded.ExecutionPath,
		History:         decoded.History,
		IterationCounts: decoded.IterationCounts,
		Logs:            decoded.Logs,
		Status:          decoded.Status,
	}
	if clone.IterationCounts == nil {
		clone.IterationCounts = make(map[string]int)
	}
	return clone, nil
}

// CreateSubContext returns a context that reuses the parent's
// Variables/Input/Output maps (and iteration counters) by reference
// rather than isolating them, so writes made through it are visible to
// the parent. Only ExecutionPath/History/Logs are kept separate so a
// partial trace can be discarded by the caller without MergeSubContext.
// WorkflowExecutor does not call it: while-loop bodies run directly on
// the run's own context.
func (c *ExecutionContext) CreateSubContext() *ExecutionContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &ExecutionContext{
		ExecutionID:     c.ExecutionID,
		WorkflowID:      c.WorkflowID,
		Variables:       c.Variables,
		Input:           c.Input,
		Output:          c.Output,
		IterationCounts: c.IterationCounts,
		Status:          c.Status,
	}
}

// MergeSubContext folds a sub-context's path/history/log entries back
// into the parent after a loop body iteration completes.
func (c *ExecutionContext) MergeSubContext(sub *ExecutionContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExecutionPath = append(c.ExecutionPath, sub.ExecutionPath...)
	c.History = append(c.History, sub.History...)
	c.Logs = append(c.Logs, sub.Logs...)
}

// numericSegment reports whether a dot-path segment looks like an
// integer list index. Nothing in this module calls it; the expression
// evaluator has its own bracket-index handling.
func numericSegment(seg string) (int, bool) {
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}

var _ = numericSegment
