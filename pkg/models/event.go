package models

import "time"

// Event represents an immutable entry in an execution's event log.
// WorkflowExecutor does not produce these; it reports node lifecycle
// through the engine.ExecutionEvent callbacks on ExecutorOptions.
type Event struct {
	ID          string                 `json:"id"`
	ExecutionID string                 `json:"execution_id"`
	EventType   string                 `json:"event_type"`
	Sequence    int64                  `json:"sequence"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Event type constants (dot notation for hierarchical categorization).
const (
	EventTypeExecutionStarted   = "execution.started"
	EventTypeExecutionCompleted = "execution.completed"
	EventTypeExecutionFailed    = "execution.failed"
	EventTypeExecutionCancelled = "execution.cancelled"
	EventTypeExecutionWaiting   = "execution.waiting"
	EventTypeExecutionResumed   = "execution.resumed"

	EventTypeNodeStarted   = "node.started"
	EventTypeNodeCompleted = "node.completed"
	EventTypeNodeFailed    = "node.failed"
	EventTypeNodeWaiting   = "node.waiting"

	EventTypeConditionEvaluated = "condition.evaluated"
	EventTypeVariableSet        = "variable.set"
	EventTypeErrorOccurred      = "error.occurred"
)

// IsExecutionEvent returns true if the event is an execution-level event.
func (e *Event) IsExecutionEvent() bool {
	switch e.EventType {
	case EventTypeExecutionStarted, EventTypeExecutionCompleted, EventTypeExecutionFailed,
		EventTypeExecutionCancelled, EventTypeExecutionWaiting, EventTypeExecutionResumed:
		return true
	}
	return false
}

// IsNodeEvent returns true if the event is a node-level event.
func (e *Event) IsNodeEvent() bool {
	switch e.EventType {
	case EventTypeNodeStarted, EventTypeNodeCompleted, EventTypeNodeFailed, EventTypeNodeWaiting:
		return true
	}
	return false
}

// Validate validates the event structure.
func (e *Event) Validate() error {
	if e.ExecutionID == "" {
		return &ValidationError{Field: "execution_id", Message: "execution ID is required"}
	}
	if e.EventType == "" {
		return &ValidationError{Field: "event_type", Message: "event type is required"}
	}
	return nil
}

// GetNodeID extracts the node ID from the event payload if present.
func (e *Event) GetNodeID() string {
	if e.Payload == nil {
		return ""
	}
	if nodeID, ok := e.Payload["node_id"].(string); ok {
		return nodeID
	}
	return ""
}
