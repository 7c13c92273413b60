package engine

import "time"

// ExecutionEvent is the lifecycle notification passed to the
// ExecutorOptions node callbacks (OnNodeStart, OnNodeComplete). It is
// a lighter-weight sibling of
// models.Event, built for direct Go-level observation rather than
// durable storage.
type ExecutionEvent struct {
	Type        string
	ExecutionID string
	WorkflowID  string
	NodeID      string
	NodeName    string
	NodeType    string
	Status      string
	Error       error
	Output      interface{}
	DurationMs  int64
	Message     string
	Timestamp   time.Time
	Input       map[string]interface{}
	Variables   map[string]interface{}
}
