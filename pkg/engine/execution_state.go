package engine

import (
	"sync"
	"time"

	"github.com/flowforge/agentengine/pkg/models"
)

// NodeRuntime tracks the bookkeeping a WorkflowExecutor needs per node
// dispatch that the execution context itself does not own: wall-clock
// timing and the most recent status/error, used to build the
// NodeExecution records appended to ExecutionContext.History.
// Thread-safe via RWMutex, mirroring the teacher's per-node tracking
// pattern.
type NodeRuntime struct {
	mu         sync.RWMutex
	status     map[string]models.NodeExecutionStatus
	startTimes map[string]time.Time
	endTimes   map[string]time.Time
	errors     map[string]error
}

// NewNodeRuntime creates an empty tracker.
func NewNodeRuntime() *NodeRuntime {
	return &NodeRuntime{
		status:     make(map[string]models.NodeExecutionStatus),
		startTimes: make(map[string]time.Time),
		endTimes:   make(map[string]time.Time),
		errors:     make(map[string]error),
	}
}

// Start records a node dispatch beginning now.
func (r *NodeRuntime) Start(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[nodeID] = models.NodeExecutionStatusRunning
	r.startTimes[nodeID] = time.Now()
}

// Finish records a node dispatch ending now with the given status and
// optional error.
func (r *NodeRuntime) Finish(nodeID string, status models.NodeExecutionStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[nodeID] = status
	r.endTimes[nodeID] = time.Now()
	if err != nil {
		r.errors[nodeID] = err
	}
}

// Status returns the most recently recorded status for a node.
func (r *NodeRuntime) Status(nodeID string) (models.NodeExecutionStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.status[nodeID]
	return s, ok
}

// DurationMs returns the elapsed time between Start and Finish for a
// node, or 0 if either hasn't been recorded.
func (r *NodeRuntime) DurationMs(nodeID string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	start, ok := r.startTimes[nodeID]
	if !ok {
		return 0
	}
	end, ok := r.endTimes[nodeID]
	if !ok {
		return 0
	}
	return end.Sub(start).Milliseconds()
}
