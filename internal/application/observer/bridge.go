package observer

import (
	"context"

	"github.com/flowforge/agentengine/pkg/engine"
)

// ExecutorOptions builds an engine.ExecutorOptions whose node and
// approval callbacks forward into the manager's registered observers.
// Callers still set LLMProvider/VectorStoreProvider/MCPProvider and the
// limit fields on the returned options themselves.
func ExecutorOptions(ctx context.Context, mgr *ObserverManager) *engine.ExecutorOptions {
	opts := engine.DefaultExecutorOptions()

	opts.OnNodeStart = func(ev *engine.ExecutionEvent) {
		mgr.Notify(ctx, toObserverEvent(EventTypeNodeStarted, ev))
	}
	opts.OnNodeComplete = func(ev *engine.ExecutionEvent) {
		eventType := EventTypeNodeCompleted
		if ev.Error != nil {
			eventType = EventTypeNodeFailed
		}
		mgr.Notify(ctx, toObserverEvent(eventType, ev))
	}
	opts.OnWaitingForApproval = func(nodeID, prompt string) {
		msg := prompt
		mgr.Notify(ctx, Event{
			Type:    EventTypeExecutionWaiting,
			NodeID:  &nodeID,
			Message: &msg,
		})
	}

	return opts
}

func toObserverEvent(eventType EventType, ev *engine.ExecutionEvent) Event {
	var errPtr error
	if ev.Error != nil {
		errPtr = ev.Error
	}
	duration := ev.DurationMs
	nodeID := ev.NodeID
	nodeName := ev.NodeName
	nodeType := ev.NodeType

	return Event{
		Type:        eventType,
		ExecutionID: ev.ExecutionID,
		WorkflowID:  ev.WorkflowID,
		Timestamp:   ev.Timestamp,
		NodeID:      &nodeID,
		NodeName:    &nodeName,
		NodeType:    &nodeType,
		Status:      ev.Status,
		Error:       errPtr,
		DurationMs:  &duration,
	}
}
