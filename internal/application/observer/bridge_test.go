package observer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agentengine/internal/application/observer"
	"github.com/flowforge/agentengine/pkg/engine"
)

func TestExecutorOptions_OnNodeComplete_NotifiesNodeCompletedWithoutError(t *testing.T) {
	mgr := observer.NewObserverManager()
	obs := observer.NewMockObserver("o1")
	require.NoError(t, mgr.Register(obs))

	opts := observer.ExecutorOptions(context.Background(), mgr)
	opts.OnNodeComplete(&engine.ExecutionEvent{ExecutionID: "e1", NodeID: "n1", DurationMs: 12})

	require.Eventually(t, func() bool { return obs.GetCallCount() == 1 }, time.Second, 5*time.Millisecond)
	ev := obs.GetEvents()[0]
	assert.Equal(t, observer.EventTypeNodeCompleted, ev.Type)
	assert.Equal(t, "n1", *ev.NodeID)
	assert.EqualValues(t, 12, *ev.DurationMs)
}

func TestExecutorOptions_OnNodeComplete_NotifiesNodeFailedWhenEventHasError(t *testing.T) {
	mgr := observer.NewObserverManager()
	obs := observer.NewMockObserver("o1")
	require.NoError(t, mgr.Register(obs))

	opts := observer.ExecutorOptions(context.Background(), mgr)
	opts.OnNodeComplete(&engine.ExecutionEvent{ExecutionID: "e1", NodeID: "n1", Error: errors.New("boom")})

	require.Eventually(t, func() bool { return obs.GetCallCount() == 1 }, time.Second, 5*time.Millisecond)
	ev := obs.GetEvents()[0]
	assert.Equal(t, observer.EventTypeNodeFailed, ev.Type)
	assert.Error(t, ev.Error)
}

func TestExecutorOptions_OnWaitingForApproval_NotifiesExecutionWaiting(t *testing.T) {
	mgr := observer.NewObserverManager()
	obs := observer.NewMockObserver("o1")
	require.NoError(t, mgr.Register(obs))

	opts := observer.ExecutorOptions(context.Background(), mgr)
	opts.OnWaitingForApproval("n1", "approve?")

	require.Eventually(t, func() bool { return obs.GetCallCount() == 1 }, time.Second, 5*time.Millisecond)
	ev := obs.GetEvents()[0]
	assert.Equal(t, observer.EventTypeExecutionWaiting, ev.Type)
	assert.Equal(t, "n1", *ev.NodeID)
	assert.Equal(t, "approve?", *ev.Message)
}
