package observer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agentengine/internal/application/observer"
)

func TestObserverManager_Register_RejectsDuplicateName(t *testing.T) {
	mgr := observer.NewObserverManager()
	require.NoError(t, mgr.Register(observer.NewMockObserver("a")))
	err := mgr.Register(observer.NewMockObserver("a"))
	assert.Error(t, err)
	assert.Equal(t, 1, mgr.Count())
}

func TestObserverManager_Unregister_RemovesByName(t *testing.T) {
	mgr := observer.NewObserverManager()
	require.NoError(t, mgr.Register(observer.NewMockObserver("a")))
	require.NoError(t, mgr.Unregister("a"))
	assert.Equal(t, 0, mgr.Count())
	assert.Error(t, mgr.Unregister("a"))
}

func TestObserverManager_Notify_DeliversToAllObserversAsynchronously(t *testing.T) {
	mgr := observer.NewObserverManager()
	obsA := observer.NewMockObserver("a")
	obsB := observer.NewMockObserver("b")
	require.NoError(t, mgr.Register(obsA))
	require.NoError(t, mgr.Register(obsB))

	mgr.Notify(context.Background(), observer.Event{Type: observer.EventTypeExecutionStarted, ExecutionID: "e1"})

	assert.Eventually(t, func() bool {
		return obsA.GetCallCount() == 1 && obsB.GetCallCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestObserverManager_Notify_HonorsPerObserverFilter(t *testing.T) {
	mgr := observer.NewObserverManager()
	obs := observer.NewMockObserver("filtered")
	obs.SetFilter(observer.NewEventTypeFilter(observer.EventTypeExecutionFailed))
	require.NoError(t, mgr.Register(obs))

	mgr.Notify(context.Background(), observer.Event{Type: observer.EventTypeExecutionStarted})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, obs.GetCallCount())

	mgr.Notify(context.Background(), observer.Event{Type: observer.EventTypeExecutionFailed})
	assert.Eventually(t, func() bool {
		return obs.GetCallCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestObserverManager_Notify_RecoversFromObserverFailureWithoutPanicking(t *testing.T) {
	mgr := observer.NewObserverManager()
	obs := observer.NewMockObserver("flaky")
	obs.SetShouldFail(true, nil)
	require.NoError(t, mgr.Register(obs))

	assert.NotPanics(t, func() {
		mgr.Notify(context.Background(), observer.Event{Type: observer.EventTypeExecutionStarted})
	})
	assert.Eventually(t, func() bool {
		return obs.GetCallCount() == 1
	}, time.Second, 5*time.Millisecond)
}
