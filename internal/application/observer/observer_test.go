package observer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowforge/agentengine/internal/application/observer"
)

func TestEventTypeFilter_NilWhenNoTypesGiven(t *testing.T) {
	filter := observer.NewEventTypeFilter()
	assert.Nil(t, filter)
}

func TestEventTypeFilter_ShouldNotify_MatchesOnlyAllowedTypes(t *testing.T) {
	filter := observer.NewEventTypeFilter(observer.EventTypeNodeFailed)
	assert.True(t, filter.ShouldNotify(observer.Event{Type: observer.EventTypeNodeFailed}))
	assert.False(t, filter.ShouldNotify(observer.Event{Type: observer.EventTypeNodeCompleted}))
}

func TestExecutionIDFilter_ShouldNotify_MatchesOnlyTargetExecution(t *testing.T) {
	filter := observer.NewExecutionIDFilter("e1")
	assert.True(t, filter.ShouldNotify(observer.Event{ExecutionID: "e1"}))
	assert.False(t, filter.ShouldNotify(observer.Event{ExecutionID: "e2"}))
}

func TestNodeIDFilter_PassesNonNodeEventsAndMatchesAllowedIDs(t *testing.T) {
	filter := observer.NewNodeIDFilter("n1")
	assert.True(t, filter.ShouldNotify(observer.Event{Type: observer.EventTypeExecutionStarted}))

	n1 := "n1"
	n2 := "n2"
	assert.True(t, filter.ShouldNotify(observer.Event{Type: observer.EventTypeNodeStarted, NodeID: &n1}))
	assert.False(t, filter.ShouldNotify(observer.Event{Type: observer.EventTypeNodeStarted, NodeID: &n2}))
}

func TestCompoundEventFilter_RequiresAllSubFiltersToPass(t *testing.T) {
	typeFilter := observer.NewEventTypeFilter(observer.EventTypeNodeFailed)
	execFilter := observer.NewExecutionIDFilter("e1")
	compound := observer.NewCompoundEventFilter(typeFilter, execFilter)

	assert.True(t, compound.ShouldNotify(observer.Event{Type: observer.EventTypeNodeFailed, ExecutionID: "e1"}))
	assert.False(t, compound.ShouldNotify(observer.Event{Type: observer.EventTypeNodeFailed, ExecutionID: "e2"}))
	assert.False(t, compound.ShouldNotify(observer.Event{Type: observer.EventTypeNodeCompleted, ExecutionID: "e1"}))
}

func TestCompoundEventFilter_IgnoresNilSubFiltersAndCollapsesToNilWhenAllNil(t *testing.T) {
	compound := observer.NewCompoundEventFilter(nil, nil)
	assert.Nil(t, compound)

	single := observer.NewCompoundEventFilter(nil, observer.NewExecutionIDFilter("e1"))
	assert.True(t, single.ShouldNotify(observer.Event{ExecutionID: "e1"}))
}
