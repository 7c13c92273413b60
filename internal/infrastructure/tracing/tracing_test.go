package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agentengine/pkg/engine"
)

func TestInstrument_WrapsCallbacksWithoutPanicking(t *testing.T) {
	var started, completed []string
	opts := engine.DefaultExecutorOptions()
	opts.OnNodeStart = func(ev *engine.ExecutionEvent) { started = append(started, ev.NodeID) }
	opts.OnNodeComplete = func(ev *engine.ExecutionEvent) { completed = append(completed, ev.NodeID) }

	runCtx, wrapped, end := Instrument(context.Background(), opts, "workflow.run test")
	require.NotNil(t, runCtx)
	require.NotNil(t, wrapped)

	wrapped.OnNodeStart(&engine.ExecutionEvent{NodeID: "n1", NodeName: "first", NodeType: "start"})
	wrapped.OnNodeComplete(&engine.ExecutionEvent{NodeID: "n1", DurationMs: 5})
	end(nil)

	assert.Equal(t, []string{"n1"}, started)
	assert.Equal(t, []string{"n1"}, completed)
}

func TestInstrument_RecordsNodeAndRunErrors(t *testing.T) {
	opts := engine.DefaultExecutorOptions()
	_, wrapped, end := Instrument(context.Background(), opts, "workflow.run test")

	wrapped.OnNodeStart(&engine.ExecutionEvent{NodeID: "n1"})
	wrapped.OnNodeComplete(&engine.ExecutionEvent{NodeID: "n1", Error: errors.New("node failed")})
	end(errors.New("run failed"))
}

func TestInstrument_DropsUnstartedNodeComplete(t *testing.T) {
	opts := engine.DefaultExecutorOptions()
	_, wrapped, end := Instrument(context.Background(), opts, "workflow.run test")

	assert.NotPanics(t, func() {
		wrapped.OnNodeComplete(&engine.ExecutionEvent{NodeID: "never-started"})
	})
	end(nil)
}
