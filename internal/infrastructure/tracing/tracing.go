// Package tracing adapts workflow execution events into OpenTelemetry
// spans: one span per run, with one child span per node dispatch.
package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowforge/agentengine/pkg/engine"
)

const instrumentationName = "github.com/flowforge/agentengine/pkg/executor"

// Tracer returns the engine's OpenTelemetry tracer. Callers that never
// configure a TracerProvider get otel's no-op implementation for free.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Instrument wraps opts' node lifecycle callbacks with spans: runName
// opens one root span for the whole run, and every node dispatch opens
// a child span closed on completion. Any callbacks already set on opts
// still fire, after the span bookkeeping.
//
// The returned context carries the root span and must be passed to
// WorkflowExecutor.Run. The returned func ends the root span and must
// be called once the run finishes, with the run's terminal error (if
// any) so it is recorded on the span.
func Instrument(ctx context.Context, opts *engine.ExecutorOptions, runName string) (context.Context, *engine.ExecutorOptions, func(error)) {
	tracer := Tracer()
	runCtx, rootSpan := tracer.Start(ctx, runName)

	spans := &nodeSpans{m: make(map[string]trace.Span)}

	prevStart := opts.OnNodeStart
	prevComplete := opts.OnNodeComplete

	wrapped := *opts
	wrapped.OnNodeStart = func(ev *engine.ExecutionEvent) {
		_, span := tracer.Start(runCtx, ev.NodeName,
			trace.WithAttributes(
				attribute.String("agentengine.node_id", ev.NodeID),
				attribute.String("agentengine.node_type", ev.NodeType),
				attribute.String("agentengine.execution_id", ev.ExecutionID),
			),
		)
		spans.store(ev.NodeID, span)

		if prevStart != nil {
			prevStart(ev)
		}
	}
	wrapped.OnNodeComplete = func(ev *engine.ExecutionEvent) {
		if span, ok := spans.take(ev.NodeID); ok {
			span.SetAttributes(attribute.Int64("agentengine.duration_ms", ev.DurationMs))
			if ev.Error != nil {
				span.RecordError(ev.Error)
				span.SetStatus(codes.Error, ev.Error.Error())
			}
			span.End()
		}

		if prevComplete != nil {
			prevComplete(ev)
		}
	}

	end := func(err error) {
		if err != nil {
			rootSpan.RecordError(err)
			rootSpan.SetStatus(codes.Error, err.Error())
		}
		rootSpan.End()
	}

	return runCtx, &wrapped, end
}

// nodeSpans tracks the open span per node ID. A while-loop body node
// dispatches more than once per run, so entries are removed on
// completion rather than kept keyed by a one-shot counter.
type nodeSpans struct {
	mu sync.Mutex
	m  map[string]trace.Span
}

func (s *nodeSpans) store(nodeID string, span trace.Span) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[nodeID] = span
}

func (s *nodeSpans) take(nodeID string) (trace.Span, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	span, ok := s.m[nodeID]
	if ok {
		delete(s.m, nodeID)
	}
	return span, ok
}
