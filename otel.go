package pushdown

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handler phase names used in spans, metrics and logs.
const (
	phaseEnter = "on_enter"
	phaseState = "on_state"
	phaseLeave = "on_leave"
)

// startTickSpan creates the root span for one tick. Uses the global
// tracer; exporter wiring belongs to the host process. The caller is
// responsible for ending the span.
//
//nolint:spancheck // Span lifecycle managed by caller (factory pattern)
func startTickSpan(ctx context.Context, m *Machine, tick int64) (context.Context, trace.Span) {
	tracer := otel.Tracer("pushdown")
	ctx, span := tracer.Start(ctx, "pushdown.tick")
	span.SetAttributes(
		attribute.String("machine", m.name),
		attribute.String("machine_id", m.id),
		attribute.String("state", m.stack.current().desc.name),
		attribute.Int64("tick", tick),
		attribute.Int("depth", m.stack.depth()),
	)

	return ctx, span
}

// startHandlerSpan creates a child span for one handler phase. The caller
// is responsible for ending the span.
//
//nolint:spancheck // Span lifecycle managed by caller (factory pattern)
func startHandlerSpan(ctx context.Context, state, phase string) (context.Context, trace.Span) {
	tracer := otel.Tracer("pushdown")
	ctx, span := tracer.Start(ctx, "pushdown."+phase)
	span.SetAttributes(
		attribute.String("state", state),
		attribute.String("phase", phase),
	)

	return ctx, span
}

// finishSpan records the error, sets the span status and ends the span.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "completed")
	}

	span.End()
}
