package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("taskflow")

// StartRun opens the root span for one RunGraph invocation. Callers must
// End() the returned span. No exporter is registered by this library
// itself; if the embedding application hasn't configured an OpenTelemetry
// SDK, these calls are a cheap no-op.
func StartRun(ctx context.Context, runID string, taskCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "taskflow.run", trace.WithAttributes(
		attribute.String("taskflow.run_id", runID),
		attribute.Int("taskflow.task_count", taskCount),
	))
}

// StartTask opens a span for a single task dispatch, nested under the
// run's root span via ctx.
func StartTask(ctx context.Context, name string, id int, definitionHash string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "taskflow.task", trace.WithAttributes(
		attribute.String("taskflow.task_name", name),
		attribute.Int("taskflow.task_id", id),
		attribute.String("taskflow.definition_hash", definitionHash),
	))
}

// EndOK marks a span successful.
func EndOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
	span.End()
}

// EndErr records err on span and marks it failed.
func EndErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
