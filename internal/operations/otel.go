package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"descstats/internal/infrastructure"
)

// TracerName is the instrumentation scope of dataset spans.
const TracerName = "descstats.operations"

// datasetTracer opens one span per dataset stage and records its duration.
type datasetTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.Metrics
}

func newDatasetTracer(tracer trace.Tracer, metrics *infrastructure.Metrics) *datasetTracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &datasetTracer{tracer: tracer, metrics: metrics}
}

// start opens the span for stage (an engine name or "plots") on dataset.
func (t *datasetTracer) start(ctx context.Context, stage, dataset string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "dataset."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("dataset.name", dataset),
			attribute.String("dataset.stage", stage),
		),
	)
}

// finish closes span with err's outcome and records the stage duration.
func (t *datasetTracer) finish(ctx context.Context, span trace.Span, stage, dataset string, started time.Time, err error) {
	duration := time.Since(started)
	t.metrics.RecordDataset(ctx, stage, dataset, duration, err)

	span.SetAttributes(attribute.Float64("dataset.duration_seconds", duration.Seconds()))
	if err != nil {
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "dataset completed")
	}
	span.End()
}
