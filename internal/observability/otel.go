package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelTracer adapts an OpenTelemetry tracer to the Tracer contract so spans
// emitted by the load layer join whatever provider the host process set up.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer obtains a tracer from the global provider under the given
// instrumentation name.
func NewOTelTracer(name string) *OTelTracer {
	if name == "" {
		name = "hydrate"
	}
	return &OTelTracer{tracer: otel.Tracer(name)}
}

// Start implements the Tracer interface.
func (t *OTelTracer) Start(ctx context.Context, operation string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, operation,
		trace.WithAttributes(attribute.String("hydrate.operation", operation)))
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}
