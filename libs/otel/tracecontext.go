package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TraceContextStrings serializes the current trace context so the outbox can
// store it alongside the event row.
func TraceContextStrings(ctx context.Context) (traceparent string, tracestate string) {
	mc := make(propagation.MapCarrier, 2)
	otel.GetTextMapPropagator().Inject(ctx, mc)
	return mc.Get("traceparent"), mc.Get("tracestate")
}

// ContextWithTraceContext restores a trace context stored by
// TraceContextStrings, linking the publish span back to the request that
// wrote the event.
func ContextWithTraceContext(ctx context.Context, traceparent string, tracestate string) context.Context {
	if traceparent == "" && tracestate == "" {
		return ctx
	}
	mc := propagation.MapCarrier{
		"traceparent": traceparent,
		"tracestate":  tracestate,
	}
	return otel.GetTextMapPropagator().Extract(ctx, mc)
}
