// Package otel holds the span helpers and attribute keys used by partition
// runs and the library service.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys
const (
	AttrRunName        = attribute.Key("run.name")
	AttrCatalogType    = attribute.Key("catalog.type")
	AttrLibraryName    = attribute.Key("library.name")
	AttrLibraryConsume = attribute.Key("library.consume")
	AttrLibraryCount   = attribute.Key("library.count")
	AttrStopBefore     = attribute.Key("partition.stop_before")
	AttrResultCount    = attribute.Key("result.count")
	AttrRemainingCount = attribute.Key("partition.remaining")
)

// StartSpan starts a span on tracer. A nil tracer yields the span already in ctx,
// which is a no-op span when tracing is off.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// StartLibrarySpan starts a span for an operation on one library
func StartLibrarySpan(
	ctx context.Context,
	tracer trace.Tracer,
	name, library string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{AttrLibraryName.String(library)}, attrs...)
	return StartSpan(ctx, tracer, name, trace.WithAttributes(attrs...))
}

// SetResultCount records how many assets or libraries an operation returned
func SetResultCount(span trace.Span, n int) {
	if span != nil {
		span.SetAttributes(AttrResultCount.Int(n))
	}
}

// RecordError marks the span as failed. The status description is generic;
// the error text is kept on the exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
