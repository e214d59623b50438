package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTracer(t *testing.T) (*tracetest.InMemoryExporter, trace.Tracer) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp.Tracer("librarian-test")
}

func attrs(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	ctx, span := StartSpan(context.Background(), nil, "partition.Apply")
	require.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	assert.NotPanics(t, func() {
		SetResultCount(span, 3)
		RecordError(span, errors.New("ignored"))
		span.End()
	})

	_, span = StartLibrarySpan(context.Background(), nil, "service.GetLibrary", "Music")
	assert.False(t, span.SpanContext().IsValid())
}

func TestStartLibrarySpan(t *testing.T) {
	t.Parallel()

	exporter, tracer := newTracer(t)

	_, span := StartLibrarySpan(context.Background(), tracer, "partition.FilterLibrary", "Dialogue",
		AttrLibraryConsume.Bool(true))
	SetResultCount(span, 12)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "partition.FilterLibrary", spans[0].Name)

	got := attrs(spans[0])
	assert.Equal(t, "Dialogue", got[AttrLibraryName].AsString())
	assert.True(t, got[AttrLibraryConsume].AsBool())
	assert.Equal(t, int64(12), got[AttrResultCount].AsInt64())
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	exporter, tracer := newTracer(t)

	assert.NotPanics(t, func() { RecordError(nil, errors.New("no span")) })

	_, ok := tracer.Start(context.Background(), "ok")
	RecordError(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	RecordError(failed, errors.New("invalid regular expression"))
	failed.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Empty(t, spans[0].Events)

	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "operation failed", spans[1].Status.Description)
	require.Len(t, spans[1].Events, 1)
	assert.Equal(t, "exception", spans[1].Events[0].Name)
}
