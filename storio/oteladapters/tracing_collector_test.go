package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/MrZLO/storio/storio/oteladapters"
)

func newTestTracer() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	exporter, collector := newTestTracer()

	attrs := map[string]string{
		"operation": "get",
		"table":     "users",
		"dialect":   "postgres",
	}

	ctx, spanCtx := collector.StartSpan(context.Background(), "storio.get_cursor", attrs)

	assert.NotNil(t, ctx)
	assert.NotNil(t, spanCtx)

	collector.FinishSpan(spanCtx, "success", map[string]string{"result": "ok"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "storio.get_cursor", span.Name)

	assertSpanHasAttribute(t, span, "operation", "get")
	assertSpanHasAttribute(t, span, "table", "users")
	assertSpanHasAttribute(t, span, "dialect", "postgres")
	assertSpanHasAttribute(t, span, "result", "ok")

	assert.Equal(t, codes.Ok, span.Status.Code)
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	exporter, collector := newTestTracer()

	tests := []struct {
		status              string
		expectedCode        codes.Code
		expectedDescription string
	}{
		{"ok", codes.Ok, ""},
		{"success", codes.Ok, ""},
		{"completed", codes.Ok, ""},
		{"error", codes.Error, "Operation failed"},
		{"failed", codes.Error, "Operation failed"},
		{"failure", codes.Error, "Operation failed"},
		{"cancelled", codes.Error, "Operation cancelled"},
		{"canceled", codes.Error, "Operation cancelled"},
		{"timeout", codes.Error, "Operation timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			exporter.Reset()

			_, spanCtx := collector.StartSpan(context.Background(), "test", nil)
			collector.FinishSpan(spanCtx, tt.status, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)

			span := spans[0]
			assert.Equal(t, tt.expectedCode, span.Status.Code)
			assert.Equal(t, tt.expectedDescription, span.Status.Description)
		})
	}
}

func Test_TracingCollector_UnknownStatusBecomesAttribute(t *testing.T) {
	exporter, collector := newTestTracer()

	_, spanCtx := collector.StartSpan(context.Background(), "test", nil)
	collector.FinishSpan(spanCtx, "unknown_status", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	assertSpanHasAttribute(t, spans[0], "status", "unknown_status")
}

func Test_TracingCollector_NilAttributes(t *testing.T) {
	exporter, collector := newTestTracer()

	_, spanCtx := collector.StartSpan(context.Background(), "test-nil", nil)
	collector.FinishSpan(spanCtx, "ok", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func Test_TracingCollector_ContextPropagation(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tracer := provider.Tracer("test")

	collector := oteladapters.NewTracingCollector(tracer)

	parentCtx, parentSpan := tracer.Start(context.Background(), "parent-operation")
	defer parentSpan.End()

	childCtx, childSpanCtx := collector.StartSpan(parentCtx, "child-operation", nil)
	collector.FinishSpan(childSpanCtx, "ok", nil)

	assert.NotEqual(t, parentCtx, childCtx)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	childSpan := spans[0]
	assert.Equal(t, "child-operation", childSpan.Name)
	assert.Equal(t, parentSpan.SpanContext().SpanID(), childSpan.Parent.SpanID())
}

func Test_TracingCollector_ForeignSpanContextIsIgnored(t *testing.T) {
	exporter, collector := newTestTracer()

	assert.NotPanics(t, func() {
		collector.FinishSpan(&foreignSpanContext{}, "ok", map[string]string{"test": "value"})
	})

	assert.Len(t, exporter.GetSpans(), 0)
}

func Test_OTelSpanContext_Methods(t *testing.T) {
	exporter, collector := newTestTracer()

	_, spanCtx := collector.StartSpan(context.Background(), "test-span", nil)

	spanCtx.SetStatus("success")
	spanCtx.AddAttribute("test_key", "test_value")

	collector.FinishSpan(spanCtx, "completed", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "test-span", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanHasAttribute(t, span, "test_key", "test_value")
}

// foreignSpanContext implements storio.SpanContext but is not *OTelSpanContext.
type foreignSpanContext struct{}

func (m *foreignSpanContext) SetStatus(_ string)        {}
func (m *foreignSpanContext) AddAttribute(_, _ string) {}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	found := false
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) && attr.Value.AsString() == expectedValue {
			found = true
			break
		}
	}

	assert.True(t, found, "span should have attribute %s=%s", key, expectedValue)
}
