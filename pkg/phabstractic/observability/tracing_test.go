package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func attrString(stub tracetest.SpanStub, key string) string {
	for _, a := range stub.Attributes {
		if string(a.Key) == key {
			return a.Value.AsString()
		}
	}
	return ""
}

func TestStartDispatchSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx := context.Background()
	newCtx, span := sm.StartDispatchSpan(ctx, "conduit", "evt-1")
	require.NotNil(t, span)
	assert.NotEqual(t, ctx, newCtx)
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "phabstractic.dispatch.conduit", spans[0].Name)
	assert.Equal(t, "conduit", attrString(spans[0], "component"))
	assert.Equal(t, "evt-1", attrString(spans[0], "event.id"))
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func TestNestedDispatchSpans(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, outer := sm.StartDispatchSpan(context.Background(), "aggregator", "evt-1")
	_, inner := sm.StartDispatchSpan(ctx, "conduit", "evt-1")
	inner.End()
	outer.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	var innerStub, outerStub tracetest.SpanStub
	for _, s := range spans {
		switch s.Name {
		case "phabstractic.dispatch.conduit":
			innerStub = s
		case "phabstractic.dispatch.aggregator":
			outerStub = s
		}
	}
	assert.Equal(t, outerStub.SpanContext.SpanID(), innerStub.Parent.SpanID())
}

func TestEndSpanWithError(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	_, span := sm.StartDispatchSpan(context.Background(), "queue", "evt-2")
	sm.EndSpanWithError(span, errors.New("handler exploded"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "handler exploded", spans[0].Status.Description)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)

	// nil span is tolerated
	sm.EndSpanWithError(nil, nil)
}

func TestAddSpanEvent(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, span := sm.StartDispatchSpan(context.Background(), "queue", "evt-3")
	sm.AddSpanEvent(ctx, "propagation.halted", attribute.Int("skipped", 2))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "propagation.halted", spans[0].Events[0].Name)

	// no span in context: nothing happens
	sm.AddSpanEvent(context.Background(), "ignored")
}
