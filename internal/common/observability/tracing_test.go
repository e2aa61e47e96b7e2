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
	"go.uber.org/zap/zaptest"
)

func TestStartSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "generate-qris", attribute.String("orderId", "ORD-1"))
	EndSpan(span, errors.New("redis down"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "generate-qris", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("orderId", "ORD-1"))
}

func TestNew_WithoutJaeger(t *testing.T) {
	o := New(Config{ServiceName: "qris-workers-test"}, zaptest.NewLogger(t))
	require.NotNil(t, o.tracerProvider)

	o.RecordJobProcessed(context.Background(), "generate-qris", "completed")
	o.Shutdown()
}
