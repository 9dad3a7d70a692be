package telemetry_test

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
	"go.trai.ch/twin/internal/adapters/telemetry"
	"go.trai.ch/twin/internal/core/ports"
	"go.trai.ch/twin/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestOTelTracer_StartAttributes(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "parallel analysis.summarize",
		ports.WithAttribute("twin.type", "analysis"),
		ports.WithAttribute("twin.fallback", false),
	)
	span.SetAttribute("twin.duration_ms", int64(12))
	span.SetAttribute("twin.selected", stringer("candidate"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	got := attrs(ended[0])
	assert.Equal(t, "analysis", got["twin.type"].AsString())
	assert.False(t, got["twin.fallback"].AsBool())
	assert.Equal(t, int64(12), got["twin.duration_ms"].AsInt64())
	assert.Equal(t, "candidate", got["twin.selected"].AsString())
}

func TestOTelTracer_RecordErrorAndLogEvents(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "analysis/original")
	_, err := span.Write([]byte("working\n"))
	require.NoError(t, err)
	span.RecordError(errors.New("boom"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)

	var names []string
	for _, ev := range ended[0].Events() {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "log")
}

func TestOTelTracer_WithRenderer(t *testing.T) {
	setupRecorder(t)

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	var logged []byte
	renderer.EXPECT().OnLog(gomock.Any(), gomock.Any()).
		Do(func(_ string, data []byte) { logged = append(logged, data...) }).
		MinTimes(1)

	tracer := telemetry.NewOTelTracer("test").WithRenderer(renderer)
	_, span := tracer.Start(context.Background(), "analysis/candidate")
	_, _ = span.Write([]byte("line one\n"))
	_, _ = span.Write([]byte("line two\n"))
	span.End()

	assert.Equal(t, "line one\nline two\n", string(logged))
}

type stringer string

func (s stringer) String() string { return string(s) }
