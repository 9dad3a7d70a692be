package telemetry

import (
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/twin/internal/core/ports"
)

// InstrumentationName is the tracer name used for orchestrator spans.
const InstrumentationName = "twin"

// Setup installs a global tracer provider that forwards span lifecycle events
// to renderer, and returns a tracer writing span output to the same renderer.
// The caller owns the provider and must shut it down.
func Setup(renderer ports.Renderer) (*OTelTracer, *sdktrace.TracerProvider) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(renderer)),
	)
	otel.SetTracerProvider(tp)
	return NewOTelTracer(InstrumentationName).WithRenderer(renderer), tp
}
