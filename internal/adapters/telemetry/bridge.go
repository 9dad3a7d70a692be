package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.trai.ch/twin/internal/core/ports"
)

// fallbackKey marks the span of a second adaptive attempt.
const fallbackKey = attribute.Key("twin.fallback")

// errSpanFailed is reported for failed spans that carry no description.
var errSpanFailed = errors.New("execution failed")

// Bridge is an sdktrace.SpanProcessor that forwards span lifecycles to a
// ports.Renderer. Span and parent IDs are passed as hex strings.
type Bridge struct {
	renderer ports.Renderer
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a Bridge. A nil renderer turns every hook into a no-op.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart announces the span under its display name.
func (b *Bridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return
	}

	var parentID string
	if p := s.Parent(); p.IsValid() {
		parentID = p.SpanID().String()
	}

	b.renderer.OnStart(s.SpanContext().SpanID().String(), parentID, displayName(s.Name(), s.Attributes()), s.StartTime())
}

// OnEnd reports completion together with the span's failure, if any.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return
	}

	b.renderer.OnComplete(s.SpanContext().SpanID().String(), s.EndTime(), spanError(s))
}

// ForceFlush prints output the renderer still buffers.
func (b *Bridge) ForceFlush(_ context.Context) error {
	if b.renderer == nil {
		return nil
	}
	return b.renderer.Flush()
}

// Shutdown flushes the renderer.
func (b *Bridge) Shutdown(ctx context.Context) error {
	return b.ForceFlush(ctx)
}

func displayName(name string, attrs []attribute.KeyValue) string {
	for _, kv := range attrs {
		if kv.Key == fallbackKey && kv.Value.AsBool() {
			return name + " (fallback)"
		}
	}
	return name
}

// spanError prefers the status description and falls back to the message of
// the last recorded exception.
func spanError(s sdktrace.ReadOnlySpan) error {
	if s.Status().Code != codes.Error {
		return nil
	}
	if desc := s.Status().Description; desc != "" {
		return errors.New(desc)
	}

	events := s.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name != semconv.ExceptionEventName {
			continue
		}
		for _, kv := range events[i].Attributes {
			if kv.Key == semconv.ExceptionMessageKey {
				return errors.New(kv.Value.AsString())
			}
		}
	}
	return errSpanFailed
}
