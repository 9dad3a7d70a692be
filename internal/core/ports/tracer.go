package ports

import "context"

//go:generate mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks

// SpanConfig holds span creation options.
type SpanConfig struct {
	Attributes map[string]any
}

// SpanOption configures a span at creation.
type SpanOption func(*SpanConfig)

// WithAttribute sets an attribute when the span starts.
func WithAttribute(key string, value any) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any)
		}
		c.Attributes[key] = value
	}
}

// Span is a unit of traced work. Writes are recorded as span log output.
type Span interface {
	// End completes the span.
	End()
	// RecordError marks the span as failed.
	RecordError(err error)
	// SetAttribute attaches a key-value pair.
	SetAttribute(key string, value any)
	// Write records output produced while the span is active.
	Write(p []byte) (n int, err error)
}

// Tracer starts spans around orchestrated executions.
type Tracer interface {
	// Start opens a span as a child of any span found in ctx.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
}
