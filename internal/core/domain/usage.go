package domain

import (
	"context"
	"io"
)

type (
	usageSinkKey struct{}
	outputKey    struct{}
)

// UsageSink receives resource samples reported during one execution.
type UsageSink func(ResourceUsage)

// WithUsageSink returns a context whose ReportUsage calls reach sink.
func WithUsageSink(ctx context.Context, sink UsageSink) context.Context {
	return context.WithValue(ctx, usageSinkKey{}, sink)
}

// ReportUsage forwards a resource sample to the sink installed on ctx, if any.
func ReportUsage(ctx context.Context, usage ResourceUsage) {
	if sink, ok := ctx.Value(usageSinkKey{}).(UsageSink); ok && sink != nil {
		sink(usage)
	}
}

// WithOutput returns a context carrying w as the diagnostic output of the
// running execution.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// Output returns the diagnostic writer installed on ctx, or io.Discard.
func Output(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return io.Discard
}
