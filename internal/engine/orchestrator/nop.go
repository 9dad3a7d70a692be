package orchestrator

import (
	"context"

	"go.trai.ch/twin/internal/core/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Info(string)  {}
func (nopLogger) Warn(string)  {}
func (nopLogger) Error(error)  {}

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) End()                        {}
func (nopSpan) RecordError(error)           {}
func (nopSpan) SetAttribute(string, any)    {}
func (nopSpan) Write(p []byte) (int, error) { return len(p), nil }
