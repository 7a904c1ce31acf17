package telemetry

import (
	"context"

	"go.trai.ch/retest/internal/core/ports"
)

// NoopTracer discards all spans, for callers that do not configure
// telemetry.
type NoopTracer struct{}

var _ ports.Tracer = NoopTracer{}

// Start returns an inert span.
func (NoopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End() {}

func (noopSpan) RecordError(error) {}

func (noopSpan) SetAttribute(string, any) {}
