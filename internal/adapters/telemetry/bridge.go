package telemetry

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/retest/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor, forwarding span starts to the
// renderer. Task completion reaches the renderer through the verdict
// stream, so span ends need no forwarding.
type Bridge struct {
	renderer ports.Renderer
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return
	}
	b.renderer.OnTaskStart(s.Name(), s.StartTime())
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(sdktrace.ReadOnlySpan) {}

// Shutdown does nothing; the bridge holds no resources.
func (b *Bridge) Shutdown(context.Context) error { return nil }

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(context.Context) error { return nil }
