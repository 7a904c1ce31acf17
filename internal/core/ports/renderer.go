package ports

import (
	"context"
	"time"

	"go.trai.ch/retest/internal/core/domain"
)

// Renderer is the abstraction for result output. It decouples the verdict
// stream from presentation, so the same events can drive the linear CI
// output or any richer surface.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to flush buffered output and shut down.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlan is called once after discovery with the admitted task count
	// and the run root.
	OnPlan(total int, root string)

	// OnTaskStart is called when a task is admitted.
	OnTaskStart(relPath string, start time.Time)

	// OnVerdict streams one task's outcome, in completion order.
	OnVerdict(v domain.Verdict)

	// OnTaskOutput forwards a failing task's captured streams. Only
	// called for tasks configured with print-errs.
	OnTaskOutput(relPath string, stdout, stderr []byte)

	// OnSummary is called once after every verdict, with the run totals
	// and the verdicts restored to discovery order.
	OnSummary(s domain.Summary, verdicts []domain.Verdict)
}
