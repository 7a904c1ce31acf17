package ports

import (
	"context"

	"go.trai.ch/retest/internal/core/domain"
)

// Executor materializes a task's work directory, launches the configured
// program and captures its outputs.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run stages the task under workRoot, spawns the child and waits for
	// it, honoring the task timeout and ctx cancellation via the
	// SIGTERM-grace-SIGKILL escalation. A non-zero child exit is not an
	// error; errors report staging, spawn or collection problems and are
	// normalized into failed verdicts by the caller.
	Run(ctx context.Context, task *domain.Task, rootDir, workRoot string) (*domain.Outcome, error)
}
