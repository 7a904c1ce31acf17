package ports

import "go.trai.ch/retest/internal/core/domain"

// Asserter evaluates a task's assertion block against its captured
// outputs.
//
//go:generate mockgen -source=asserter.go -destination=mocks/mock_asserter.go -package=mocks
type Asserter interface {
	// Evaluate returns every collected failure in evaluation order:
	// exit code first, then each golden entry's equal, match and value
	// specs. Evaluation never short-circuits.
	Evaluate(task *domain.Task, out *domain.Outcome) []domain.Failure
}
