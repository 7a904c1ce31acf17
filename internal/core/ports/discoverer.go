package ports

import (
	"context"

	"go.trai.ch/retest/internal/core/domain"
)

// DiscoveryRequest is the input of a discovery walk.
type DiscoveryRequest struct {
	// Root is the absolute root directory of the task tree.
	Root string

	// Base is the CLI-derived root config folded under every
	// __all__.toml contribution.
	Base domain.Config

	// Include and Exclude are root-relative globs. A task is kept when
	// the include set is empty or at least one include matches, and no
	// exclude matches. Dropped tasks are returned with Filtered set.
	Include, Exclude []string

	// WorkRoot is skipped during the walk when it lives under Root.
	WorkRoot string

	// Debug resolves each task's annotated config dump and logs it.
	Debug bool
}

// Discoverer walks the task tree and pairs each task file with its
// effective configuration.
//
//go:generate mockgen -source=discoverer.go -destination=mocks/mock_discoverer.go -package=mocks
type Discoverer interface {
	// Discover returns the prepared tasks in discovery order, stable
	// across runs for a fixed filesystem. Config and discovery errors are
	// fatal: they abort before any task runs.
	Discover(ctx context.Context, req DiscoveryRequest) ([]*domain.Task, error)
}
