package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/retest/internal/adapters/logger"
	"go.trai.ch/retest/internal/adapters/runner"
	"go.trai.ch/retest/internal/adapters/telemetry"
	"go.trai.ch/retest/internal/core/ports"
	"go.trai.ch/retest/internal/engine/assert"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{runner.NodeID, assert.NodeID, telemetry.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			asserter, err := graft.Dep[ports.Asserter](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewScheduler(executor, asserter, tracer, log), nil
		},
	})
}
