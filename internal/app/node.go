package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/retest/internal/adapters/discovery"
	"go.trai.ch/retest/internal/adapters/logger"
	"go.trai.ch/retest/internal/core/ports"
	"go.trai.ch/retest/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the Components Graft
	// node resolved by the CLI entry point.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI
// layer needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{discovery.NodeID, scheduler.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*App, error) {
			discoverer, err := graft.Dep[ports.Discoverer](ctx)
			if err != nil {
				return nil, err
			}
			sched, err := graft.Dep[*scheduler.Scheduler](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(discoverer, sched, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: application, Logger: log}, nil
		},
	})
}
