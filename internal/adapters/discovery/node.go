package discovery

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/retest/internal/adapters/config"
	"go.trai.ch/retest/internal/adapters/logger"
	"go.trai.ch/retest/internal/core/ports"
)

// NodeID is the unique identifier for the discoverer Graft node.
const NodeID graft.ID = "adapter.discoverer"

func init() {
	graft.Register(graft.Node[ports.Discoverer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Discoverer, error) {
			loader, err := graft.Dep[*config.Loader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWalker(loader, log), nil
		},
	})
}
