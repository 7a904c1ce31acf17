package assert

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/retest/internal/core/ports"
)

// NodeID is the unique identifier for the assertion engine Graft node.
const NodeID graft.ID = "engine.asserter"

func init() {
	graft.Register(graft.Node[ports.Asserter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Asserter, error) {
			return NewEngine(), nil
		},
	})
}
