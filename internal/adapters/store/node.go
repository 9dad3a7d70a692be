package store

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twin/internal/core/ports"
)

// NodeID is the unique identifier for the metrics store Graft node.
const NodeID graft.ID = "adapter.metrics_store"

func init() {
	graft.Register(graft.Node[ports.MetricsStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.MetricsStore, error) {
			return NewStore(), nil
		},
	})
}
