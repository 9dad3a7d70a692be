package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twin/internal/adapters/detector"
	"go.trai.ch/twin/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			// Errors raised before the CLI flags are applied already use
			// the format the environment asks for.
			l := New()
			l.SetJSON(detector.DetectEnvironment() == detector.FormatJSON)
			return l, nil
		},
	})
}
