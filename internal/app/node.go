package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twin/internal/adapters/config"
	"go.trai.ch/twin/internal/adapters/logger"
	"go.trai.ch/twin/internal/adapters/shell"
	"go.trai.ch/twin/internal/adapters/store"
	"go.trai.ch/twin/internal/core/ports"
)

// NodeID is the unique identifier for the application Graft node.
const NodeID graft.ID = "app"

// Components holds the fully wired application and the logger used to report
// errors that escape it.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			logger.NodeID,
			store.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			factory, err := graft.Dep[ports.ImplementationFactory](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			metrics, err := graft.Dep[ports.MetricsStore](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:    New(loader, factory, log, metrics),
				Logger: log,
			}, nil
		},
	})
}
