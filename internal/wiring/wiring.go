// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/twin/internal/adapters/config"
	_ "go.trai.ch/twin/internal/adapters/logger"
	_ "go.trai.ch/twin/internal/adapters/shell"
	_ "go.trai.ch/twin/internal/adapters/store"
	// Register the app node.
	_ "go.trai.ch/twin/internal/app"
)
