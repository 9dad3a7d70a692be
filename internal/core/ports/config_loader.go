package ports

import "go.trai.ch/twin/internal/core/domain"

// ConfigLoader defines the interface for loading the twinfile.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the twinfile from cwd upwards and returns the workspace.
	Load(cwd string) (*domain.Workspace, error)

	// LoadFile parses the twinfile at path.
	LoadFile(path string) (*domain.Workspace, error)
}
