package ports

import "go.trai.ch/twin/internal/core/domain"

// MetricsStore persists monitor state between runs.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type MetricsStore interface {
	// Get loads the state stored under dir. Returns nil, nil if nothing was stored.
	Get(dir string) (*domain.MonitorState, error)

	// Put stores the state under dir.
	Put(dir string, state *domain.MonitorState) error
}
