package ports

import "go.trai.ch/twin/internal/core/domain"

// ImplementationFactory turns a configured command spec into a constructor
// the orchestrator can register.
//
//go:generate mockgen -source=factory.go -destination=mocks/mock_factory.go -package=mocks
type ImplementationFactory interface {
	// Constructor returns a constructor building an implementation for spec.
	Constructor(spec domain.CommandSpec) domain.Constructor
}
