package ports

import "time"

// Renderer receives execution events derived from finished and started spans.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnStart is called when an execution span begins.
	// spanID: unique identifier for this execution
	// parentID: spanID of the enclosing orchestrator call (empty if root)
	// name: human-readable span name
	OnStart(spanID, parentID, name string, startTime time.Time)

	// OnLog is called when an implementation emits diagnostic output.
	OnLog(spanID string, data []byte)

	// OnComplete is called when an execution span ends.
	// err is nil if the execution succeeded.
	OnComplete(spanID string, endTime time.Time, err error)

	// Flush writes out any buffered output.
	Flush() error
}
