// Package ports defines the core interfaces for the application.
package ports

//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks

// Logger defines the interface for structured application logging.
type Logger interface {
	// Debug logs a diagnostic message. It is suppressed unless verbose output is enabled.
	Debug(msg string)
	// Info logs an informational message.
	Info(msg string)
	// Warn logs a warning message.
	Warn(msg string)
	// Error logs an error, rendering its cause chain.
	Error(err error)
}
