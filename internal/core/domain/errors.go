package domain

import "go.trai.ch/zerr"

var (
	// ErrUnregisteredType is returned when an operation targets a type name that was never registered.
	ErrUnregisteredType = zerr.New("implementation type not registered")

	// ErrTypeAlreadyRegistered is returned when a type name is registered twice without Unregister.
	ErrTypeAlreadyRegistered = zerr.New("implementation type already registered")

	// ErrInvalidRegistration is returned when a registration is missing a type name or a constructor.
	ErrInvalidRegistration = zerr.New("invalid registration")

	// ErrUnsupportedOperation is returned when the constructed implementation has no operation with the requested name.
	ErrUnsupportedOperation = zerr.New("operation not supported by implementation")

	// ErrNotCacheable is returned when call arguments cannot be serialized into a cache key.
	ErrNotCacheable = zerr.New("arguments are not cacheable")

	// ErrImplementationFailure wraps whatever an invoked implementation returned or panicked with.
	ErrImplementationFailure = zerr.New("implementation failed")

	// ErrConstructFailed is returned when an implementation constructor fails.
	ErrConstructFailed = zerr.New("failed to construct implementation")

	// ErrInvalidIdentity is returned when an identity string is neither "original" nor "candidate".
	ErrInvalidIdentity = zerr.New("invalid implementation identity, expected 'original' or 'candidate'")

	// ErrInvalidMode is returned when an execution mode is neither "parallel" nor "adaptive".
	ErrInvalidMode = zerr.New("invalid execution mode, expected 'parallel' or 'adaptive'")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no twinfile can be found.
	ErrConfigNotFound = zerr.New("could not find twin.yaml")

	// ErrInvalidSettings is returned when the settings block fails validation.
	ErrInvalidSettings = zerr.New("invalid settings")

	// ErrMissingImplementation is returned when a configured type lacks its original or candidate side.
	ErrMissingImplementation = zerr.New("type must define both original and candidate implementations")

	// ErrEmptyCommand is returned when an operation is configured without an argv.
	ErrEmptyCommand = zerr.New("operation command is empty")

	// ErrInvalidArgument is returned when a CLI argument cannot be decoded into a value.
	ErrInvalidArgument = zerr.New("invalid argument")

	// ErrCommandFailed is returned when a command-backed operation exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrInvalidCommandOutput is returned when a command-backed operation prints something other than one JSON document.
	ErrInvalidCommandOutput = zerr.New("command output is not a single JSON document")

	// ErrArgumentEncodeFailed is returned when arguments cannot be encoded for a command-backed operation.
	ErrArgumentEncodeFailed = zerr.New("failed to encode arguments")

	// ErrStoreCreateFailed is returned when the state directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create state directory")

	// ErrStoreReadFailed is returned when the persisted monitor state cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read monitor state")

	// ErrStoreUnmarshalFailed is returned when the persisted monitor state cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal monitor state")

	// ErrStoreMarshalFailed is returned when the monitor state cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal monitor state")

	// ErrStoreWriteFailed is returned when the monitor state cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write monitor state")

	// ErrExecutionFailed is returned by the CLI when the final outcome of a run is a failure.
	ErrExecutionFailed = zerr.New("execution failed")
)

// Annotate attaches metadata to a sentinel while keeping errors.Is matching it.
func Annotate(sentinel error, key string, value any) error {
	return zerr.With(zerr.Wrap(sentinel, ""), key, value)
}

// Tag marks cause with sentinel so errors.Is matches either of them.
func Tag(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &taggedError{sentinel: sentinel, cause: cause}
}

type taggedError struct {
	sentinel error
	cause    error
}

func (e *taggedError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *taggedError) Unwrap() []error {
	return []error{e.sentinel, e.cause}
}
