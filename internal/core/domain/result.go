package domain

import (
	"errors"
	"time"

	"go.trai.ch/zerr"
)

// Failure describes an unsuccessful implementation execution.
type Failure struct {
	// Message is the human-readable failure description.
	Message string
	// Detail carries upstream output such as a command's stderr. Optional.
	Detail string
	err    error
}

// NewFailure builds a Failure from an error. The error is kept for errors.Is.
func NewFailure(err error, detail string) *Failure {
	return &Failure{
		Message: err.Error(),
		Detail:  detail,
		err:     err,
	}
}

// Error implements error.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap exposes the original error.
func (f *Failure) Unwrap() error {
	return f.err
}

// OperationResult is the immutable outcome of one implementation execution.
// Exactly one of Payload or Failure is meaningful, as reported by OK.
type OperationResult struct {
	Identity Identity
	Payload  Value
	Failure  *Failure
	Duration time.Duration
	// Cached is set when the result was served from the result cache.
	Cached bool
	// Fallback is set when this result came from the second adaptive attempt.
	Fallback bool
}

// Succeeded builds a success result.
func Succeeded(id Identity, payload Value, d time.Duration) OperationResult {
	return OperationResult{Identity: id, Payload: payload, Duration: d}
}

// Failed builds a failure result. The error is wrapped as ErrImplementationFailure
// unless it already is one.
func Failed(id Identity, err error, d time.Duration) OperationResult {
	if !errors.Is(err, ErrImplementationFailure) {
		err = zerr.With(Tag(ErrImplementationFailure, err), "identity", id.String())
	}
	return OperationResult{Identity: id, Failure: NewFailure(err, failureDetail(err)), Duration: d}
}

// OK reports whether the execution succeeded.
func (r OperationResult) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil on success.
func (r OperationResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// ParallelResult holds both outcomes of a dual execution.
type ParallelResult struct {
	Original  OperationResult
	Candidate OperationResult
}

// Get returns the outcome for an identity.
func (p ParallelResult) Get(id Identity) OperationResult {
	if id == Original {
		return p.Original
	}
	return p.Candidate
}

// OK reports whether both sides succeeded.
func (p ParallelResult) OK() bool {
	return p.Original.OK() && p.Candidate.OK()
}

// Detailed is implemented by errors carrying upstream output worth surfacing.
type Detailed interface {
	Detail() string
}

func failureDetail(err error) string {
	var d Detailed
	if errors.As(err, &d) {
		return d.Detail()
	}
	return ""
}
