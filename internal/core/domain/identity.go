// Package domain contains the core types of the dual-implementation executor.
package domain

// Identity names one of the two interchangeable implementations of a type.
type Identity string

const (
	// Original is the conservative, established implementation.
	Original Identity = "original"
	// Candidate is the experimental alternative under evaluation.
	Candidate Identity = "candidate"
)

// Identities lists both identities in reporting order.
var Identities = [2]Identity{Original, Candidate}

// String returns the identity name.
func (i Identity) String() string {
	return string(i)
}

// Other returns the opposite identity.
func (i Identity) Other() Identity {
	if i == Original {
		return Candidate
	}
	return Original
}

// Valid reports whether i is Original or Candidate.
func (i Identity) Valid() bool {
	return i == Original || i == Candidate
}

// ParseIdentity converts a string into an Identity.
func ParseIdentity(s string) (Identity, error) {
	id := Identity(s)
	if !id.Valid() {
		return "", Annotate(ErrInvalidIdentity, "identity", s)
	}
	return id, nil
}

// Mode selects how the orchestrator dispatches a call.
type Mode string

const (
	// ModeParallel runs both implementations and compares their outputs.
	ModeParallel Mode = "parallel"
	// ModeAdaptive runs the implementation chosen by the selection policy.
	ModeAdaptive Mode = "adaptive"
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeParallel, ModeAdaptive:
		return m, nil
	default:
		return "", Annotate(ErrInvalidMode, "mode", s)
	}
}
