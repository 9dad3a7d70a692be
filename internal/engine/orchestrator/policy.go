package orchestrator

import "go.trai.ch/twin/internal/core/domain"

// rateEpsilon absorbs floating point noise when comparing success rates.
const rateEpsilon = 1e-9

// Reason explains a selection decision.
type Reason string

const (
	// ReasonInsufficientData means an identity has fewer calls than the minimum sample count.
	ReasonInsufficientData Reason = "insufficient data"
	// ReasonCandidateDominates means the candidate is at least as reliable and at least as fast.
	ReasonCandidateDominates Reason = "candidate as reliable and as fast"
	// ReasonCandidateFaster means the candidate trades a bounded loss of reliability for a large speedup.
	ReasonCandidateFaster Reason = "candidate faster within reliability margin"
	// ReasonOriginalPreferred means the candidate did not qualify.
	ReasonOriginalPreferred Reason = "original preferred"
)

// Decision is the outcome of the selection policy.
type Decision struct {
	Identity domain.Identity
	Reason   Reason
}

// Select chooses the identity that should serve the next adaptive call.
//
// The decision depends only on settings and the snapshot, and is recomputed
// on every call so preferences shift as metrics accumulate.
func Select(settings domain.Settings, snap domain.MetricsSnapshot) Decision {
	orig, cand := snap.Original, snap.Candidate

	if orig.Calls < settings.MinSamples || cand.Calls < settings.MinSamples {
		return Decision{Identity: settings.InsufficientData, Reason: ReasonInsufficientData}
	}

	oRate, cRate := orig.SuccessRate, cand.SuccessRate
	oLat, cLat := float64(orig.Latency.Mean), float64(cand.Latency.Mean)

	if cRate+rateEpsilon >= oRate && cLat <= oLat {
		return Decision{Identity: domain.Candidate, Reason: ReasonCandidateDominates}
	}
	if oRate-cRate <= settings.ReliabilityMargin+rateEpsilon && cLat <= settings.SpeedupFactor*oLat {
		return Decision{Identity: domain.Candidate, Reason: ReasonCandidateFaster}
	}
	return Decision{Identity: domain.Original, Reason: ReasonOriginalPreferred}
}
