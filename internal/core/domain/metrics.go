package domain

import "time"

// ErrorRecord is one failed call as seen by the monitor.
type ErrorRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// ResourceUsage is a resource sample reported by an implementation for one call.
type ResourceUsage struct {
	CPUTime     time.Duration `json:"cpuTime"`
	MaxRSSBytes int64         `json:"maxRssBytes"`
}

// LatencyStats summarizes latency samples.
type LatencyStats struct {
	Count int           `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Mean  time.Duration `json:"mean"`
	P95   time.Duration `json:"p95"`
}

// UsageStats summarizes resource samples.
type UsageStats struct {
	Samples      int           `json:"samples"`
	TotalCPUTime time.Duration `json:"totalCpuTime"`
	PeakRSSBytes int64         `json:"peakRssBytes"`
	MeanCPUTime  time.Duration `json:"meanCpuTime"`
}

// IdentityMetrics is the per-identity view of a MetricsSnapshot.
type IdentityMetrics struct {
	Calls     int `json:"calls"`
	Successes int `json:"successes"`
	// Errors holds the most recent failures, oldest first.
	Errors []ErrorRecord `json:"errors"`
	// ErrorsDropped counts failures evicted from the bounded error history.
	ErrorsDropped int             `json:"errorsDropped"`
	Latencies     []time.Duration `json:"latencies"`
	SuccessRate   float64         `json:"successRate"`
	Latency       LatencyStats    `json:"latency"`
	Usage         UsageStats      `json:"usage"`
}

// Failures returns the number of failed calls.
func (m IdentityMetrics) Failures() int {
	return m.Calls - m.Successes
}

// MetricsSnapshot is a point-in-time copy of the monitor's state.
type MetricsSnapshot struct {
	StartedAt     time.Time       `json:"startedAt"`
	LastReset     time.Time       `json:"lastReset,omitzero"`
	ParallelCalls int             `json:"parallelCalls"`
	Original      IdentityMetrics `json:"original"`
	Candidate     IdentityMetrics `json:"candidate"`
}

// For returns the metrics of one identity.
func (s MetricsSnapshot) For(id Identity) IdentityMetrics {
	if id == Original {
		return s.Original
	}
	return s.Candidate
}

// IdentityState is the persisted raw state of one identity.
type IdentityState struct {
	Calls         int             `json:"calls"`
	Successes     int             `json:"successes"`
	Errors        []ErrorRecord   `json:"errors"`
	ErrorsDropped int             `json:"errorsDropped"`
	Latencies     []time.Duration `json:"latencies"`
	Usage         []ResourceUsage `json:"usage"`
}

// MonitorState is the raw monitor state, used to persist metrics across runs.
type MonitorState struct {
	StartedAt     time.Time                  `json:"startedAt"`
	LastReset     time.Time                  `json:"lastReset,omitzero"`
	ParallelCalls int                        `json:"parallelCalls"`
	Identities    map[Identity]IdentityState `json:"identities"`
}
