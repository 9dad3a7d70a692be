// Package monitor accumulates per-implementation call statistics.
package monitor

import (
	"slices"
	"sync"
	"time"

	"go.trai.ch/twin/internal/core/domain"
)

// Monitor records call outcomes, latencies and resource usage per identity.
// All methods are safe for concurrent use.
type Monitor struct {
	now          func() time.Time
	errorHistory int

	mu        sync.RWMutex
	startedAt time.Time
	lastReset time.Time
	parallel  int
	stats     map[domain.Identity]*identityStats
}

type identityStats struct {
	calls     int
	successes int
	errors    []domain.ErrorRecord
	dropped   int
	latencies []time.Duration
	usage     []domain.ResourceUsage
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithErrorHistory bounds the number of errors kept per identity.
// Values below one keep a single error.
func WithErrorHistory(n int) Option {
	return func(m *Monitor) {
		m.errorHistory = max(n, 1)
	}
}

// New creates an empty Monitor stamped with the current time.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		now:          time.Now,
		errorHistory: domain.DefaultErrorHistory,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.startedAt = m.now()
	m.stats = newStats()
	return m
}

func newStats() map[domain.Identity]*identityStats {
	return map[domain.Identity]*identityStats{
		domain.Original:  {},
		domain.Candidate: {},
	}
}

// TrackCall records one execution of an identity.
// Negative durations are counted as calls but not sampled.
func (m *Monitor) TrackCall(id domain.Identity, success bool, d time.Duration, errDetail string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.statsFor(id)
	s.calls++
	if success {
		s.successes++
	} else {
		s.errors = append(s.errors, domain.ErrorRecord{Timestamp: m.now(), Message: errDetail})
		if over := len(s.errors) - m.errorHistory; over > 0 {
			s.errors = slices.Delete(s.errors, 0, over)
			s.dropped += over
		}
	}
	if d >= 0 {
		s.latencies = append(s.latencies, d)
	}
}

// TrackUsage records a resource sample for an identity.
func (m *Monitor) TrackUsage(id domain.Identity, usage domain.ResourceUsage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.statsFor(id)
	s.usage = append(s.usage, usage)
}

// TrackParallelInvocation counts one dual-execution round.
func (m *Monitor) TrackParallelInvocation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parallel++
}

// statsFor returns the stats of id. Must be called with m.mu held.
func (m *Monitor) statsFor(id domain.Identity) *identityStats {
	s, ok := m.stats[id]
	if !ok {
		s = &identityStats{}
		m.stats[id] = s
	}
	return s
}

// Snapshot returns a copy of the current metrics with derived statistics.
func (m *Monitor) Snapshot() domain.MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return domain.MetricsSnapshot{
		StartedAt:     m.startedAt,
		LastReset:     m.lastReset,
		ParallelCalls: m.parallel,
		Original:      m.stats[domain.Original].metrics(),
		Candidate:     m.stats[domain.Candidate].metrics(),
	}
}

func (s *identityStats) metrics() domain.IdentityMetrics {
	out := domain.IdentityMetrics{
		Calls:         s.calls,
		Successes:     s.successes,
		Errors:        slices.Clone(s.errors),
		ErrorsDropped: s.dropped,
		Latencies:     slices.Clone(s.latencies),
		Latency:       LatencyStatsOf(s.latencies),
		Usage:         usageStatsOf(s.usage),
	}
	if s.calls > 0 {
		out.SuccessRate = float64(s.successes) / float64(s.calls)
	}
	return out
}

// Reset clears all counters and samples. The start time is preserved.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats = newStats()
	m.parallel = 0
	m.lastReset = m.now()
}

// State exports the raw state for persistence.
func (m *Monitor) State() *domain.MonitorState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := &domain.MonitorState{
		StartedAt:     m.startedAt,
		LastReset:     m.lastReset,
		ParallelCalls: m.parallel,
		Identities:    make(map[domain.Identity]domain.IdentityState, len(m.stats)),
	}
	for id, s := range m.stats {
		state.Identities[id] = domain.IdentityState{
			Calls:         s.calls,
			Successes:     s.successes,
			Errors:        slices.Clone(s.errors),
			ErrorsDropped: s.dropped,
			Latencies:     slices.Clone(s.latencies),
			Usage:         slices.Clone(s.usage),
		}
	}
	return state
}

// Restore replaces the monitor's state with a previously exported one.
// The error history bound of this monitor is applied to the restored errors.
func (m *Monitor) Restore(state *domain.MonitorState) {
	if state == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !state.StartedAt.IsZero() {
		m.startedAt = state.StartedAt
	}
	m.lastReset = state.LastReset
	m.parallel = state.ParallelCalls
	m.stats = newStats()
	for id, is := range state.Identities {
		if !id.Valid() {
			continue
		}
		s := &identityStats{
			calls:     is.Calls,
			successes: is.Successes,
			errors:    slices.Clone(is.Errors),
			dropped:   is.ErrorsDropped,
			latencies: slices.Clone(is.Latencies),
			usage:     slices.Clone(is.Usage),
		}
		if over := len(s.errors) - m.errorHistory; over > 0 {
			s.errors = slices.Delete(s.errors, 0, over)
			s.dropped += over
		}
		m.stats[id] = s
	}
}

// LatencyStatsOf computes min, max, mean and 95th percentile of samples.
// The percentile is the sample at index floor(0.95*n) of the sorted list.
func LatencyStatsOf(samples []time.Duration) domain.LatencyStats {
	n := len(samples)
	if n == 0 {
		return domain.LatencyStats{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	idx := min(int(0.95*float64(n)), n-1)

	return domain.LatencyStats{
		Count: n,
		Min:   sorted[0],
		Max:   sorted[n-1],
		Mean:  sum / time.Duration(n),
		P95:   sorted[idx],
	}
}

func usageStatsOf(samples []domain.ResourceUsage) domain.UsageStats {
	if len(samples) == 0 {
		return domain.UsageStats{}
	}

	var out domain.UsageStats
	for _, u := range samples {
		out.TotalCPUTime += u.CPUTime
		out.PeakRSSBytes = max(out.PeakRSSBytes, u.MaxRSSBytes)
	}
	out.Samples = len(samples)
	out.MeanCPUTime = out.TotalCPUTime / time.Duration(len(samples))
	return out
}
