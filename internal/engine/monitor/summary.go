package monitor

import (
	"fmt"
	"strings"
	"time"

	"go.trai.ch/twin/internal/core/domain"
)

// Summary renders the current metrics as a human-readable report.
func (m *Monitor) Summary() string {
	return RenderSummary(m.Snapshot())
}

// RenderSummary renders a snapshot as a human-readable report.
func RenderSummary(s domain.MetricsSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Monitoring started at: %s\n", s.StartedAt.Format(time.RFC3339))
	if s.LastReset.IsZero() {
		b.WriteString("Last reset: never\n")
	} else {
		fmt.Fprintf(&b, "Last reset: %s\n", s.LastReset.Format(time.RFC3339))
	}

	b.WriteString("\nCall Statistics:\n")
	for _, id := range domain.Identities {
		fmt.Fprintf(&b, "%s calls: %d\n", label(id), s.For(id).Calls)
	}
	fmt.Fprintf(&b, "Parallel calls: %d\n", s.ParallelCalls)

	b.WriteString("\nSuccess Rates:\n")
	for _, id := range domain.Identities {
		fmt.Fprintf(&b, "%s success rate: %.2f%%\n", label(id), s.For(id).SuccessRate*100)
	}

	b.WriteString("\nError Counts:\n")
	for _, id := range domain.Identities {
		im := s.For(id)
		fmt.Fprintf(&b, "%s errors: %d\n", label(id), im.Failures())
		if n := len(im.Errors); n > 0 {
			last := im.Errors[n-1]
			fmt.Fprintf(&b, "  Last error: %s (%s)\n", firstLine(last.Message), last.Timestamp.Format(time.RFC3339))
		}
	}

	b.WriteString("\nPerformance Statistics:\n")
	for _, id := range domain.Identities {
		lat := s.For(id).Latency
		if lat.Count == 0 {
			fmt.Fprintf(&b, "%s Performance: no samples\n", label(id))
			continue
		}
		fmt.Fprintf(&b, "%s Performance:\n", label(id))
		fmt.Fprintf(&b, "  Min time: %.2fs\n", lat.Min.Seconds())
		fmt.Fprintf(&b, "  Max time: %.2fs\n", lat.Max.Seconds())
		fmt.Fprintf(&b, "  Avg time: %.2fs\n", lat.Mean.Seconds())
		fmt.Fprintf(&b, "  P95 time: %.2fs\n", lat.P95.Seconds())
		fmt.Fprintf(&b, "  Samples: %d\n", lat.Count)
	}

	var usage []string
	for _, id := range domain.Identities {
		u := s.For(id).Usage
		if u.Samples == 0 {
			continue
		}
		usage = append(usage, fmt.Sprintf(
			"%s Resources:\n  CPU time: %.2fs total, %.2fs avg\n  Peak RSS: %d KiB\n  Samples: %d\n",
			label(id), u.TotalCPUTime.Seconds(), u.MeanCPUTime.Seconds(), u.PeakRSSBytes/1024, u.Samples,
		))
	}
	if len(usage) > 0 {
		b.WriteString("\nResource Usage:\n")
		b.WriteString(strings.Join(usage, ""))
	}

	return b.String()
}

func label(id domain.Identity) string {
	if id == domain.Original {
		return "Original"
	}
	return "Candidate"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
