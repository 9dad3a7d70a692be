package comparator

import (
	"fmt"
	"strings"

	"go.trai.ch/twin/internal/core/domain"
)

// Summarize renders a report as a listing grouped by classification.
// Empty groups are omitted.
func Summarize(r domain.ComparisonReport) string {
	var b strings.Builder

	if r.Matches() {
		fmt.Fprintf(&b, "Results match (%d identical paths)\n", len(r.Identical))
	} else {
		fmt.Fprintf(&b, "Results differ (%d different, %d missing, %d extra)\n",
			len(r.Different), len(r.Missing), len(r.Extra))
	}

	group(&b, "Identical", r.Identical)
	group(&b, "Different", r.Different)
	group(&b, "Missing", r.Missing)
	group(&b, "Extra", r.Extra)

	return b.String()
}

func group(b *strings.Builder, title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, p := range paths {
		fmt.Fprintf(b, "  %s\n", p)
	}
}

// SummarizeParallel renders the outcome of a dual execution. When either side
// failed only the failures are listed, otherwise the comparison follows the
// timings.
func SummarizeParallel(p domain.ParallelResult) string {
	var b strings.Builder

	if !p.OK() {
		for _, id := range domain.Identities {
			res := p.Get(id)
			if res.OK() {
				continue
			}
			fmt.Fprintf(&b, "%s implementation failed: %s\n", title(id), res.Failure.Message)
		}
		return b.String()
	}

	for _, id := range domain.Identities {
		res := p.Get(id)
		suffix := ""
		if res.Cached {
			suffix = " (cached)"
		}
		fmt.Fprintf(&b, "%s execution time: %.2fs%s\n", title(id), res.Duration.Seconds(), suffix)
	}
	b.WriteString(Summarize(Compare(p.Original.Payload, p.Candidate.Payload)))

	return b.String()
}

func title(id domain.Identity) string {
	s := id.String()
	return strings.ToUpper(s[:1]) + s[1:]
}
