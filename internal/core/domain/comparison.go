package domain

import "time"

// RootPath is the path reported when two scalar roots are compared.
const RootPath = "$"

// ComparisonReport classifies every reachable path of two result trees.
// Each path appears in exactly one of the four sets. Sets are sorted.
type ComparisonReport struct {
	Identical []string `json:"identical"`
	Different []string `json:"different"`
	// Missing holds paths present in left but absent from right.
	Missing []string `json:"missing"`
	// Extra holds paths present in right but absent from left.
	Extra []string `json:"extra"`
}

// Matches reports whether the two trees were structurally identical.
func (r ComparisonReport) Matches() bool {
	return len(r.Different) == 0 && len(r.Missing) == 0 && len(r.Extra) == 0
}

// CacheEntry is an immutable memoized result.
type CacheEntry struct {
	StoredAt time.Time
	Payload  any
}
