// Package build exposes version metadata stamped at link time.
package build

// These are overridden with -ldflags "-X go.trai.ch/twin/internal/build.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
