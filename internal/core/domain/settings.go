package domain

import (
	"path/filepath"
	"time"
)

const (
	// TwinFileName is the configuration file discovered from the working directory.
	TwinFileName = "twin.yaml"

	// StateDirName is the directory holding persisted state, relative to the config root.
	StateDirName = ".twin"

	// MetricsFileName is the monitor state file inside StateDirName.
	MetricsFileName = "metrics.json"

	// DirPerm is the default permission for state directories.
	DirPerm = 0o750

	// FilePerm is the default permission for state files.
	FilePerm = 0o600
)

const (
	// DefaultCacheTTL is how long memoized results stay fresh.
	DefaultCacheTTL = time.Hour
	// DefaultMinSamples is the number of calls each identity needs before metrics are trusted.
	DefaultMinSamples = 10
	// DefaultReliabilityMargin is how much success rate the candidate may concede for speed.
	DefaultReliabilityMargin = 0.10
	// DefaultSpeedupFactor is the latency ratio the candidate must beat to use the margin.
	DefaultSpeedupFactor = 0.8
	// DefaultErrorHistory is the number of errors retained per identity.
	DefaultErrorHistory = 100
	// DefaultInsufficientData is the identity preferred before enough samples exist.
	DefaultInsufficientData = Candidate
)

// Settings tunes the orchestrator.
type Settings struct {
	CacheTTL          time.Duration
	MinSamples        int
	ReliabilityMargin float64
	SpeedupFactor     float64
	ErrorHistory      int
	InsufficientData  Identity
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		CacheTTL:          DefaultCacheTTL,
		MinSamples:        DefaultMinSamples,
		ReliabilityMargin: DefaultReliabilityMargin,
		SpeedupFactor:     DefaultSpeedupFactor,
		ErrorHistory:      DefaultErrorHistory,
		InsufficientData:  DefaultInsufficientData,
	}
}

// CommandSpec describes one side of a command-backed type.
type CommandSpec struct {
	// Name labels the implementation, e.g. "analysis/original".
	Name        string
	WorkingDir  string
	Environment map[string]string
	// Timeout bounds a single operation. Zero means no limit.
	Timeout    time.Duration
	Operations map[string][]string
}

// TypeSpec pairs the two command specs of a registered type.
type TypeSpec struct {
	Name      string
	Original  CommandSpec
	Candidate CommandSpec
}

// Side returns the spec of an identity.
func (t TypeSpec) Side(id Identity) CommandSpec {
	if id == Original {
		return t.Original
	}
	return t.Candidate
}

// Workspace is the loaded configuration.
type Workspace struct {
	// Root is the directory containing the twinfile.
	Root     string
	Settings Settings
	Types    []TypeSpec
}

// StatePath returns the state directory for the workspace.
func (w *Workspace) StatePath() string {
	return filepath.Join(w.Root, StateDirName)
}
