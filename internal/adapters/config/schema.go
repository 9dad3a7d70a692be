package config

// Twinfile represents the structure of the twin.yaml configuration file.
type Twinfile struct {
	Version         string              `yaml:"version"`
	Settings        SettingsDTO         `yaml:"settings"`
	Implementations map[string]*TypeDTO `yaml:"implementations"`
}

// SettingsDTO represents the orchestrator settings block.
// Pointer fields distinguish an omitted value from an explicit zero.
type SettingsDTO struct {
	CacheTTL          *string  `yaml:"cacheTTL"`
	MinSamples        *int     `yaml:"minSamples"`
	ReliabilityMargin *float64 `yaml:"reliabilityMargin"`
	SpeedupFactor     *float64 `yaml:"speedupFactor"`
	ErrorHistory      *int     `yaml:"errorHistory"`
	InsufficientData  string   `yaml:"insufficientData"`
}

// TypeDTO represents a registered type with its two implementations.
type TypeDTO struct {
	Original  *SideDTO `yaml:"original"`
	Candidate *SideDTO `yaml:"candidate"`
}

// SideDTO represents one command-backed implementation.
type SideDTO struct {
	WorkingDir  string              `yaml:"workingDir"`
	Environment map[string]string   `yaml:"environment"`
	Timeout     string              `yaml:"timeout"`
	Operations  map[string][]string `yaml:"operations"`
}
