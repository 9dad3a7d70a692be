// Package config provides the configuration loader for twin.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/twin/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers twin.yaml from cwd upwards and returns the parsed workspace.
func (l *Loader) Load(cwd string) (*domain.Workspace, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}
	return l.LoadFile(configPath)
}

// LoadFile parses the twinfile at path.
func (l *Loader) LoadFile(path string) (*domain.Workspace, error) {
	var twinfile Twinfile
	if err := readAndUnmarshalYAML(path, &twinfile); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	settings, err := resolveSettings(twinfile.Settings)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	root := filepath.Clean(filepath.Dir(path))
	if abs, absErr := filepath.Abs(root); absErr == nil {
		root = abs
	}

	if len(twinfile.Implementations) == 0 {
		l.Logger.Warn(fmt.Sprintf("no implementations defined in %s", path))
	}

	names := slices.Sorted(maps.Keys(twinfile.Implementations))
	types := make([]domain.TypeSpec, 0, len(names))
	for _, name := range names {
		spec, err := buildType(name, twinfile.Implementations[name], root)
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		types = append(types, spec)
	}

	return &domain.Workspace{
		Root:     root,
		Settings: settings,
		Types:    types,
	}, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.TwinFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", domain.Annotate(domain.ErrConfigNotFound, "cwd", cwd)
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered or passed explicitly by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return domain.Tag(domain.ErrConfigReadFailed, err)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return domain.Tag(domain.ErrConfigParseFailed, parseErr)
	}

	return nil
}

// resolveSettings fills omitted fields with defaults and validates the rest.
func resolveSettings(dto SettingsDTO) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	if dto.CacheTTL != nil {
		ttl, err := time.ParseDuration(*dto.CacheTTL)
		if err != nil {
			return settings, invalidSetting("cacheTTL", *dto.CacheTTL)
		}
		if ttl < 0 {
			return settings, invalidSetting("cacheTTL", *dto.CacheTTL)
		}
		settings.CacheTTL = ttl
	}

	if dto.MinSamples != nil {
		if *dto.MinSamples < 0 {
			return settings, invalidSetting("minSamples", *dto.MinSamples)
		}
		settings.MinSamples = *dto.MinSamples
	}

	if dto.ReliabilityMargin != nil {
		if *dto.ReliabilityMargin < 0 || *dto.ReliabilityMargin > 1 {
			return settings, invalidSetting("reliabilityMargin", *dto.ReliabilityMargin)
		}
		settings.ReliabilityMargin = *dto.ReliabilityMargin
	}

	if dto.SpeedupFactor != nil {
		if *dto.SpeedupFactor <= 0 {
			return settings, invalidSetting("speedupFactor", *dto.SpeedupFactor)
		}
		settings.SpeedupFactor = *dto.SpeedupFactor
	}

	if dto.ErrorHistory != nil {
		if *dto.ErrorHistory < 1 {
			return settings, invalidSetting("errorHistory", *dto.ErrorHistory)
		}
		settings.ErrorHistory = *dto.ErrorHistory
	}

	if dto.InsufficientData != "" {
		id, err := domain.ParseIdentity(dto.InsufficientData)
		if err != nil {
			return settings, zerr.With(invalidSetting("insufficientData", dto.InsufficientData), "cause", err.Error())
		}
		settings.InsufficientData = id
	}

	return settings, nil
}

func invalidSetting(field string, value any) error {
	err := domain.Annotate(domain.ErrInvalidSettings, "field", field)
	return zerr.With(err, "value", value)
}

func buildType(name string, dto *TypeDTO, root string) (domain.TypeSpec, error) {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		return domain.TypeSpec{}, domain.Annotate(domain.ErrInvalidRegistration, "type", name)
	}
	if dto == nil || dto.Original == nil || dto.Candidate == nil {
		return domain.TypeSpec{}, domain.Annotate(domain.ErrMissingImplementation, "type", name)
	}

	spec := domain.TypeSpec{Name: name}
	for _, id := range domain.Identities {
		side := dto.Original
		if id == domain.Candidate {
			side = dto.Candidate
		}

		cmd, err := buildSide(name+"/"+id.String(), side, root)
		if err != nil {
			return domain.TypeSpec{}, zerr.With(zerr.With(err, "type", name), "identity", id.String())
		}

		if id == domain.Original {
			spec.Original = cmd
		} else {
			spec.Candidate = cmd
		}
	}

	return spec, nil
}

func buildSide(name string, dto *SideDTO, root string) (domain.CommandSpec, error) {
	var timeout time.Duration
	if dto.Timeout != "" {
		d, err := time.ParseDuration(dto.Timeout)
		if err != nil || d < 0 {
			return domain.CommandSpec{}, invalidSetting("timeout", dto.Timeout)
		}
		timeout = d
	}

	ops := make(map[string][]string, len(dto.Operations))
	for op, argv := range dto.Operations {
		if len(argv) == 0 || argv[0] == "" {
			return domain.CommandSpec{}, domain.Annotate(domain.ErrEmptyCommand, "operation", op)
		}
		ops[op] = slices.Clone(argv)
	}

	return domain.CommandSpec{
		Name:        name,
		WorkingDir:  resolveWorkingDir(root, dto.WorkingDir),
		Environment: maps.Clone(dto.Environment),
		Timeout:     timeout,
		Operations:  ops,
	}, nil
}

// resolveWorkingDir resolves the working directory of an implementation.
// If configuredWorkingDir is empty, uses baseDir.
// If configuredWorkingDir is absolute, uses it directly.
// Otherwise, joins it with baseDir.
func resolveWorkingDir(baseDir, configuredWorkingDir string) string {
	if configuredWorkingDir == "" {
		return baseDir
	}

	if filepath.IsAbs(configuredWorkingDir) {
		return filepath.Clean(configuredWorkingDir)
	}

	return filepath.Clean(filepath.Join(baseDir, configuredWorkingDir))
}
