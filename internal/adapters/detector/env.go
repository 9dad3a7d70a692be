// Package detector selects the log format from the terminal environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// LogFormat is the rendering of log records.
type LogFormat int

const (
	// FormatAuto picks a format from the environment.
	FormatAuto LogFormat = iota
	// FormatPretty renders colored, human-readable lines.
	FormatPretty
	// FormatJSON renders one JSON object per record.
	FormatJSON
)

// String returns the flag spelling of the format.
func (f LogFormat) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended format.
// It prefers JSON when stderr is not a terminal or a CI variable is set.
func DetectEnvironment() LogFormat {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI")) //nolint:gosec // Fd fits in int
}

func detect(isTTY bool, ci string) LogFormat {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveFormat applies the --log-format flag to the detected format.
// Unknown or empty values fall back to the detected format.
func ResolveFormat(detected LogFormat, flag string) LogFormat {
	switch flag {
	case "pretty", "text":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return detected
	}
}
