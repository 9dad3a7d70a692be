// Package output creates termenv outputs for the log handler and the trace
// renderer. Both honor NO_COLOR.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ColorProfile detects the terminal's capabilities. NO_COLOR selects Ascii.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI is used for traces, which are often captured by CI logs
// that understand basic ANSI but no detection. NO_COLOR selects Ascii.
func ColorProfileANSI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New returns an output for w using the detected profile.
func New(w io.Writer) *termenv.Output {
	return NewWithProfile(w, ColorProfile)
}

// NewWithProfile returns an output for w, or stderr when w is nil, with the
// profile chosen by profileFn.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(profileFn()), termenv.WithTTY(true))
}
