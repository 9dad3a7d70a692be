package shell

import (
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// inheritedEnvVars are the system variables an implementation inherits.
// Everything else must be set explicitly in the implementation environment so
// both sides of a type run under comparable conditions.
var inheritedEnvVars = map[string]struct{}{
	"HOME":   {},
	"LANG":   {},
	"PATH":   {},
	"TERM":   {},
	"TMPDIR": {},
	"USER":   {},
}

// resolveEnvironment builds the child environment: allow-listed system
// variables first, then the configured overrides. The result is sorted.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(inheritedEnvVars)+len(overrides))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := inheritedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}

	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the PATH of env rather than the
// PATH of the current process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}

// resolveExecutable returns the path to run for name. Names containing a
// separator are used as given, relative to the working directory.
func resolveExecutable(name string, env []string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	if lp, err := lookPath(name, env); err == nil {
		return lp
	}
	return name
}
