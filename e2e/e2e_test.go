//go:build e2e

package e2e_test

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var twinBinary string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "twin-e2e-*")
	if err != nil {
		panic(err)
	}

	twinBinary = filepath.Join(tmpDir, "twin")

	//nolint:gosec // Building binary with static arguments, not user input
	cmd := exec.Command("go", "build", "-o", twinBinary, "./cmd/twin")
	cmd.Dir = ".."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		panic("failed to build twin binary: " + err.Error())
	}

	exitCode := m.Run()

	_ = os.RemoveAll(tmpDir)

	os.Exit(exitCode)
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupE2E,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"jsonfield": cmdJSONField,
		},
	})
}

// cmdJSONField asserts that a dotted path of a JSON document equals a value.
//
//	jsonfield stdout comparison.different.0 mean
func cmdJSONField(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 3 {
		ts.Fatalf("usage: jsonfield file path value")
	}

	var doc any
	ts.Check(json.Unmarshal([]byte(ts.ReadFile(args[0])), &doc))

	got, ok := lookup(doc, args[1])
	switch {
	case !ok && !neg:
		ts.Fatalf("%s: no value at %s", args[0], args[1])
	case ok && (got == args[2]) == neg:
		ts.Fatalf("%s: %s is %q", args[0], args[1], got)
	}
}

func lookup(doc any, path string) (string, bool) {
	for _, key := range strings.Split(path, ".") {
		switch node := doc.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return "", false
			}
			doc = v
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return "", false
			}
			doc = node[i]
		default:
			return "", false
		}
	}
	return fmt.Sprint(doc), true
}

func setupE2E(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	// JSON logs unless a script asks for --log-format pretty.
	env.Setenv("CI", "true")

	binDir := filepath.Dir(twinBinary)
	currentPath := env.Getenv("PATH")
	env.Setenv("PATH", binDir+string(os.PathListSeparator)+currentPath)

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	return nil
}
