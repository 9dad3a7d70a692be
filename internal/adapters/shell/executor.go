// Package shell runs command-backed implementations that exchange JSON over stdio.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/twin/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// maxDetailBytes bounds how much stderr is kept as failure detail.
	maxDetailBytes = 8 << 10

	// waitDelay is how long a cancelled command may take to release its pipes.
	waitDelay = time.Second
)

// Executor implements ports.ImplementationFactory by running one process per
// operation call.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Constructor returns a constructor that validates spec and binds one
// operation handle per configured argv.
func (e *Executor) Constructor(spec domain.CommandSpec) domain.Constructor {
	return func(_ context.Context) (domain.Implementation, error) {
		if spec.WorkingDir != "" {
			info, err := os.Stat(spec.WorkingDir)
			if err != nil {
				return nil, zerr.With(err, "working_dir", spec.WorkingDir)
			}
			if !info.IsDir() {
				return nil, zerr.With(zerr.New("working directory is not a directory"), "working_dir", spec.WorkingDir)
			}
		}

		ops := make(map[string]domain.OperationFunc, len(spec.Operations))
		for op, argv := range spec.Operations {
			ops[op] = func(ctx context.Context, args ...domain.Value) (domain.Value, error) {
				return e.Execute(ctx, spec, argv, args)
			}
		}
		return domain.NewOperationTable(spec.Name, ops), nil
	}
}

// Execute runs argv once. The arguments are written to stdin as a JSON array
// and stdout is decoded as the payload. Stderr is streamed line by line to the
// diagnostic output on ctx.
func (e *Executor) Execute(
	ctx context.Context,
	spec domain.CommandSpec,
	argv []string,
	args []domain.Value,
) (domain.Value, error) {
	if len(argv) == 0 {
		return nil, domain.Annotate(domain.ErrEmptyCommand, "implementation", spec.Name)
	}

	input, err := encodeArgs(args)
	if err != nil {
		return nil, err
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	env := resolveEnvironment(os.Environ(), spec.Environment)
	name := argv[0]

	cmd := exec.CommandContext(ctx, resolveExecutable(name, env), argv[1:]...) //nolint:gosec // user provided command
	cmd.Args[0] = name
	cmd.Dir = spec.WorkingDir
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	var stdout bytes.Buffer
	detail := &tailBuffer{limit: maxDetailBytes}
	stderrLog := &lineWriter{
		prefix: spec.Name,
		logger: e.logger,
		output: domain.Output(ctx),
	}

	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(stderrLog, detail)

	runErr := cmd.Run()
	_ = stderrLog.Close()

	if usage, ok := processUsage(cmd.ProcessState); ok {
		domain.ReportUsage(ctx, usage)
	}

	if runErr != nil {
		return nil, commandFailure(ctx, runErr, name, detail.String())
	}

	payload, err := decodeOutput(stdout.Bytes())
	if err != nil {
		return nil, &commandError{err: zerr.With(err, "command", name), detail: detail.String()}
	}
	return payload, nil
}

func commandFailure(ctx context.Context, runErr error, name, stderr string) error {
	err := zerr.With(domain.Tag(domain.ErrCommandFailed, runErr), "command", name)

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		err = zerr.With(domain.Tag(domain.ErrCommandFailed, context.DeadlineExceeded), "command", name)
	case errors.As(runErr, &exitErr):
		err = zerr.With(err, "exit_code", exitErr.ExitCode())
	}

	return &commandError{err: err, detail: stderr}
}

// commandError carries the captured stderr of a failed command so it can be
// surfaced as upstream detail.
type commandError struct {
	err    error
	detail string
}

func (e *commandError) Error() string {
	return e.err.Error()
}

func (e *commandError) Unwrap() error {
	return e.err
}

// Detail returns the tail of the command's stderr.
func (e *commandError) Detail() string {
	return strings.TrimRight(e.detail, "\n")
}

// lineWriter forwards complete stderr lines to the diagnostic output and the
// debug log.
type lineWriter struct {
	prefix string
	logger ports.Logger
	output io.Writer
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *lineWriter) Close() error {
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *lineWriter) emit(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	_, _ = w.output.Write(append(bytes.Clone(line), '\n'))
	if w.logger != nil {
		w.logger.Debug(fmt.Sprintf("%s: %s", w.prefix, line))
	}
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
