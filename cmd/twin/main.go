// Package main is the entry point for twin.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/twin/cmd/twin/commands"
	"go.trai.ch/twin/internal/app"
	"go.trai.ch/twin/internal/core/domain"
	_ "go.trai.ch/twin/internal/wiring"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageErrors are caused by the invocation or the twinfile rather than by an
// implementation.
var usageErrors = []error{
	domain.ErrInvalidMode,
	domain.ErrInvalidArgument,
	domain.ErrUnregisteredType,
	domain.ErrUnsupportedOperation,
	domain.ErrConfigNotFound,
	domain.ErrConfigParseFailed,
	domain.ErrInvalidSettings,
	domain.ErrInvalidRegistration,
	domain.ErrMissingImplementation,
	domain.ErrEmptyCommand,
}

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitFailure
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	// 3. Execution
	err = cli.Execute(ctx)
	if err != nil && !errors.Is(err, domain.ErrExecutionFailed) {
		// Failed executions were already reported by the app.
		components.Logger.Error(err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	for _, target := range usageErrors {
		if errors.Is(err, target) {
			return exitUsage
		}
	}
	return exitFailure
}
