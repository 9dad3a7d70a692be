// Package app implements the application layer for twin.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/twin/internal/adapters/detector"
	"go.trai.ch/twin/internal/adapters/linear"
	"go.trai.ch/twin/internal/adapters/telemetry"
	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/twin/internal/core/ports"
	"go.trai.ch/twin/internal/engine/monitor"
	"go.trai.ch/twin/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	factory      ports.ImplementationFactory
	logger       ports.Logger
	store        ports.MetricsStore
	stdout       io.Writer
	stderr       io.Writer
	now          func() time.Time
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	factory ports.ImplementationFactory,
	log ports.Logger,
	store ports.MetricsStore,
) *App {
	return &App{
		configLoader: loader,
		factory:      factory,
		logger:       log,
		store:        store,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		now:          time.Now,
	}
}

// WithOutput redirects result output and trace output.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithClock replaces the clock used by the monitor and the result cache.
// This is primarily used for testing.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// ConfigureLogging applies the --log-format and --verbose flags to loggers
// that support them.
func (a *App) ConfigureLogging(format string, verbose bool) {
	resolved := detector.ResolveFormat(detector.DetectEnvironment(), format)
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(resolved == detector.FormatJSON)
	}
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(verbose)
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	Mode       domain.Mode
	Repeat     int
	NoCache    bool
	Trace      bool
	JSON       bool
	ConfigPath string
}

// Run executes one operation of a configured type and prints the outcome.
// Monitor state is restored before and persisted after the execution so that
// adaptive selection learns across invocations.
//
//nolint:cyclop // orchestration function
func (a *App) Run(ctx context.Context, typeName, op string, rawArgs []string, opts RunOptions) error {
	// 1. Load the workspace
	ws, err := a.loadWorkspace(opts.ConfigPath)
	if err != nil {
		return err
	}

	args, err := ParseArgs(rawArgs)
	if err != nil {
		return err
	}

	if opts.Mode == "" {
		opts.Mode = domain.ModeAdaptive
	}
	if opts.Repeat < 1 {
		opts.Repeat = 1
	}

	// 2. Restore the monitor
	mon, err := a.restoreMonitor(ws)
	if err != nil {
		return err
	}

	// 3. Initialize telemetry
	runID := uuid.NewString()
	orchOpts := []orchestrator.Option{
		orchestrator.WithSettings(a.settings(ws, opts)),
		orchestrator.WithLogger(a.logger),
		orchestrator.WithMonitor(mon),
		orchestrator.WithClock(a.now),
	}
	if opts.Trace {
		tracer, tp := telemetry.Setup(linear.NewRenderer(a.stderr))
		defer func() {
			_ = tp.Shutdown(context.WithoutCancel(ctx))
		}()
		orchOpts = append(orchOpts, orchestrator.WithTracer(tracer))

		var root ports.Span
		ctx, root = tracer.Start(ctx, "run "+typeName+"."+op, ports.WithAttribute("twin.run_id", runID))
		defer root.End()
	}

	// 4. Register configured types
	orch := orchestrator.New(orchOpts...)
	for _, spec := range ws.Types {
		if err := orch.Register(spec.Name, a.factory.Constructor(spec.Original), a.factory.Constructor(spec.Candidate)); err != nil {
			return err
		}
	}
	a.logger.Debug(fmt.Sprintf("loaded %d type(s) from %s", len(ws.Types), ws.Root))

	// 5. Execute and persist, even when the execution failed
	runErr := a.execute(ctx, orch, runID, typeName, op, args, opts)

	if err := a.store.Put(ws.StatePath(), mon.State()); err != nil {
		return errors.Join(runErr, err)
	}

	return runErr
}

func (a *App) execute(
	ctx context.Context,
	orch *orchestrator.Orchestrator,
	runID, typeName, op string,
	args []domain.Value,
	opts RunOptions,
) error {
	for i := 1; i <= opts.Repeat; i++ {
		last := i == opts.Repeat

		switch opts.Mode {
		case domain.ModeParallel:
			res, err := orch.ExecuteParallel(ctx, typeName, op, args...)
			if err != nil {
				return err
			}
			a.logger.Debug(fmt.Sprintf("run %d/%d: original ok=%t, candidate ok=%t", i, opts.Repeat, res.Original.OK(), res.Candidate.OK()))
			if last {
				return a.reportParallel(runID, typeName, op, res, opts.JSON)
			}
		case domain.ModeAdaptive:
			res, err := orch.ExecuteAdaptive(ctx, typeName, op, args...)
			if err != nil {
				return err
			}
			a.logger.Debug(fmt.Sprintf("run %d/%d: served by %s in %v", i, opts.Repeat, res.Identity, res.Duration))
			if last {
				return a.reportAdaptive(runID, typeName, op, res, opts.JSON)
			}
		default:
			return domain.Annotate(domain.ErrInvalidMode, "mode", string(opts.Mode))
		}
	}
	return nil
}

// Metrics prints the persisted monitor summary.
func (a *App) Metrics(_ context.Context, configPath string, asJSON bool) error {
	ws, err := a.loadWorkspace(configPath)
	if err != nil {
		return err
	}

	mon, err := a.restoreMonitor(ws)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(a.stdout, mon.Snapshot())
	}
	_, err = io.WriteString(a.stdout, mon.Summary())
	return err
}

// ResetMetrics clears the persisted monitor state and records the reset time.
func (a *App) ResetMetrics(_ context.Context, configPath string) error {
	ws, err := a.loadWorkspace(configPath)
	if err != nil {
		return err
	}

	mon, err := a.restoreMonitor(ws)
	if err != nil {
		return err
	}

	mon.Reset()
	if err := a.store.Put(ws.StatePath(), mon.State()); err != nil {
		return err
	}

	a.logger.Info("metrics reset")
	return nil
}

// Clean removes the state directory of the workspace.
func (a *App) Clean(_ context.Context, configPath string) error {
	ws, err := a.loadWorkspace(configPath)
	if err != nil {
		return err
	}

	path := ws.StatePath()
	a.logger.Info(fmt.Sprintf("removing %s...", path))
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove state directory"), "path", path)
	}
	a.logger.Info(fmt.Sprintf("removed %s", path))
	return nil
}

func (a *App) loadWorkspace(configPath string) (*domain.Workspace, error) {
	if configPath != "" {
		ws, err := a.configLoader.LoadFile(configPath)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load configuration")
		}
		return ws, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	ws, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return ws, nil
}

func (a *App) restoreMonitor(ws *domain.Workspace) (*monitor.Monitor, error) {
	state, err := a.store.Get(ws.StatePath())
	if err != nil {
		return nil, err
	}

	mon := monitor.New(
		monitor.WithClock(a.now),
		monitor.WithErrorHistory(ws.Settings.ErrorHistory),
	)
	mon.Restore(state)
	return mon, nil
}

func (a *App) settings(ws *domain.Workspace, opts RunOptions) domain.Settings {
	s := ws.Settings
	if opts.NoCache {
		s.CacheTTL = 0
	}
	return s
}
