// Package app implements the application layer for retest: it turns CLI
// options into a discovery request, runs the scheduler and maps the run
// outcome to the process exit contract.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/retest/internal/adapters/linear"
	"go.trai.ch/retest/internal/adapters/telemetry"
	"go.trai.ch/retest/internal/adapters/watcher"
	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/core/ports"
	"go.trai.ch/retest/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	discoverer ports.Discoverer
	scheduler  *scheduler.Scheduler
	logger     ports.Logger

	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(discoverer ports.Discoverer, sched *scheduler.Scheduler, logger ports.Logger) *App {
	return &App{
		discoverer: discoverer,
		scheduler:  sched,
		logger:     logger,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// WithOutput redirects the renderer streams. Used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run method, mirroring the CLI flags.
type RunOptions struct {
	RootDir    string
	WorkDir    string
	Extensions []string
	ExePath    string
	Args       []string
	Permits    int64
	Include    []string
	Exclude    []string
	Debug      bool
	PrintErrs  bool
	Watch      bool
}

// debuggable is implemented by loggers that can switch verbosity.
type debuggable interface {
	SetDebug(enable bool)
}

// Run executes one batch, or keeps re-running on tree changes in watch
// mode. It returns domain.ErrTasksFailed when at least one task failed
// and an error wrapping domain.ErrSetupFailed for config or discovery
// problems.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if opts.Debug {
		if d, ok := a.logger.(debuggable); ok {
			d.SetDebug(true)
		}
	}

	rootAbs, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSetupFailed.Error()), "root", opts.RootDir)
	}
	if info, statErr := os.Stat(rootAbs); statErr != nil || !info.IsDir() {
		return zerr.With(domain.ErrSetupFailed, "root", rootAbs)
	}

	workRoot := opts.WorkDir
	if workRoot == "" {
		workRoot = domain.DefaultWorkRoot
	}

	if !opts.Watch {
		return a.runOnce(ctx, opts, rootAbs, workRoot)
	}
	return a.watchLoop(ctx, opts, rootAbs, workRoot)
}

func (a *App) runOnce(ctx context.Context, opts RunOptions, rootAbs, workRoot string) error {
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	if err := renderer.Start(ctx); err != nil {
		return zerr.Wrap(err, domain.ErrSetupFailed.Error())
	}
	defer func() { _ = renderer.Stop() }()

	// Route task spans through the renderer bridge.
	setupOTel(telemetry.NewBridge(renderer))

	tasks, err := a.discoverer.Discover(ctx, ports.DiscoveryRequest{
		Root:     rootAbs,
		Base:     a.baseConfig(opts),
		Include:  opts.Include,
		Exclude:  opts.Exclude,
		WorkRoot: workRoot,
		Debug:    opts.Debug,
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrSetupFailed.Error())
	}

	renderer.OnPlan(admitted(tasks), rootAbs)

	verdicts, summary := a.scheduler.Run(ctx, tasks, scheduler.RunConfig{
		RootDir:  rootAbs,
		WorkRoot: workRoot,
		Permits:  poolSize(opts.Permits, tasks),
		Renderer: renderer,
	})
	renderer.OnSummary(summary, verdicts)

	if summary.Failed > 0 {
		return domain.ErrTasksFailed
	}
	return nil
}

// baseConfig derives the implicit root config from the CLI flags.
func (a *App) baseConfig(opts RunOptions) domain.Config {
	return domain.Config{
		Extensions: opts.Extensions,
		ExePath:    opts.ExePath,
		Args:       opts.Args,
		Permits:    opts.Permits,
		Epsilon:    domain.DefaultEpsilon,
		PrintErrs:  opts.PrintErrs,
	}
}

// poolSize resolves the permit pool: the CLI value, raised by any
// __all__.toml that configured a larger total.
func poolSize(cliPermits int64, tasks []*domain.Task) int64 {
	permits := cliPermits
	for _, t := range tasks {
		if !t.Filtered && t.Config.Permits > permits {
			permits = t.Config.Permits
		}
	}
	if permits < 1 {
		permits = 1
	}
	return permits
}

func admitted(tasks []*domain.Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Filtered {
			n++
		}
	}
	return n
}

// watchLoop re-runs the batch whenever the task tree changes. Setup errors
// after the first run are reported but do not end the loop.
func (a *App) watchLoop(ctx context.Context, opts RunOptions, rootAbs, workRoot string) error {
	lastErr := a.runOnce(ctx, opts, rootAbs, workRoot)
	if lastErr != nil {
		a.logger.Error(lastErr)
	}

	w, err := watcher.NewWatcher(a.logger, workRoot)
	if err != nil {
		return zerr.Wrap(err, domain.ErrSetupFailed.Error())
	}
	defer func() { _ = w.Stop() }()

	trigger := make(chan struct{}, 1)
	cache := watcher.NewContentCache()
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		if len(cache.Changed(paths)) == 0 {
			return
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})

	if err := w.Start(ctx, rootAbs); err != nil {
		return zerr.Wrap(err, domain.ErrSetupFailed.Error())
	}
	go func() {
		for event := range w.Events() {
			debouncer.Add(event.Path)
		}
	}()

	a.logger.Info("watching " + rootAbs + " for changes")
	for {
		select {
		case <-ctx.Done():
			return lastErr
		case <-trigger:
			a.logger.Info("change detected, re-running at " + time.Now().Format(time.TimeOnly))
			lastErr = a.runOnce(ctx, opts, rootAbs, workRoot)
			if lastErr != nil {
				a.logger.Error(lastErr)
			}
		}
	}
}

// Clean removes the work directory root and everything under it.
func (a *App) Clean(_ context.Context, workDir string) error {
	if workDir == "" {
		workDir = domain.DefaultWorkRoot
	}
	a.logger.Info("removing " + workDir)
	if err := os.RemoveAll(workDir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove work directory"), "dir", workDir)
	}
	return nil
}

// setupOTel installs a tracer provider whose span processor feeds the
// renderer.
func setupOTel(bridge *telemetry.Bridge) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	otel.SetTracerProvider(tp)
}
