// Package scheduler admits tasks under the weighted-permit capacity model
// and aggregates their verdicts.
package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/core/ports"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Scheduler dispatches discovered tasks under a weighted semaphore.
type Scheduler struct {
	executor ports.Executor
	asserter ports.Asserter
	tracer   ports.Tracer
	logger   ports.Logger
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	executor ports.Executor,
	asserter ports.Asserter,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor: executor,
		asserter: asserter,
		tracer:   tracer,
		logger:   logger,
	}
}

// RunConfig carries the per-run parameters of a schedule.
type RunConfig struct {
	// RootDir is the absolute task tree root.
	RootDir string

	// WorkRoot is the work directory root.
	WorkRoot string

	// Permits is the total semaphore capacity; values below one are
	// treated as one.
	Permits int64

	// Renderer receives the event stream.
	Renderer ports.Renderer
}

// Run admits every task in discovery order: a task with weight w acquires
// min(max(w, 1), permits) permits before running, so an oversized weight
// still runs serially with all permits held and never deadlocks.
// Completion order is arbitrary; the returned verdict slice restores
// discovery order.
func (s *Scheduler) Run(ctx context.Context, tasks []*domain.Task, cfg RunConfig) ([]domain.Verdict, domain.Summary) {
	permits := cfg.Permits
	if permits < 1 {
		permits = 1
	}
	sem := semaphore.NewWeighted(permits)

	verdicts := make([]domain.Verdict, len(tasks))
	start := time.Now()

	var g errgroup.Group
	for i, task := range tasks {
		if v, done := immediateVerdict(task); done {
			verdicts[i] = v
			cfg.Renderer.OnVerdict(v)
			continue
		}

		weight := task.Config.Permit
		if weight < 1 {
			weight = 1
		}
		if weight > permits {
			weight = permits
		}

		// Sequential acquisition keeps admission in discovery order.
		if err := sem.Acquire(ctx, weight); err != nil {
			verdicts[i] = domain.Verdict{RelPath: task.RelPath, Status: domain.StatusCancelled}
			cfg.Renderer.OnVerdict(verdicts[i])
			continue
		}

		cfg.Renderer.OnTaskStart(task.RelPath, time.Now())
		g.Go(func() error {
			defer sem.Release(weight)
			verdicts[i] = s.runTask(ctx, task, cfg)
			cfg.Renderer.OnVerdict(verdicts[i])
			return nil
		})
	}
	_ = g.Wait()

	return verdicts, domain.Summarize(verdicts, time.Since(start))
}

// immediateVerdict settles tasks that never acquire permits.
func immediateVerdict(task *domain.Task) (domain.Verdict, bool) {
	switch {
	case task.Filtered:
		return domain.Verdict{RelPath: task.RelPath, Status: domain.StatusFiltered}, true
	case task.Config.Ignore:
		return domain.Verdict{RelPath: task.RelPath, Status: domain.StatusIgnored}, true
	default:
		return domain.Verdict{}, false
	}
}

func (s *Scheduler) runTask(ctx context.Context, task *domain.Task, cfg RunConfig) domain.Verdict {
	ctx, span := s.tracer.Start(ctx, task.RelPath)
	defer span.End()
	span.SetAttribute("retest.permit", task.Config.Permit)

	start := time.Now()
	out, err := s.executor.Run(ctx, task, cfg.RootDir, cfg.WorkRoot)

	v := domain.Verdict{RelPath: task.RelPath}
	switch {
	case err != nil && ctx.Err() != nil:
		v.Status = domain.StatusCancelled
		// Nothing ran; drop the half-staged work directory.
		_ = os.RemoveAll(task.WorkDir(cfg.WorkRoot))
	case err != nil:
		span.RecordError(err)
		v.Status = domain.StatusFailed
		v.Failures = []domain.Failure{executionFailure(err)}
	default:
		v = s.settle(ctx, task, out)
	}
	v.Duration = time.Since(start)
	span.SetAttribute("retest.status", v.Status.String())

	if v.Status == domain.StatusFailed || v.Status == domain.StatusTimeout {
		s.persistReport(task, &v, cfg)
		if task.Config.PrintErrs && out != nil {
			cfg.Renderer.OnTaskOutput(task.RelPath, out.Stdout, out.Stderr)
		}
	}
	return v
}

// settle evaluates assertions and decides the verdict of a task whose
// child actually ran.
func (s *Scheduler) settle(ctx context.Context, task *domain.Task, out *domain.Outcome) domain.Verdict {
	v := domain.Verdict{RelPath: task.RelPath}

	if ctx.Err() != nil && !out.TimedOut {
		v.Status = domain.StatusCancelled
		return v
	}

	v.Failures = s.asserter.Evaluate(task, out)
	switch {
	case out.TimedOut:
		v.Status = domain.StatusTimeout
	case len(v.Failures) > 0:
		v.Status = domain.StatusFailed
	default:
		v.Status = domain.StatusPassed
		// Successful work directories are removed; debug runs keep them
		// for the config dump.
		if len(task.ConfigDump) == 0 {
			_ = os.RemoveAll(out.WorkDir)
		}
	}
	return v
}

func (s *Scheduler) persistReport(task *domain.Task, v *domain.Verdict, cfg RunConfig) {
	path := filepath.Join(task.WorkDir(cfg.WorkRoot), task.Name+".report")
	if err := os.WriteFile(path, []byte(v.Report()), domain.FilePerm); err != nil {
		s.logger.Warn("failed to persist report for " + task.RelPath + ": " + err.Error())
		return
	}
	v.ReportPath = path
}

func executionFailure(err error) domain.Failure {
	kind := domain.FailOutput
	switch {
	case errors.Is(err, domain.ErrStaging):
		kind = domain.FailStaging
	case errors.Is(err, domain.ErrSpawn):
		kind = domain.FailSpawn
	case errors.Is(err, domain.ErrHook):
		kind = domain.FailHook
	}
	return domain.Failure{Kind: kind, Message: err.Error()}
}
