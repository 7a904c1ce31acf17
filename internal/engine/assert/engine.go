// Package assert evaluates the declarative assertion families against a
// task's captured outputs: exit status, golden-file equality, regex match
// counts and captured-float values. Failures are collected, never thrown;
// one run reports every problem of a task.
package assert

import (
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/core/ports"
)

// Engine implements ports.Asserter.
type Engine struct{}

var _ ports.Asserter = (*Engine)(nil)

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs every assertion of the task in declaration order: exit
// code first, then per golden entry equal, match specs and value specs.
func (e *Engine) Evaluate(task *domain.Task, out *domain.Outcome) []domain.Failure {
	var failures []domain.Failure

	failures = append(failures, checkExit(task.Config.Assert.ExitCode, out)...)

	for _, golden := range task.Config.Assert.Golden {
		failures = append(failures, e.checkGolden(task, out, golden)...)
	}
	return failures
}

func checkExit(want int, out *domain.Outcome) []domain.Failure {
	if out.TimedOut {
		return []domain.Failure{{
			Kind:    domain.FailTimeout,
			Message: fmt.Sprintf("terminated after %s", out.Duration),
		}}
	}
	if out.ExitCode == want {
		return nil
	}

	msg := fmt.Sprintf("expected %d, got %d", want, out.ExitCode)
	if out.Signal != "" {
		msg += fmt.Sprintf(" (terminated by %s)", out.Signal)
	}
	return []domain.Failure{{Kind: domain.FailExitCode, Message: msg}}
}

func (e *Engine) checkGolden(task *domain.Task, out *domain.Outcome, golden domain.GoldenCheck) []domain.Failure {
	content, ok, failure := capturedContent(task, out, golden.File)
	if !ok {
		return []domain.Failure{failure}
	}

	var failures []domain.Failure
	if golden.Equal {
		failures = append(failures, checkEqual(task, golden.File, content)...)
	}
	for _, spec := range golden.Match {
		failures = append(failures, checkMatch(golden.File, spec, content)...)
	}
	for _, spec := range golden.Value {
		failures = append(failures, checkValue(golden.File, spec, content, task.Config.Epsilon)...)
	}
	return failures
}

// capturedContent resolves a golden target: the captured stdout/stderr of
// the child when the target names them, any other file from the work
// directory.
func capturedContent(task *domain.Task, out *domain.Outcome, file string) (string, bool, domain.Failure) {
	switch file {
	case task.Name + ".stdout":
		return string(out.Stdout), true, domain.Failure{}
	case task.Name + ".stderr":
		return string(out.Stderr), true, domain.Failure{}
	}

	data, err := os.ReadFile(filepath.Join(out.WorkDir, file)) // #nosec G304 -- target inside the task's work dir
	if err != nil {
		return "", false, domain.Failure{
			Kind:    domain.FailOutput,
			File:    file,
			Message: "unable to read captured file: " + err.Error(),
		}
	}
	return string(data), true, domain.Failure{}
}

func checkEqual(task *domain.Task, file, captured string) []domain.Failure {
	goldenPath := filepath.Join(task.GoldenDir(), file)
	golden, err := os.ReadFile(goldenPath) // #nosec G304 -- golden file under the task's source tree
	if err != nil {
		return []domain.Failure{{
			Kind:    domain.FailEqual,
			File:    file,
			Message: "unable to read golden file: " + err.Error(),
		}}
	}

	if string(golden) == captured {
		return nil
	}
	return []domain.Failure{{
		Kind:    domain.FailEqual,
		File:    file,
		Message: "captured output differs from golden\n" + RenderDiff(string(golden), captured),
	}}
}
