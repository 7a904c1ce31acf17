package assert_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	testify "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/engine/assert"
)

// newGoldenTask lays out a source dir with a __golden__ directory and a
// work dir, returning the ready-to-evaluate task and outcome.
func newGoldenTask(t *testing.T, goldenFiles, workFiles map[string]string) (*domain.Task, *domain.Outcome) {
	t.Helper()
	srcDir := t.TempDir()
	workDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, domain.GoldenDirName), 0o750))
	for name, content := range goldenFiles {
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, domain.GoldenDirName, name), []byte(content), 0o644))
	}
	for name, content := range workFiles {
		require.NoError(t, os.WriteFile(filepath.Join(workDir, name), []byte(content), 0o644))
	}

	task := &domain.Task{
		Path:      filepath.Join(srcDir, "case.sh"),
		RelPath:   "case.sh",
		Name:      "case",
		Extension: "sh",
	}
	return task, &domain.Outcome{WorkDir: workDir}
}

func TestEvaluate_ExitCode(t *testing.T) {
	engine := assert.NewEngine()

	t.Run("expected nonzero passes", func(t *testing.T) {
		task := &domain.Task{Name: "c", Config: domain.Config{Assert: domain.Assert{ExitCode: 1}}}
		failures := engine.Evaluate(task, &domain.Outcome{ExitCode: 1})
		testify.Empty(t, failures)
	})

	t.Run("mismatch carries want and got", func(t *testing.T) {
		task := &domain.Task{Name: "c", Config: domain.Config{Assert: domain.Assert{ExitCode: 1}}}
		failures := engine.Evaluate(task, &domain.Outcome{ExitCode: 0})
		require.Len(t, failures, 1)
		testify.Equal(t, domain.FailExitCode, failures[0].Kind)
		testify.Equal(t, "expected 1, got 0", failures[0].Message)
	})

	t.Run("signal exit keeps the name", func(t *testing.T) {
		task := &domain.Task{Name: "c", Config: domain.Config{}}
		failures := engine.Evaluate(task, &domain.Outcome{ExitCode: 128 + 9, Signal: "SIGKILL"})
		require.Len(t, failures, 1)
		testify.Contains(t, failures[0].Message, "expected 0, got 137")
		testify.Contains(t, failures[0].Message, "SIGKILL")
	})

	t.Run("timeout reported as such", func(t *testing.T) {
		task := &domain.Task{Name: "c", Config: domain.Config{}}
		failures := engine.Evaluate(task, &domain.Outcome{TimedOut: true, ExitCode: 128 + 15})
		require.Len(t, failures, 1)
		testify.Equal(t, domain.FailTimeout, failures[0].Kind)
	})
}

func TestEvaluate_EqualCheck(t *testing.T) {
	engine := assert.NewEngine()

	t.Run("byte identical passes", func(t *testing.T) {
		task, out := newGoldenTask(t,
			map[string]string{"case.stderr": "warning: x\n"},
			nil)
		task.Config.Assert.Golden = []domain.GoldenCheck{{File: "case.stderr", Equal: true}}
		out.Stderr = []byte("warning: x\n")

		testify.Empty(t, engine.Evaluate(task, out))
	})

	t.Run("one differing line pinpointed", func(t *testing.T) {
		task, out := newGoldenTask(t,
			map[string]string{"case.stderr": "line one\nline two\nline three\n"},
			nil)
		task.Config.Assert.Golden = []domain.GoldenCheck{{File: "case.stderr", Equal: true}}
		out.Stderr = []byte("line one\nline 2\nline three\n")

		failures := engine.Evaluate(task, out)
		require.Len(t, failures, 1)
		testify.Equal(t, domain.FailEqual, failures[0].Kind)
		testify.Contains(t, failures[0].Message, "-line two")
		testify.Contains(t, failures[0].Message, "+line 2")
		testify.Contains(t, failures[0].Message, "@@ -1,3 +1,3 @@")
	})

	t.Run("missing golden file", func(t *testing.T) {
		task, out := newGoldenTask(t, nil, nil)
		task.Config.Assert.Golden = []domain.GoldenCheck{{File: "case.stdout", Equal: true}}

		failures := engine.Evaluate(task, out)
		require.Len(t, failures, 1)
		testify.Contains(t, failures[0].Message, "unable to read golden file")
	})
}

func TestEvaluate_WorkDirTarget(t *testing.T) {
	engine := assert.NewEngine()

	task, out := newGoldenTask(t, nil, map[string]string{"result.txt": "score 9.5\n"})
	task.Config.Assert.Golden = []domain.GoldenCheck{{
		File:  "result.txt",
		Value: []domain.ValueSpec{{Before: regexp.MustCompile(`score`), Cond: domain.CondAtLeast, Want: 9}},
	}}

	testify.Empty(t, engine.Evaluate(task, out))
}

func TestEvaluate_MissingCapturedFile(t *testing.T) {
	engine := assert.NewEngine()

	task, out := newGoldenTask(t, nil, nil)
	task.Config.Assert.Golden = []domain.GoldenCheck{{File: "absent.txt", Equal: true}}

	failures := engine.Evaluate(task, out)
	require.Len(t, failures, 1)
	testify.Equal(t, domain.FailOutput, failures[0].Kind)
}

// Every failure is collected; nothing short-circuits.
func TestEvaluate_CollectsAllFailures(t *testing.T) {
	engine := assert.NewEngine()

	task, out := newGoldenTask(t,
		map[string]string{"case.stdout": "golden text\n"},
		nil)
	out.Stdout = []byte("actual text\n")
	out.ExitCode = 2
	task.Config.Assert.Golden = []domain.GoldenCheck{{
		File:  "case.stdout",
		Equal: true,
		Match: []domain.MatchSpec{{Pattern: regexp.MustCompile(`missing`), Cond: domain.CondExact, Count: 1}},
		Value: []domain.ValueSpec{{Cond: domain.CondExact, Want: 1}},
	}}

	failures := engine.Evaluate(task, out)
	require.Len(t, failures, 4)
	testify.Equal(t, domain.FailExitCode, failures[0].Kind)
	testify.Equal(t, domain.FailEqual, failures[1].Kind)
	testify.Equal(t, domain.FailMatch, failures[2].Kind)
	testify.Equal(t, domain.FailValue, failures[3].Kind)
}

// Two golden entries targeting the same file are evaluated independently.
func TestEvaluate_DuplicateGoldenTargets(t *testing.T) {
	engine := assert.NewEngine()

	task := &domain.Task{Name: "case"}
	task.Config.Assert.Golden = []domain.GoldenCheck{
		{File: "case.stdout", Match: []domain.MatchSpec{{Pattern: regexp.MustCompile(`a`), Cond: domain.CondExact, Count: 1}}},
		{File: "case.stdout", Match: []domain.MatchSpec{{Pattern: regexp.MustCompile(`b`), Cond: domain.CondExact, Count: 5}}},
	}
	out := &domain.Outcome{Stdout: []byte("a b\n")}

	failures := engine.Evaluate(task, out)
	require.Len(t, failures, 1, "first entry passes, second fails on its own")
	testify.Contains(t, failures[0].Message, "want exactly 5, got 1")
}
