package assert_test

import (
	"regexp"
	"testing"

	testify "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/engine/assert"
)

func evalValue(t *testing.T, content string, taskEpsilon float64, specs ...domain.ValueSpec) []domain.Failure {
	t.Helper()
	task := &domain.Task{
		Name: "case",
		Config: domain.Config{
			Epsilon: taskEpsilon,
			Assert: domain.Assert{
				Golden: []domain.GoldenCheck{{File: "case.stdout", Value: specs}},
			},
		},
	}
	out := &domain.Outcome{Stdout: []byte(content)}
	return assert.NewEngine().Evaluate(task, out)
}

func re(pattern string) *regexp.Regexp { return regexp.MustCompile(pattern) }

func eps(v float64) *float64 { return &v }

func TestCheckValue_PatternBefore(t *testing.T) {
	const content = "before foo 4.003 after\n"

	t.Run("within epsilon", func(t *testing.T) {
		failures := evalValue(t, content, 0, domain.ValueSpec{
			Before: re(`f.*o`), Cond: domain.CondExact, Want: 4.0, Epsilon: eps(0.01),
		})
		testify.Empty(t, failures)
	})

	t.Run("outside epsilon", func(t *testing.T) {
		failures := evalValue(t, content, 0, domain.ValueSpec{
			Before: re(`f.*o`), Cond: domain.CondExact, Want: 4.0, Epsilon: eps(0.001),
		})
		require.Len(t, failures, 1)
		testify.Equal(t, domain.FailValue, failures[0].Kind)
		testify.Contains(t, failures[0].Message, "4.003")
	})

	t.Run("non-whitespace gap contributes no capture", func(t *testing.T) {
		failures := evalValue(t, "label: x 1.5\n", 0, domain.ValueSpec{
			Before: re(`label:`), Cond: domain.CondExact, Want: 1.5,
		})
		// The only occurrence yields nothing, so the spec reports no
		// capture at all.
		require.Len(t, failures, 1)
		testify.Contains(t, failures[0].Message, "captured no value")
	})
}

func TestCheckValue_PatternAfter(t *testing.T) {
	const content = "12.5 ms elapsed\n"

	failures := evalValue(t, content, 0, domain.ValueSpec{
		After: re(`ms`), Cond: domain.CondAtMost, Want: 13,
	})
	testify.Empty(t, failures)

	failures = evalValue(t, content, 0, domain.ValueSpec{
		After: re(`ms`), Cond: domain.CondAtMost, Want: 12,
	})
	require.Len(t, failures, 1)
}

func TestCheckValue_BothPatterns(t *testing.T) {
	t.Run("unique float between anchors", func(t *testing.T) {
		failures := evalValue(t, "t= 3.14 s\n", 0, domain.ValueSpec{
			Before: re(`t=`), After: re(`s`), Cond: domain.CondExact, Want: 3.14,
		})
		testify.Empty(t, failures)
	})

	t.Run("several floats is a structural mismatch", func(t *testing.T) {
		failures := evalValue(t, "t= 1 2 s\n", 0, domain.ValueSpec{
			Before: re(`t=`), After: re(`s`), Cond: domain.CondExact, Want: 1,
		})
		require.Len(t, failures, 1)
		testify.Contains(t, failures[0].Message, "found 2")
	})

	t.Run("zero floats is a structural mismatch", func(t *testing.T) {
		failures := evalValue(t, "t= nothing s\n", 0, domain.ValueSpec{
			Before: re(`t=`), After: re(`s`), Cond: domain.CondExact, Want: 1,
		})
		require.Len(t, failures, 1)
		testify.Contains(t, failures[0].Message, "found 0")
	})
}

func TestCheckValue_NoAnchors(t *testing.T) {
	const content = "1.0 2.0 -3e2\n"

	t.Run("every float captured", func(t *testing.T) {
		failures := evalValue(t, content, 0, domain.ValueSpec{
			Cond: domain.CondAtLeast, Want: -300,
		})
		testify.Empty(t, failures)
	})

	t.Run("each failing capture reported with offsets", func(t *testing.T) {
		failures := evalValue(t, content, 0, domain.ValueSpec{
			Cond: domain.CondAtLeast, Want: 1.5,
		})
		require.Len(t, failures, 1)
		testify.Contains(t, failures[0].Message, "got 2 failing capture(s)")
		testify.Contains(t, failures[0].Message, "offset 0")
	})
}

func TestCheckValue_EpsilonResolution(t *testing.T) {
	const content = "v 1.05\n"
	spec := domain.ValueSpec{Before: re(`v`), Cond: domain.CondExact, Want: 1.0}

	// Task epsilon applies when the spec has none.
	testify.Empty(t, evalValue(t, content, 0.1, spec))
	require.Len(t, evalValue(t, content, 0.001, spec), 1)

	// Spec epsilon wins over the task's.
	spec.Epsilon = eps(0.1)
	testify.Empty(t, evalValue(t, content, 0.001, spec))
}

func TestCheckValue_ScientificNotation(t *testing.T) {
	failures := evalValue(t, "E -3.14e-2 end\n", 0, domain.ValueSpec{
		Before: re(`E`), Cond: domain.CondExact, Want: -0.0314, Epsilon: eps(1e-9),
	})
	testify.Empty(t, failures)
}
