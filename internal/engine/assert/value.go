package assert

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.trai.ch/retest/internal/core/domain"
)

// floatTokenRe matches one float token. Captures are always parseable by
// strconv.ParseFloat.
var floatTokenRe = regexp.MustCompile(`[-+]?(\d+\.\d*|\.\d+|\d+)([eE][-+]?\d+)?`)

// evidenceCaptures bounds how many failing captures a value failure lists.
const evidenceCaptures = 5

// capture is one extracted float with its source position.
type capture struct {
	value  float64
	offset int
	text   string
}

// checkValue extracts float captures under the spec's anchor rules and
// compares each against the bound within the resolved tolerance.
func checkValue(file string, spec domain.ValueSpec, content string, taskEpsilon float64) []domain.Failure {
	captures, structural := extract(spec, content)

	var failures []domain.Failure
	for _, msg := range structural {
		failures = append(failures, domain.Failure{Kind: domain.FailValue, File: file, Message: msg})
	}

	if len(captures) == 0 && len(structural) == 0 {
		failures = append(failures, domain.Failure{
			Kind:    domain.FailValue,
			File:    file,
			Message: fmt.Sprintf("spec %s captured no value", describeAnchors(spec)),
		})
		return failures
	}

	eps := spec.Tolerance(taskEpsilon)
	var failing []capture
	for _, c := range captures {
		if !holds(spec.Cond, c.value, spec.Want, eps) {
			failing = append(failing, c)
		}
	}
	if len(failing) == 0 {
		return failures
	}

	var b strings.Builder
	fmt.Fprintf(&b, "spec %s want %s, got %d failing capture(s)",
		describeAnchors(spec), describeBound(spec, eps), len(failing))
	for i, c := range failing {
		if i == evidenceCaptures {
			fmt.Fprintf(&b, "\n  ... %d more", len(failing)-evidenceCaptures)
			break
		}
		fmt.Fprintf(&b, "\n  %s at offset %d (line %d)", c.text, c.offset, lineAt(content, c.offset))
	}
	failures = append(failures, domain.Failure{Kind: domain.FailValue, File: file, Message: b.String()})
	return failures
}

func holds(cond domain.Cond, got, want, eps float64) bool {
	switch cond {
	case domain.CondAtLeast:
		return got >= want-eps
	case domain.CondAtMost:
		return got <= want+eps
	default:
		return math.Abs(got-want) <= eps
	}
}

// extract pairs anchor matches with float tokens in a single sweep over
// precomputed position lists, avoiding rescans on large outputs.
func extract(spec domain.ValueSpec, content string) (captures []capture, structural []string) {
	tokens := floatTokenRe.FindAllStringIndex(content, -1)

	switch {
	case spec.Before != nil && spec.After != nil:
		return extractBetween(spec, content, tokens)
	case spec.Before != nil:
		return extractAfterAnchor(spec.Before, content, tokens), nil
	case spec.After != nil:
		return extractBeforeAnchor(spec.After, content, tokens), nil
	default:
		for _, tok := range tokens {
			captures = append(captures, newCapture(content, tok))
		}
		return captures, nil
	}
}

// extractAfterAnchor handles pattern-before: the capture is the next float
// token after each match end, separated only by whitespace.
func extractAfterAnchor(before *regexp.Regexp, content string, tokens [][]int) []capture {
	var captures []capture
	for _, m := range before.FindAllStringIndex(content, -1) {
		i := sort.Search(len(tokens), func(i int) bool { return tokens[i][0] >= m[1] })
		if i == len(tokens) {
			continue
		}
		tok := tokens[i]
		if !whitespaceOnly(content[m[1]:tok[0]]) {
			continue
		}
		captures = append(captures, newCapture(content, tok))
	}
	return captures
}

// extractBeforeAnchor handles pattern-after: the capture is the nearest
// float token preceding each match start, separated only by whitespace.
func extractBeforeAnchor(after *regexp.Regexp, content string, tokens [][]int) []capture {
	var captures []capture
	for _, m := range after.FindAllStringIndex(content, -1) {
		i := sort.Search(len(tokens), func(i int) bool { return tokens[i][1] > m[0] })
		if i == 0 {
			continue
		}
		tok := tokens[i-1]
		if !whitespaceOnly(content[tok[1]:m[0]]) {
			continue
		}
		captures = append(captures, newCapture(content, tok))
	}
	return captures
}

// extractBetween handles both anchors: for each before-match the nearest
// subsequent after-match is found, and the capture is the unique float
// token between them. Zero or several tokens between the anchors is a
// structural mismatch.
func extractBetween(spec domain.ValueSpec, content string, tokens [][]int) (captures []capture, structural []string) {
	befores := spec.Before.FindAllStringIndex(content, -1)
	afters := spec.After.FindAllStringIndex(content, -1)

	ai := 0
	ti := 0
	for _, b := range befores {
		for ai < len(afters) && afters[ai][0] < b[1] {
			ai++
		}
		if ai == len(afters) {
			break
		}
		a := afters[ai]

		for ti < len(tokens) && tokens[ti][0] < b[1] {
			ti++
		}
		count := 0
		var tok []int
		for j := ti; j < len(tokens) && tokens[j][1] <= a[0]; j++ {
			count++
			tok = tokens[j]
		}

		if count != 1 {
			structural = append(structural, fmt.Sprintf(
				"expected exactly one float between %q (offset %d) and %q, found %d",
				content[b[0]:b[1]], b[0], content[a[0]:a[1]], count))
			continue
		}
		captures = append(captures, newCapture(content, tok))
	}
	return captures, structural
}

func newCapture(content string, tok []int) capture {
	text := content[tok[0]:tok[1]]
	value, _ := strconv.ParseFloat(text, 64)
	return capture{value: value, offset: tok[0], text: text}
}

func whitespaceOnly(s string) bool {
	return strings.TrimSpace(s) == ""
}

func describeAnchors(spec domain.ValueSpec) string {
	switch {
	case spec.Before != nil && spec.After != nil:
		return fmt.Sprintf("between %q and %q", spec.Before, spec.After)
	case spec.Before != nil:
		return fmt.Sprintf("after %q", spec.Before)
	case spec.After != nil:
		return fmt.Sprintf("before %q", spec.After)
	default:
		return "every float"
	}
}

func describeBound(spec domain.ValueSpec, eps float64) string {
	switch spec.Cond {
	case domain.CondAtLeast:
		return fmt.Sprintf(">= %g (-%g)", spec.Want, eps)
	case domain.CondAtMost:
		return fmt.Sprintf("<= %g (+%g)", spec.Want, eps)
	default:
		return fmt.Sprintf("%g (±%g)", spec.Want, eps)
	}
}
