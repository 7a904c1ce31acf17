package assert

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxDiffLines bounds how many differing lines the equality evidence
// records; the rest is summarized by count.
const maxDiffLines = 200

// RenderDiff renders a unified diff between the golden and captured text.
// Adjacent one-line replacements additionally get an inline word-level
// highlight, old segments marked [-…-] and new segments {+…+}.
func RenderDiff(golden, captured string) string {
	diff := difflib.UnifiedDiff{
		A:        splitLines(golden),
		B:        splitLines(captured),
		FromFile: "golden",
		ToFile:   "captured",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "diff unavailable: " + err.Error()
	}

	return capDiff(annotate(text))
}

// splitLines splits s into newline-terminated lines; a final line without a
// newline gets one, and a trailing newline adds no empty line.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n"
	return lines
}

// annotate inserts an inline highlight after each single-line -/+ pair.
func annotate(unified string) string {
	lines := strings.Split(unified, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		out = append(out, lines[i])
		if !strings.HasPrefix(lines[i], "-") || strings.HasPrefix(lines[i], "---") {
			continue
		}
		if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], "+") || strings.HasPrefix(lines[i+1], "+++") {
			continue
		}
		// Only annotate isolated pairs; runs of removals are left as-is.
		if i+2 < len(lines) && (strings.HasPrefix(lines[i+2], "+") || strings.HasPrefix(lines[i+2], "-")) {
			continue
		}

		out = append(out, lines[i+1], "? "+inlineDiff(lines[i][1:], lines[i+1][1:]))
		i++
	}
	return strings.Join(out, "\n")
}

// inlineDiff renders a compact character-level diff of one line pair.
func inlineDiff(oldLine, newLine string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldLine, newLine, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// capDiff truncates the evidence after maxDiffLines differing lines.
func capDiff(text string) string {
	lines := strings.Split(text, "\n")
	changed := 0
	inHunk := false
	for i, line := range lines {
		if strings.HasPrefix(line, "@@") {
			inHunk = true
		}
		if inHunk && (strings.HasPrefix(line, "-") || strings.HasPrefix(line, "+")) {
			changed++
		}
		if changed > maxDiffLines {
			remaining := 0
			for _, rest := range lines[i:] {
				if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "+") {
					remaining++
				}
			}
			lines = append(lines[:i], fmt.Sprintf("... %d more differing lines", remaining))
			return strings.Join(lines, "\n")
		}
	}
	return text
}
