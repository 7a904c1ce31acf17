package assert

import (
	"fmt"
	"strings"

	"go.trai.ch/retest/internal/core/domain"
)

// evidenceMatches bounds how many matches a count-mismatch failure lists.
const evidenceMatches = 10

// checkMatch counts non-overlapping matches of the spec pattern over the
// whole content and compares against the configured bound.
func checkMatch(file string, spec domain.MatchSpec, content string) []domain.Failure {
	locs := spec.Pattern.FindAllStringIndex(content, -1)
	got := len(locs)

	ok := false
	switch spec.Cond {
	case domain.CondExact:
		ok = got == spec.Count
	case domain.CondAtLeast:
		ok = got >= spec.Count
	case domain.CondAtMost:
		ok = got <= spec.Count
	}
	if ok {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "pattern %q want %s %d, got %d", spec.Pattern, spec.Cond, spec.Count, got)
	for i, loc := range locs {
		if i == evidenceMatches {
			fmt.Fprintf(&b, "\n  ... %d more matches", got-evidenceMatches)
			break
		}
		fmt.Fprintf(&b, "\n  #%d at line %d: %q", i+1, lineAt(content, loc[0]), content[loc[0]:loc[1]])
	}

	return []domain.Failure{{Kind: domain.FailMatch, File: file, Message: b.String()}}
}

// lineAt returns the 1-based line number of a byte offset.
func lineAt(content string, offset int) int {
	return 1 + strings.Count(content[:offset], "\n")
}
