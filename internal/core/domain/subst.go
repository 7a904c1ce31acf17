package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Vars carries the variable surface available to config templates.
type Vars struct {
	RootDir   string
	Name      string
	Extension string
}

func (v Vars) lookup(name string) (string, bool) {
	switch name {
	case "root-dir":
		return v.RootDir, true
	case "name":
		return v.Name, true
	case "extension":
		return v.Extension, true
	default:
		return "", false
	}
}

// Substitute expands {{root-dir}}, {{name}} and {{extension}} tokens in s.
// The scan is a single left-to-right pass; expanded text is not rescanned,
// and an expansion that would reintroduce a {{ token is an error.
func Substitute(s string, vars Vars) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	rest := s
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:open])
		rest = rest[open:]

		end := strings.Index(rest, "}}")
		if end < 0 {
			return "", zerr.With(ErrUnresolvedToken, "template", s)
		}
		name := rest[2:end]
		value, ok := vars.lookup(name)
		if !ok {
			return "", zerr.With(zerr.With(ErrUnknownVariable, "variable", name), "template", s)
		}
		if strings.Contains(value, "{{") {
			return "", zerr.With(zerr.With(ErrUnresolvedToken, "variable", name), "template", s)
		}
		b.WriteString(value)
		rest = rest[end+2:]
	}
}

// SubstituteAll expands every string of a slice in place order, returning a
// new slice.
func SubstituteAll(in []string, vars Vars) ([]string, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		expanded, err := Substitute(s, vars)
		if err != nil {
			return nil, err
		}
		out[i] = expanded
	}
	return out, nil
}
