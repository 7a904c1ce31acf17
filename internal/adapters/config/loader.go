// Package config implements the TOML configuration model: strict parsing,
// the hierarchical fold with override and extend semantics, and canonical
// re-serialization for --debug dumps.
package config

import (
	"bytes"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/core/ports"
	"go.trai.ch/zerr"
)

// Loader reads and folds config files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Resolved is an effective config plus the provenance of each top-level
// key, used by the --debug dump.
type Resolved struct {
	Config domain.Config

	// Sources maps a top-level key to the config files that contributed
	// it, in fold order. Extended keys carry several entries.
	Sources map[string][]string
}

// NewResolved wraps the CLI-derived base config as the fold starting
// point.
func NewResolved(base domain.Config, origin string) Resolved {
	sources := make(map[string][]string)
	for _, key := range presentKeys(base) {
		sources[key] = []string{origin}
	}
	return Resolved{Config: base, Sources: sources}
}

// Clone deep-copies the resolved config so sibling directories never share
// fold state.
func (r Resolved) Clone() Resolved {
	sources := make(map[string][]string, len(r.Sources))
	for k, v := range r.Sources {
		sources[k] = append([]string(nil), v...)
	}
	return Resolved{Config: r.Config.Clone(), Sources: sources}
}

// Apply reads the config file at path and folds it onto res.
func (l *Loader) Apply(res Resolved, path string, scope Scope) (Resolved, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the discovery walk
	if err != nil {
		return res, zerr.With(zerr.Wrap(err, domain.ErrConfigRead.Error()), "file", path)
	}

	f, err := Parse(data, path, scope)
	if err != nil {
		return res, err
	}

	return fold(res, f, path)
}

// Parse decodes one config file with strict schema checking. Unknown keys
// are config errors.
func Parse(data []byte, path string, scope Scope) (*File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParse.Error()), "file", path)
	}

	if err := validate(&f, path, scope); err != nil {
		return nil, err
	}
	return &f, nil
}

//nolint:cyclop // flat field-by-field validation
func validate(f *File, path string, scope Scope) error {
	fail := func(sentinel error, kv ...string) error {
		err := zerr.With(sentinel, "file", path)
		for i := 0; i+1 < len(kv); i += 2 {
			err = zerr.With(err, kv[i], kv[i+1])
		}
		return err
	}

	if scope == ScopeTask {
		if f.Extensions != nil {
			return fail(domain.ErrExtensionsScope)
		}
		if f.Permits != nil {
			return fail(domain.ErrPermitsScope)
		}
	}
	if slices.Contains(f.Extensions, "toml") {
		return fail(domain.ErrTomlExtension)
	}
	if f.Epsilon != nil && *f.Epsilon <= 0 {
		return fail(domain.ErrEpsilonRange)
	}
	if f.Permit != nil && *f.Permit < 0 {
		return fail(zerr.New("permit must not be negative"))
	}
	if f.Permits != nil && *f.Permits < 1 {
		return fail(zerr.New("permits must be positive"))
	}
	if f.Timeout != nil && time.Duration(*f.Timeout) <= 0 {
		return fail(zerr.New("timeout must be positive"))
	}

	if f.Extend != nil {
		if f.Args != nil && f.Extend.Args != nil {
			return fail(domain.ErrExtendConflict, "key", "args")
		}
		if f.Envs != nil && f.Extend.Envs != nil {
			return fail(domain.ErrExtendConflict, "key", "envs")
		}
		if f.ExternFiles != nil && f.Extend.ExternFiles != nil {
			return fail(domain.ErrExtendConflict, "key", "extern-files")
		}
	}

	for _, hook := range append(append([]HookDTO(nil), f.Preprocess...), f.Postprocess...) {
		if hook.ExePath == "" {
			return fail(zerr.New("hook needs an exe-path"))
		}
	}

	if f.Assert != nil {
		if err := validateAssert(f.Assert, path); err != nil {
			return err
		}
	}
	return nil
}

func validateAssert(a *AssertDTO, path string) error {
	for _, g := range a.Golden {
		if g.File == "" {
			return zerr.With(zerr.With(zerr.New("golden check needs a file"), "file", path), "key", "assert.golden")
		}
		for _, m := range g.Match {
			if countOf(m.Count != nil, m.CountAtLeast != nil, m.CountAtMost != nil) != 1 {
				return zerr.With(zerr.With(domain.ErrCountSpec, "file", path), "pattern", m.Pattern)
			}
		}
		for _, v := range g.Value {
			if countOf(v.Value != nil, v.ValueAtLeast != nil, v.ValueAtMost != nil) != 1 {
				return zerr.With(domain.ErrValueSpec, "file", path)
			}
			if v.Epsilon != nil && *v.Epsilon <= 0 {
				return zerr.With(zerr.With(domain.ErrEpsilonRange, "file", path), "key", "assert.golden.value")
			}
		}
	}
	return nil
}

func countOf(set ...bool) int {
	n := 0
	for _, s := range set {
		if s {
			n++
		}
	}
	return n
}

// fold merges one parsed file onto the inherited config: scalars replace,
// sequences and mappings replace unless extended, assert merges
// structurally with the child's golden sequence replacing the parent's.
//
//nolint:cyclop,funlen // flat key-by-key fold
func fold(res Resolved, f *File, path string) (Resolved, error) {
	out := res.Clone()
	cfg := &out.Config

	set := func(key string) {
		out.Sources[key] = []string{path}
	}
	extend := func(key string) {
		out.Sources[key] = append(out.Sources[key], path)
	}

	if f.Ignore != nil {
		cfg.Ignore = *f.Ignore
		set("ignore")
	}
	if f.PrintErrs != nil {
		cfg.PrintErrs = *f.PrintErrs
		set("print-errs")
	}
	if f.ExePath != nil {
		cfg.ExePath = *f.ExePath
		set("exe-path")
	}
	if f.Permit != nil {
		cfg.Permit = *f.Permit
		set("permit")
	}
	if f.Permits != nil {
		cfg.Permits = *f.Permits
		set("permits")
	}
	if f.Epsilon != nil {
		cfg.Epsilon = *f.Epsilon
		set("epsilon")
	}
	if f.Timeout != nil {
		cfg.Timeout = time.Duration(*f.Timeout)
		set("timeout")
	}
	if f.Extensions != nil {
		cfg.Extensions = dedupe(f.Extensions)
		set("extensions")
	}
	if f.Args != nil {
		cfg.Args = append([]string(nil), f.Args...)
		set("args")
	}
	if f.Envs != nil {
		cfg.Envs = make(map[string]string, len(f.Envs))
		for k, v := range f.Envs {
			cfg.Envs[k] = v
		}
		set("envs")
	}
	if f.ExternFiles != nil {
		cfg.ExternFiles = append([]string(nil), f.ExternFiles...)
		set("extern-files")
	}
	if f.Preprocess != nil {
		cfg.Preprocess = buildHooks(f.Preprocess)
		set("preprocess")
	}
	if f.Postprocess != nil {
		cfg.Postprocess = buildHooks(f.Postprocess)
		set("postprocess")
	}

	if f.Assert != nil {
		if f.Assert.ExitCode != nil {
			cfg.Assert.ExitCode = *f.Assert.ExitCode
		}
		if f.Assert.Golden != nil {
			golden, err := buildGolden(f.Assert.Golden, path)
			if err != nil {
				return res, err
			}
			cfg.Assert.Golden = golden
		}
		set("assert")
	}

	if f.Extend != nil {
		if f.Extend.Args != nil {
			cfg.Args = append(cfg.Args, f.Extend.Args...)
			extend("args")
		}
		if f.Extend.Envs != nil {
			if cfg.Envs == nil {
				cfg.Envs = make(map[string]string, len(f.Extend.Envs))
			}
			for k, v := range f.Extend.Envs {
				cfg.Envs[k] = v
			}
			extend("envs")
		}
		if f.Extend.ExternFiles != nil {
			cfg.ExternFiles = append(cfg.ExternFiles, f.Extend.ExternFiles...)
			extend("extern-files")
		}
	}

	return out, nil
}

func buildHooks(dtos []HookDTO) []domain.Hook {
	hooks := make([]domain.Hook, len(dtos))
	for i, h := range dtos {
		hooks[i] = domain.Hook{
			ExePath: h.ExePath,
			Args:    append([]string(nil), h.Args...),
			WorkDir: h.WorkDir,
		}
	}
	return hooks
}

func buildGolden(dtos []GoldenDTO, path string) ([]domain.GoldenCheck, error) {
	golden := make([]domain.GoldenCheck, len(dtos))
	for i, g := range dtos {
		check := domain.GoldenCheck{File: g.File}
		if g.Equal != nil {
			check.Equal = *g.Equal
		}

		for _, m := range g.Match {
			re, err := compile(m.Pattern, path)
			if err != nil {
				return nil, err
			}
			spec := domain.MatchSpec{Pattern: re}
			switch {
			case m.Count != nil:
				spec.Cond, spec.Count = domain.CondExact, *m.Count
			case m.CountAtLeast != nil:
				spec.Cond, spec.Count = domain.CondAtLeast, *m.CountAtLeast
			case m.CountAtMost != nil:
				spec.Cond, spec.Count = domain.CondAtMost, *m.CountAtMost
			}
			check.Match = append(check.Match, spec)
		}

		for _, v := range g.Value {
			spec := domain.ValueSpec{Epsilon: v.Epsilon}
			if v.PatternBefore != nil {
				re, err := compile(*v.PatternBefore, path)
				if err != nil {
					return nil, err
				}
				spec.Before = re
			}
			if v.PatternAfter != nil {
				re, err := compile(*v.PatternAfter, path)
				if err != nil {
					return nil, err
				}
				spec.After = re
			}
			switch {
			case v.Value != nil:
				spec.Cond, spec.Want = domain.CondExact, *v.Value
			case v.ValueAtLeast != nil:
				spec.Cond, spec.Want = domain.CondAtLeast, *v.ValueAtLeast
			case v.ValueAtMost != nil:
				spec.Cond, spec.Want = domain.CondAtMost, *v.ValueAtMost
			}
			check.Value = append(check.Value, spec)
		}

		golden[i] = check
	}
	return golden, nil
}

func compile(pattern, path string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		err = zerr.Wrap(err, domain.ErrBadPattern.Error())
		err = zerr.With(err, "pattern", pattern)
		return nil, zerr.With(err, "file", path)
	}
	return re, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Finalize substitutes the task variables into every templated string
// field and runs the final completeness checks. The returned config is the
// task's immutable effective config.
func Finalize(cfg domain.Config, vars domain.Vars) (domain.Config, error) {
	out := cfg.Clone()
	var err error

	if out.ExePath, err = domain.Substitute(out.ExePath, vars); err != nil {
		return out, err
	}
	if out.Args, err = domain.SubstituteAll(out.Args, vars); err != nil {
		return out, err
	}
	if out.ExternFiles, err = domain.SubstituteAll(out.ExternFiles, vars); err != nil {
		return out, err
	}
	for k, v := range out.Envs {
		if out.Envs[k], err = domain.Substitute(v, vars); err != nil {
			return out, err
		}
	}
	for i := range out.Preprocess {
		if err = substituteHook(&out.Preprocess[i], vars); err != nil {
			return out, err
		}
	}
	for i := range out.Postprocess {
		if err = substituteHook(&out.Postprocess[i], vars); err != nil {
			return out, err
		}
	}
	for i := range out.Assert.Golden {
		if out.Assert.Golden[i].File, err = domain.Substitute(out.Assert.Golden[i].File, vars); err != nil {
			return out, err
		}
	}

	if out.ExePath == "" {
		return out, domain.ErrMissingExePath
	}
	return out, nil
}

func substituteHook(h *domain.Hook, vars domain.Vars) error {
	var err error
	if h.ExePath, err = domain.Substitute(h.ExePath, vars); err != nil {
		return err
	}
	if h.Args, err = domain.SubstituteAll(h.Args, vars); err != nil {
		return err
	}
	h.WorkDir, err = domain.Substitute(h.WorkDir, vars)
	return err
}

// Canonical re-serializes an effective config to canonical TOML. Parsing
// the result and folding it onto an empty config yields an equal effective
// config.
func Canonical(cfg domain.Config) ([]byte, error) {
	f := toFile(cfg)
	data, err := toml.Marshal(f)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to serialize config")
	}
	return data, nil
}

//nolint:cyclop // flat field-by-field mapping
func toFile(cfg domain.Config) *File {
	f := &File{
		Extensions:  cfg.Extensions,
		Args:        cfg.Args,
		Envs:        cfg.Envs,
		ExternFiles: cfg.ExternFiles,
	}
	if cfg.Ignore {
		f.Ignore = &cfg.Ignore
	}
	if cfg.PrintErrs {
		f.PrintErrs = &cfg.PrintErrs
	}
	if cfg.ExePath != "" {
		f.ExePath = &cfg.ExePath
	}
	if cfg.Permit != 0 {
		f.Permit = &cfg.Permit
	}
	if cfg.Permits != 0 {
		f.Permits = &cfg.Permits
	}
	if cfg.Epsilon != 0 {
		f.Epsilon = &cfg.Epsilon
	}
	if cfg.Timeout != 0 {
		d := duration(cfg.Timeout)
		f.Timeout = &d
	}
	for _, h := range cfg.Preprocess {
		f.Preprocess = append(f.Preprocess, HookDTO{ExePath: h.ExePath, Args: h.Args, WorkDir: h.WorkDir})
	}
	for _, h := range cfg.Postprocess {
		f.Postprocess = append(f.Postprocess, HookDTO{ExePath: h.ExePath, Args: h.Args, WorkDir: h.WorkDir})
	}

	assert := &AssertDTO{}
	if cfg.Assert.ExitCode != 0 {
		assert.ExitCode = &cfg.Assert.ExitCode
	}
	for _, g := range cfg.Assert.Golden {
		dto := GoldenDTO{File: g.File}
		if g.Equal {
			equal := true
			dto.Equal = &equal
		}
		for _, m := range g.Match {
			mdto := MatchDTO{Pattern: m.Pattern.String()}
			count := m.Count
			switch m.Cond {
			case domain.CondAtLeast:
				mdto.CountAtLeast = &count
			case domain.CondAtMost:
				mdto.CountAtMost = &count
			default:
				mdto.Count = &count
			}
			dto.Match = append(dto.Match, mdto)
		}
		for _, v := range g.Value {
			vdto := ValueDTO{Epsilon: v.Epsilon}
			if v.Before != nil {
				s := v.Before.String()
				vdto.PatternBefore = &s
			}
			if v.After != nil {
				s := v.After.String()
				vdto.PatternAfter = &s
			}
			want := v.Want
			switch v.Cond {
			case domain.CondAtLeast:
				vdto.ValueAtLeast = &want
			case domain.CondAtMost:
				vdto.ValueAtMost = &want
			default:
				vdto.Value = &want
			}
			dto.Value = append(dto.Value, vdto)
		}
		assert.Golden = append(assert.Golden, dto)
	}
	if assert.ExitCode != nil || assert.Golden != nil {
		f.Assert = assert
	}
	return f
}

// Dump renders a resolved config for the --debug surface: a provenance
// header naming the file that contributed each key, followed by the
// canonical TOML.
func Dump(res Resolved) []byte {
	keys := make([]string, 0, len(res.Sources))
	for k := range res.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b bytes.Buffer
	for _, k := range keys {
		b.WriteString("# " + k + ": " + strings.Join(res.Sources[k], ", ") + "\n")
	}

	data, err := Canonical(res.Config)
	if err != nil {
		b.WriteString("# serialization failed: " + err.Error() + "\n")
		return b.Bytes()
	}
	b.Write(data)
	return b.Bytes()
}

func presentKeys(cfg domain.Config) []string {
	var keys []string
	if cfg.ExePath != "" {
		keys = append(keys, "exe-path")
	}
	if cfg.Args != nil {
		keys = append(keys, "args")
	}
	if cfg.Extensions != nil {
		keys = append(keys, "extensions")
	}
	if cfg.Permits != 0 {
		keys = append(keys, "permits")
	}
	if cfg.Epsilon != 0 {
		keys = append(keys, "epsilon")
	}
	if cfg.PrintErrs {
		keys = append(keys, "print-errs")
	}
	return keys
}
