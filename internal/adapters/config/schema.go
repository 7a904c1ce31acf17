package config

import "time"

// Scope distinguishes the two config file kinds by filename convention.
type Scope uint8

const (
	// ScopeAll is a directory-scoped __all__.toml, inherited by the
	// subtree.
	ScopeAll Scope = iota
	// ScopeTask is a task-scoped <name>.toml next to a task file.
	ScopeTask
)

// File is the TOML schema of a single config file. Every field is
// optional; nil means "not present", which the fold distinguishes from an
// explicit empty value.
type File struct {
	Ignore      *bool             `toml:"ignore,omitempty"`
	Extensions  []string          `toml:"extensions,omitempty"`
	ExePath     *string           `toml:"exe-path,omitempty"`
	Args        []string          `toml:"args,omitempty"`
	Envs        map[string]string `toml:"envs,omitempty"`
	ExternFiles []string          `toml:"extern-files,omitempty"`
	PrintErrs   *bool             `toml:"print-errs,omitempty"`
	Permits     *int64            `toml:"permits,omitempty"`
	Permit      *int64            `toml:"permit,omitempty"`
	Epsilon     *float64          `toml:"epsilon,omitempty"`
	Timeout     *duration         `toml:"timeout,omitempty"`
	Preprocess  []HookDTO         `toml:"preprocess,omitempty"`
	Postprocess []HookDTO         `toml:"postprocess,omitempty"`
	Assert      *AssertDTO        `toml:"assert,omitempty"`
	Extend      *ExtendDTO        `toml:"extend,omitempty"`
}

// HookDTO is one preprocess/postprocess command.
type HookDTO struct {
	ExePath string   `toml:"exe-path"`
	Args    []string `toml:"args,omitempty"`
	WorkDir string   `toml:"work-dir,omitempty"`
}

// ExtendDTO appends onto the parent value instead of replacing it. Only
// args, envs and extern-files support extension.
type ExtendDTO struct {
	Args        []string          `toml:"args,omitempty"`
	Envs        map[string]string `toml:"envs,omitempty"`
	ExternFiles []string          `toml:"extern-files,omitempty"`
}

// AssertDTO is the assertion block.
type AssertDTO struct {
	ExitCode *int        `toml:"exit-code,omitempty"`
	Golden   []GoldenDTO `toml:"golden,omitempty"`
}

// GoldenDTO is one golden check targeting an output file.
type GoldenDTO struct {
	File  string     `toml:"file"`
	Equal *bool      `toml:"equal,omitempty"`
	Match []MatchDTO `toml:"match,omitempty"`
	Value []ValueDTO `toml:"value,omitempty"`
}

// MatchDTO is a regex count spec. Exactly one of the three count fields
// must be set.
type MatchDTO struct {
	Pattern      string `toml:"pattern"`
	Count        *int   `toml:"count,omitempty"`
	CountAtLeast *int   `toml:"count-at-least,omitempty"`
	CountAtMost  *int   `toml:"count-at-most,omitempty"`
}

// ValueDTO is a captured-float spec. Exactly one of the three value fields
// must be set.
type ValueDTO struct {
	PatternBefore *string  `toml:"pattern-before,omitempty"`
	PatternAfter  *string  `toml:"pattern-after,omitempty"`
	Value         *float64 `toml:"value,omitempty"`
	ValueAtLeast  *float64 `toml:"value-at-least,omitempty"`
	ValueAtMost   *float64 `toml:"value-at-most,omitempty"`
	Epsilon       *float64 `toml:"epsilon,omitempty"`
}

// duration makes time.Duration TOML-representable as a string like
// "100ms".
type duration time.Duration

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
