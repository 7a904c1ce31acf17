package domain

import "go.trai.ch/zerr"

// Fatal run-level sentinels. The CLI maps these to process exit codes:
// ErrTasksFailed exits 1, ErrSetupFailed exits 2.
var (
	// ErrTasksFailed is returned when at least one task failed its assertions.
	ErrTasksFailed = zerr.New("at least one task failed")

	// ErrSetupFailed is returned for config or discovery errors that abort
	// the run before any task was admitted.
	ErrSetupFailed = zerr.New("run setup failed")
)

// Configuration sentinels. All are joined under ErrSetupFailed before the
// run aborts.
var (
	// ErrConfigRead is returned when a config file cannot be read.
	ErrConfigRead = zerr.New("failed to read config file")

	// ErrConfigParse is returned when a config file is not valid TOML or
	// carries unknown keys.
	ErrConfigParse = zerr.New("failed to parse config file")

	// ErrExtensionsScope is returned when a task-scoped config declares
	// extensions, which may only come from __all__.toml or the CLI.
	ErrExtensionsScope = zerr.New("extensions may only be set in __all__.toml")

	// ErrPermitsScope is returned when a task-scoped config declares the
	// total permits, which may only come from __all__.toml or the CLI.
	ErrPermitsScope = zerr.New("permits may only be set in __all__.toml")

	// ErrExtendConflict is returned when a file both replaces a key and
	// extends the same key.
	ErrExtendConflict = zerr.New("key is both replaced and extended in the same file")

	// ErrCountSpec is returned when a match spec does not set exactly one
	// of count, count-at-least, count-at-most.
	ErrCountSpec = zerr.New("exactly one of count, count-at-least, count-at-most must be set")

	// ErrValueSpec is returned when a value spec does not set exactly one
	// of value, value-at-least, value-at-most.
	ErrValueSpec = zerr.New("exactly one of value, value-at-least, value-at-most must be set")

	// ErrBadPattern is returned when a configured regular expression does
	// not compile.
	ErrBadPattern = zerr.New("regular expression does not compile")

	// ErrUnknownVariable is returned when substitution meets a {{token}}
	// that names no known variable.
	ErrUnknownVariable = zerr.New("unknown substitution variable")

	// ErrUnresolvedToken is returned when substitution would produce text
	// still containing an unresolved {{ token.
	ErrUnresolvedToken = zerr.New("substitution produced an unresolved token")

	// ErrMissingExePath is returned when a task has no exe-path after the
	// full config fold.
	ErrMissingExePath = zerr.New("exe-path is not configured")

	// ErrTomlExtension is returned when "toml" is declared as a task
	// extension; sidecar config files can never be tasks.
	ErrTomlExtension = zerr.New("extensions cannot contain 'toml'")

	// ErrEpsilonRange is returned for a zero or negative epsilon.
	ErrEpsilonRange = zerr.New("epsilon must be positive")
)

// Discovery sentinels.
var (
	// ErrReadDir is returned when a directory cannot be enumerated.
	ErrReadDir = zerr.New("failed to read directory")

	// ErrBadGlob is returned for a malformed include or exclude glob.
	ErrBadGlob = zerr.New("malformed glob pattern")
)

// Per-task execution sentinels. These never abort the run; the scheduler
// normalizes them into failed verdicts.
var (
	// ErrStaging is returned when the work directory cannot be populated.
	ErrStaging = zerr.New("failed to stage work directory")

	// ErrSpawn is returned when the child process cannot be started.
	ErrSpawn = zerr.New("failed to spawn child process")

	// ErrHook is returned when a preprocess or postprocess hook fails.
	ErrHook = zerr.New("hook command failed")

	// ErrTimeout marks a child terminated by the per-task timeout.
	ErrTimeout = zerr.New("task timed out")

	// ErrCollect is returned when captured output cannot be persisted.
	ErrCollect = zerr.New("failed to collect task output")
)
