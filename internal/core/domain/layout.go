package domain

const (
	// AllConfigName is the name of the directory-scoped config file.
	AllConfigName = "__all__.toml"

	// GoldenDirName is the name of the golden reference directory next to
	// task sources.
	GoldenDirName = "__golden__"

	// DefaultWorkRoot is the work directory root used when --work-dir is
	// not given.
	DefaultWorkRoot = "tmp"

	// PreprocessLogName is the combined log of preprocess hook output,
	// written into the work directory.
	PreprocessLogName = "__debug__.preprocess.log"

	// PostprocessLogName is the combined log of postprocess hook output.
	PostprocessLogName = "__debug__.postprocess.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultEpsilon is the numeric tolerance used when neither the value spec
// nor the task config sets one.
const DefaultEpsilon = 1e-10

// Injected child environment variables describing the task. Explicit envs
// keys win over these.
const (
	EnvName      = "RETEST_NAME"
	EnvExtension = "RETEST_EXTENSION"
	EnvRootDir   = "RETEST_ROOT_DIR"
)
