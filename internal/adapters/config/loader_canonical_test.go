package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/retest/internal/adapters/config"
	"go.trai.ch/retest/internal/core/domain"
)

// A config that parses, is re-serialized to canonical TOML and reparsed
// yields an equal effective config.
func TestCanonical_RoundTrip(t *testing.T) {
	res := apply(t, domain.Config{}, `
exe-path = "python"
args = ["a", "b"]
envs = { K = "v" }
extern-files = ["data/*"]
extensions = ["py"]
permits = 2
permit = 1
epsilon = 0.5
timeout = "1s"
print-errs = true
ignore = false

[[postprocess]]
exe-path = "teardown"

[assert]
exit-code = 3

[[assert.golden]]
file = "out.txt"
equal = true
match = [
  { pattern = "a+", count = 1 },
  { pattern = "b", count-at-least = 2 },
  { pattern = "c", count-at-most = 3 },
]
value = [
  { pattern-before = "t:", value = 1.5 },
  { pattern-after = "s", value-at-least = 0.1, epsilon = 0.01 },
]
`, config.ScopeAll)

	first, err := config.Canonical(res.Config)
	require.NoError(t, err)

	// Reparse the canonical form and fold it onto an empty config.
	path := filepath.Join(t.TempDir(), "__all__.toml")
	require.NoError(t, os.WriteFile(path, first, 0o644))
	loader := config.NewLoader(nil)
	reparsed, err := loader.Apply(config.NewResolved(domain.Config{}, "cli"), path, config.ScopeAll)
	require.NoError(t, err)

	second, err := config.Canonical(reparsed.Config)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestDump_ProvenanceHeader(t *testing.T) {
	dir := t.TempDir()
	allPath := filepath.Join(dir, "__all__.toml")
	require.NoError(t, os.WriteFile(allPath, []byte("exe-path = \"sh\"\nargs = [\"x\"]\n"), 0o644))

	loader := config.NewLoader(nil)
	res, err := loader.Apply(config.NewResolved(domain.Config{}, "cli"), allPath, config.ScopeAll)
	require.NoError(t, err)

	dump := string(config.Dump(res))
	assert.Contains(t, dump, "# args: "+allPath)
	assert.Contains(t, dump, "# exe-path: "+allPath)
	assert.Contains(t, dump, "exe-path = 'sh'")
}
