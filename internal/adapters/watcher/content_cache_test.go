package watcher_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/retest/internal/adapters/watcher"
)

func TestContentCache_Changed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.sh")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	cache := watcher.NewContentCache()

	// First sighting always counts as changed.
	assert.Equal(t, []string{path}, cache.Changed([]string{path}))

	// Same content: editor churn is suppressed.
	assert.Empty(t, cache.Changed([]string{path}))

	// Real edit.
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	assert.Equal(t, []string{path}, cache.Changed([]string{path}))

	// Removal counts as changed and forgets the entry.
	require.NoError(t, os.Remove(path))
	assert.Equal(t, []string{path}, cache.Changed([]string{path}))
}
