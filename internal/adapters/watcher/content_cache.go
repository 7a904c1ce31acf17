package watcher

import (
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ContentCache remembers a content hash per watched file so editor churn
// that does not change bytes (touches, atomic-save renames) does not
// trigger a re-run.
type ContentCache struct {
	mu     sync.Mutex
	hashes map[string]uint64
}

// NewContentCache creates an empty cache.
func NewContentCache() *ContentCache {
	return &ContentCache{hashes: make(map[string]uint64)}
}

// Changed filters paths down to those whose content actually differs from
// the cached hash. Created and removed files always count as changed.
func (c *ContentCache) Changed(paths []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var changed []string
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- paths come from the watcher
		if err != nil {
			// Removed or unreadable: drop the cached hash and re-run.
			delete(c.hashes, path)
			changed = append(changed, path)
			continue
		}

		sum := xxhash.Sum64(data)
		if prev, ok := c.hashes[path]; ok && prev == sum {
			continue
		}
		c.hashes[path] = sum
		changed = append(changed, path)
	}
	return changed
}
