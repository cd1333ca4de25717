package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/abiiranathan/this-fallback/analyzer/fallback"
)

// resultCache keeps finished results keyed by input digest so unchanged
// templates are not transformed again in watch mode.
type resultCache struct {
	mu    sync.RWMutex      // Protects concurrent map access
	cache map[string]Result // Keyed by cacheKey
}

// newResultCache initializes an empty cache.
func newResultCache() *resultCache {
	return &resultCache{
		cache: make(map[string]Result, 64),
	}
}

// get retrieves a cached result with a read lock.
func (rc *resultCache) get(k string) (Result, bool) {
	rc.mu.RLock()
	v, ok := rc.cache[k]
	rc.mu.RUnlock()
	return v, ok
}

// set stores a result with a write lock.
func (rc *resultCache) set(k string, v Result) {
	rc.mu.Lock()
	rc.cache[k] = v
	rc.mu.Unlock()
}

// len returns the number of cached results.
func (rc *resultCache) len() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.cache)
}

// cacheKey digests everything a result depends on: the plugin identity,
// the options, the file path (it names the module) and the file content.
func cacheKey(opts fallback.Options, path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(fallback.CacheKey))
	for _, helper := range []fallback.RuntimeHelper{
		opts.Helpers.IsInvocable,
		opts.Helpers.InvokeInvocable,
		opts.Helpers.TryLookupHelper,
		opts.Helpers.DeprecationsHelper,
	} {
		h.Write([]byte{0})
		h.Write([]byte(helper.Module + "#" + helper.Export + "#" + helper.NameHint))
	}
	if opts.EnableLogging {
		h.Write([]byte{1})
	}
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
