package classify

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/geopulse/coherence/internal/service"
)

// resultCache memoizes classifier results by content hash with a TTL, so
// re-running a batch does not re-bill unchanged articles.
type resultCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

type cacheEntry struct {
	expiresAt time.Time
	result    service.ClassifierResult
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *resultCache) get(key string) (*service.ClassifierResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}

	result := entry.result
	return &result, true
}

func (c *resultCache) set(key string, result *service.ClassifierResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		result:    *result,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func cacheKey(title, content string) string {
	hash := sha256.Sum256([]byte(title + "\x00" + content))
	return fmt.Sprintf("%x", hash)
}
