// internal/app/system/codecache/codecache.go
package codecache

import (
	"context"
	"sync"
	"time"
)

// Cache memoizes resolved organization codes keyed by organization id.
// It is best-effort: a stale or missing entry costs one redundant
// resolution and backfill write, never a wrong answer, so implementations
// may drop entries at will.
type Cache interface {
	Get(ctx context.Context, orgID string) (code string, ok bool)
	Set(ctx context.Context, orgID, code string)
	Invalidate(ctx context.Context, orgID string)
}

// DefaultTTL is how long a cached code is trusted before re-resolution.
const DefaultTTL = 5 * time.Minute

type memoryEntry struct {
	code    string
	expires time.Time
}

// Memory is the in-process Cache used by default and in tests.
type Memory struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]memoryEntry
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, m: make(map[string]memoryEntry)}
}

func (c *Memory) Get(ctx context.Context, orgID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[orgID]
	if !ok {
		return "", false
	}
	if time.Now().After(e.expires) {
		delete(c.m, orgID)
		return "", false
	}
	return e.code, true
}

func (c *Memory) Set(ctx context.Context, orgID, code string) {
	c.mu.Lock()
	c.m[orgID] = memoryEntry{code: code, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Memory) Invalidate(ctx context.Context, orgID string) {
	c.mu.Lock()
	delete(c.m, orgID)
	c.mu.Unlock()
}
