package inventory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// CacheSchemaVersion is the current version of the cache schema
// Increment this when the cached data structure changes to auto-invalidate old entries
const CacheSchemaVersion = "1.0"

// Directory is the land and level source being cached
type Directory interface {
	GetLand(ctx context.Context, landID string) (*domain.Land, error)
	GetUserLevel(ctx context.Context, userID string) (int, error)
}

type cachedLandEntry struct {
	Version  string
	Land     domain.Land
	CachedAt time.Time
}

// CacheStats reports hit and miss counts
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// CachedDirectory caches land lookups. Lands are immutable so only TTL
// and size bound the cache; user levels are always read through.
type CachedDirectory struct {
	inner  Directory
	lru    *expirable.LRU[string, *cachedLandEntry]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedDirectory wraps inner with an LRU of size entries living for ttl
func NewCachedDirectory(inner Directory, size int, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{
		inner: inner,
		lru:   expirable.NewLRU[string, *cachedLandEntry](size, nil, ttl),
	}
}

// GetLand returns a land from cache or the underlying directory
func (c *CachedDirectory) GetLand(ctx context.Context, landID string) (*domain.Land, error) {
	if entry, ok := c.lru.Get(landID); ok {
		if entry.Version == CacheSchemaVersion {
			c.hits.Add(1)
			land := entry.Land
			return &land, nil
		}
		c.lru.Remove(landID)
	}
	c.misses.Add(1)

	land, err := c.inner.GetLand(ctx, landID)
	if err != nil {
		return nil, err
	}
	c.lru.Add(landID, &cachedLandEntry{
		Version:  CacheSchemaVersion,
		Land:     *land,
		CachedAt: time.Now(),
	})
	return land, nil
}

// GetUserLevel is never cached since levels change with play
func (c *CachedDirectory) GetUserLevel(ctx context.Context, userID string) (int, error) {
	return c.inner.GetUserLevel(ctx, userID)
}

// Invalidate drops a land from the cache
func (c *CachedDirectory) Invalidate(landID string) {
	c.lru.Remove(landID)
}

// Stats returns cache counters
func (c *CachedDirectory) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.lru.Len(),
	}
}
