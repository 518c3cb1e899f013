package resolve

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	path string
	ok   bool
}

// Cached memoizes another resolver, negative results included.
type Cached struct {
	next  Resolver
	cache *lru.Cache[string, cacheEntry]
}

// NewCached wraps next with an LRU cache holding up to size names.
func NewCached(next Resolver, size int) (*Cached, error) {
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

// Resolve implements Resolver. Errors are not cached.
func (c *Cached) Resolve(ctx context.Context, name string) (string, bool, error) {
	if e, ok := c.cache.Get(name); ok {
		return e.path, e.ok, nil
	}
	path, ok, err := c.next.Resolve(ctx, name)
	if err != nil {
		return "", false, err
	}
	c.cache.Add(name, cacheEntry{path: path, ok: ok})
	return path, ok, nil
}
