package utilcss

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// tokenCache memoizes token resolutions for one config snapshot. A stored
// nil slice is a confirmed non-match.
type tokenCache struct {
	mu      sync.RWMutex
	entries map[string][]StringifiedUtil
	group   singleflight.Group
}

func newTokenCache() *tokenCache {
	return &tokenCache{entries: map[string][]StringifiedUtil{}}
}

func (c *tokenCache) get(token string) ([]StringifiedUtil, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	utils, ok := c.entries[token]
	return utils, ok
}

func (c *tokenCache) set(token string, utils []StringifiedUtil) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = utils
}

func (c *tokenCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// resolve returns the cached result for token or computes it once, even
// when several goroutines ask at the same time. Failures are not cached.
func (c *tokenCache) resolve(ctx context.Context, token string, fn func(context.Context, string) ([]StringifiedUtil, error)) ([]StringifiedUtil, error) {
	if utils, ok := c.get(token); ok {
		return utils, nil
	}
	v, err, _ := c.group.Do(token, func() (any, error) {
		if utils, ok := c.get(token); ok {
			return utils, nil
		}
		utils, err := fn(ctx, token)
		if err != nil {
			return nil, err
		}
		c.set(token, utils)
		return utils, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]StringifiedUtil), nil
}
