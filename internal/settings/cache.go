package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source is the backing store behind a Cache.
type Source interface {
	Get(ctx context.Context, key string) (Setting, error)
	All(ctx context.Context) ([]Setting, error)
	Put(ctx context.Context, key string, in Input) (Setting, error)
}

type cacheEntry struct {
	setting   Setting
	expiresAt time.Time
}

// allKey holds the full listing; it cannot collide with a setting key
// because keys come from URL path segments.
const allKey = "\x00all"

// Cache is a read-through TTL cache over a Source. Concurrent misses for
// one key are collapsed into a single load; writes go to the source first
// and then replace the cached entry. Every write or invalidation bumps gen,
// and a load that started under an older gen is returned but not cached.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	items map[string]cacheEntry
	all   []Setting
	allAt time.Time
	gen   uint64
	group singleflight.Group
}

func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		items:  make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, key string) (Setting, error) {
	if st, ok := c.lookup(key); ok {
		return st, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if st, ok := c.lookup(key); ok {
			return st, nil
		}
		gen := c.generation()
		st, err := c.source.Get(ctx, key)
		if err != nil {
			return Setting{}, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.items[st.Key] = cacheEntry{setting: st, expiresAt: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return st, nil
	})
	if err != nil {
		return Setting{}, err
	}
	return v.(Setting), nil
}

func (c *Cache) All(ctx context.Context) ([]Setting, error) {
	c.mu.RLock()
	all, fresh := c.all, c.all != nil && c.now().Before(c.allAt.Add(c.ttl))
	c.mu.RUnlock()
	if fresh {
		return all, nil
	}

	v, err, _ := c.group.Do(allKey, func() (any, error) {
		gen := c.generation()
		all, err := c.source.All(ctx)
		if err != nil {
			return nil, err
		}
		if all == nil {
			all = []Setting{}
		}
		c.mu.Lock()
		if c.gen == gen {
			c.all, c.allAt = all, c.now()
			for _, st := range all {
				c.items[st.Key] = cacheEntry{setting: st, expiresAt: c.now().Add(c.ttl)}
			}
		}
		c.mu.Unlock()
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Setting), nil
}

// Put writes through to the source and refreshes the cached entry.
func (c *Cache) Put(ctx context.Context, key string, in Input) (Setting, error) {
	st, err := c.source.Put(ctx, key, in)
	if err != nil {
		return Setting{}, err
	}
	c.mu.Lock()
	c.gen++
	c.items[st.Key] = cacheEntry{setting: st, expiresAt: c.now().Add(c.ttl)}
	c.all = nil
	c.mu.Unlock()
	return st, nil
}

// Invalidate drops key so the next read goes to the source.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	c.gen++
	delete(c.items, key)
	c.all = nil
	c.mu.Unlock()
}

// Number returns a numeric setting, or def when the key does not exist.
func (c *Cache) Number(ctx context.Context, key string, def float64) (float64, error) {
	st, err := c.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return def, nil
		}
		return def, err
	}
	f, ok := st.Value.(float64)
	if !ok {
		return def, fmt.Errorf("setting %s is %s, not a number", key, st.Type)
	}
	return f, nil
}

func (c *Cache) lookup(key string) (Setting, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return Setting{}, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.items[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return Setting{}, false
	}
	return e.setting, true
}

func (c *Cache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}
