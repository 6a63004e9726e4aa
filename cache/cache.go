// Package cache is a bounded in-memory cache with per-entry expiry and
// coalesced fetches of missing keys.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultCapacity = 128
	DefaultTTL      = 300 * time.Second
)

// Observer receives cache statistics.
type Observer interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheEviction()
}

type nopObserver struct{}

func (nopObserver) RecordCacheHit()      {}
func (nopObserver) RecordCacheMiss()     {}
func (nopObserver) RecordCacheEviction() {}

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache maps string keys to values of type V. Keys are opaque; callers
// build composite keys such as "<workspace>:<poll>" themselves.
//
// When at capacity, expired entries are dropped first, then the entry
// closest to expiry. Expired entries are also dropped lazily on lookup.
type Cache[V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	clone    func(V) V
	observer Observer

	mu      sync.Mutex
	entries map[string]entry[V]

	flight singleflight.Group
}

type Option[V any] func(*Cache[V])

// WithCapacity bounds the number of entries. Values below 1 keep the default.
func WithCapacity[V any](n int) Option[V] {
	return func(c *Cache[V]) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithTTL sets the expiry used when Set or GetOrFetch is given a zero ttl.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(c *Cache[V]) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) {
		c.now = now
	}
}

// WithClone copies values on their way in and out, so callers never share
// mutable state with the cache.
func WithClone[V any](clone func(V) V) Option[V] {
	return func(c *Cache[V]) {
		c.clone = clone
	}
}

func WithObserver[V any](o Observer) Option[V] {
	return func(c *Cache[V]) {
		if o != nil {
			c.observer = o
		}
	}
}

func New[V any](opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		now:      time.Now,
		clone:    func(v V) V { return v },
		observer: nopObserver{},
		entries:  make(map[string]entry[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key, if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

func (c *Cache[V]) get(key string) (v V, ok bool) {
	e, found := c.entries[key]
	if found && !c.now().Before(e.expires) {
		delete(c.entries, key)
		found = false
	}
	if !found {
		c.observer.RecordCacheMiss()
		return v, false
	}
	c.observer.RecordCacheHit()
	return c.clone(e.value), true
}

// Set stores v under key for ttl, or for the default expiry when ttl is 0.
func (c *Cache[V]) Set(key string, v V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, v, ttl)
}

func (c *Cache[V]) set(key string, v V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()
	if _, replace := c.entries[key]; !replace && len(c.entries) >= c.capacity {
		c.evict(now)
	}
	c.entries[key] = entry[V]{value: c.clone(v), expires: now.Add(ttl)}
}

// evict makes room for one entry.
func (c *Cache[V]) evict(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, key)
		}
	}
	for len(c.entries) >= c.capacity {
		var (
			victim  string
			earlier time.Time
			first   = true
		)
		for key, e := range c.entries {
			if first || e.expires.Before(earlier) || (e.expires.Equal(earlier) && key < victim) {
				victim, earlier, first = key, e.expires, false
			}
		}
		delete(c.entries, victim)
		c.observer.RecordCacheEviction()
	}
}

// Delete drops key from the cache.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len counts the stored entries, expired ones included until they are
// dropped.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrFetch returns the cached value for key or calls fetch to produce it.
// Concurrent callers missing on the same key share one fetch and its
// result, error included. Errors are not cached.
//
// The fetch runs with a context detached from the caller's cancellation, so
// a caller that gives up does not fail the others; it gets ctx.Err() back
// while the fetch carries on for the remaining waiters.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (V, error)) (V, error) {
	return c.GetOrLoad(ctx, key, func(ctx context.Context) (V, time.Duration, error) {
		v, err := fetch(ctx)
		return v, ttl, err
	})
}

// GetOrLoad is GetOrFetch for values whose lifetime is only known once
// they are loaded, such as access tokens.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, time.Duration, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		// a load that completed between the miss above and this call
		// already stored the value
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && c.now().Before(e.expires) {
			c.mu.Unlock()
			return e.value, nil
		}
		c.mu.Unlock()

		v, ttl, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return c.clone(v), nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
