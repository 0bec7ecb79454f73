package kv

import (
	"context"
	"errors"

	"github.com/dmitrymomot/paywall/pkg/cache"
)

type cachedValue struct {
	value string
	found bool
}

// Cached is a write-through read cache in front of another Storage. Absent
// keys are cached too, so repeated "not subscribed" reads stay local.
// It assumes it is the only writer of the keys it serves.
type Cached struct {
	next  Storage
	cache *cache.LRU[string, cachedValue]
}

// NewCached wraps next with an LRU holding up to size keys.
func NewCached(next Storage, size int) *Cached {
	if next == nil {
		panic("kv: cached storage requires a backend")
	}
	return &Cached{
		next:  next,
		cache: cache.New[string, cachedValue](size),
	}
}

func (c *Cached) Get(ctx context.Context, key string) (string, error) {
	if v, ok := c.cache.Get(key); ok {
		if !v.found {
			return "", ErrNotFound
		}
		return v.value, nil
	}

	v, err := c.next.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		c.cache.Add(key, cachedValue{})
		return "", err
	case err != nil:
		return "", err
	}
	c.cache.Add(key, cachedValue{value: v, found: true})
	return v, nil
}

func (c *Cached) Set(ctx context.Context, key, value string) error {
	if err := c.next.Set(ctx, key, value); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, cachedValue{value: value, found: true})
	return nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	if err := c.next.Delete(ctx, key); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, cachedValue{})
	return nil
}

func (c *Cached) SetMany(ctx context.Context, pairs ...Pair) error {
	if err := SetAll(ctx, c.next, pairs...); err != nil {
		for _, p := range pairs {
			c.cache.Remove(p.Key)
		}
		return err
	}
	for _, p := range pairs {
		c.cache.Add(p.Key, cachedValue{value: p.Value, found: true})
	}
	return nil
}

func (c *Cached) DeleteMany(ctx context.Context, keys ...string) error {
	if err := DeleteAll(ctx, c.next, keys...); err != nil {
		for _, k := range keys {
			c.cache.Remove(k)
		}
		return err
	}
	for _, k := range keys {
		c.cache.Add(k, cachedValue{})
	}
	return nil
}

// Invalidate drops every cached entry.
func (c *Cached) Invalidate() {
	c.cache.Purge()
}

// Stats reports cache hits and misses so far.
func (c *Cached) Stats() cache.Stats {
	return c.cache.Stats()
}
