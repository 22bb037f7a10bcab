package cache

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// FetchFunc performs the underlying network fetch for a query. It returns
// the value together with the tag set the cached entry should carry.
type FetchFunc func(ctx context.Context) (interface{}, []Tag, error)

type entry struct {
	value     interface{}
	tags      []Tag
	expiresAt time.Time // zero means no expiry
}

// ResourceCache memoizes query results per (kind, param) key and drops
// entries when a mutation invalidates one of their tags. Identical in-flight
// queries are collapsed into a single fetch.
type ResourceCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	tags    map[Tag]map[string]struct{}

	// gen counts invalidations; tagGen records the generation at which each
	// tag was last invalidated so an in-flight fetch only discards its
	// result when one of its own tags was hit.
	gen    uint64
	tagGen map[Tag]uint64

	group singleflight.Group
	now   func() time.Time
}

func NewResourceCache() *ResourceCache {
	return &ResourceCache{
		entries: make(map[string]*entry),
		tags:    make(map[Tag]map[string]struct{}),
		tagGen:  make(map[Tag]uint64),
		now:     time.Now,
	}
}

func queryKey(kind, param string) string {
	return kind + ":" + param
}

// Query returns the cached value for (kind, param) when a fresh entry
// exists, otherwise fetches, stores the result under its tag set, and
// returns it. ttl of zero caches until invalidated.
func (c *ResourceCache) Query(ctx context.Context, kind, param string, ttl time.Duration, fetch FetchFunc) (interface{}, error) {
	key := queryKey(kind, param)

	tracer := otel.Tracer("resource-cache")
	ctx, span := tracer.Start(ctx, "cache.Query",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	if value, ok := c.lookup(key); ok {
		span.SetAttributes(attribute.String("cache.result", "hit"))
		return value, nil
	}
	span.SetAttributes(attribute.String("cache.result", "miss"))

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller in the same flight window may have populated
		// the entry already.
		if value, ok := c.lookup(key); ok {
			return value, nil
		}

		startGen := c.generation()

		value, tags, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.store(key, value, tags, ttl, startGen)
		return value, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return value, nil
}

// Mutate runs do and, only on success, atomically drops every entry carrying
// any of tags. A failed mutation invalidates nothing.
func (c *ResourceCache) Mutate(ctx context.Context, tags []Tag, do func(ctx context.Context) error) error {
	if err := do(ctx); err != nil {
		return err
	}
	c.Invalidate(tags...)
	return nil
}

// Invalidate drops every entry carrying any of tags
func (c *ResourceCache) Invalidate(tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	for _, t := range tags {
		c.tagGen[t] = c.gen
		for key := range c.tags[t] {
			c.removeLocked(key)
		}
		delete(c.tags, t)
	}
}

func (c *ResourceCache) lookup(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

// store records a fetched value unless one of its own tags was invalidated
// since the fetch began. Skipping the write keeps a mutation that already
// reported success from being shadowed by a stale in-flight fetch, while
// fetches for unrelated tags land untouched.
func (c *ResourceCache) store(key string, value interface{}, tags []Tag, ttl time.Duration, startGen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range tags {
		if c.tagGen[t] > startGen {
			return
		}
	}

	e := &entry{value: value, tags: tags}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e

	for _, t := range tags {
		if c.tags[t] == nil {
			c.tags[t] = make(map[string]struct{})
		}
		c.tags[t][key] = struct{}{}
	}
}

func (c *ResourceCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *ResourceCache) removeLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, t := range e.tags {
		if keys, ok := c.tags[t]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, t)
			}
		}
	}
}
