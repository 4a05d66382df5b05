// Package preview renders text samples for font variants and memoizes
// them by request value.
//
// The cache is the one structure in the pipeline shared for read and
// write across goroutines: hits are lock-cheap lookups, misses render
// synchronously exactly once per distinct request, with concurrent
// misses on the same key collapsed into a single render.
package preview

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the default number of cached previews. Sized to
// accommodate a full Selected-set view plus slider headroom.
const DefaultCapacity = 32

// Stats reports cache effectiveness counters.
type Stats struct {
	// Hits is the number of lookups served from the cache.
	Hits uint64

	// Misses is the number of lookups that required a render (or
	// joined one already in flight).
	Misses uint64

	// Renders is the number of renders actually performed. At most
	// one per distinct request value, regardless of concurrency.
	Renders uint64
}

// CacheOption configures a Cache.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	capacity int
	renderer Renderer
}

func defaultCacheOptions() cacheOptions {
	return cacheOptions{capacity: DefaultCapacity}
}

// WithCapacity sets the maximum number of cached previews. Values
// below 1 keep the default.
func WithCapacity(n int) CacheOption {
	return func(o *cacheOptions) {
		if n >= 1 {
			o.capacity = n
		}
	}
}

// WithRenderer replaces the renderer. The default is an
// ImageRenderer; tests substitute counting fakes.
func WithRenderer(r Renderer) CacheOption {
	return func(o *cacheOptions) {
		if r != nil {
			o.renderer = r
		}
	}
}

// Cache memoizes rendered previews, keyed by the full request value.
// Eviction is least-recently-used; a hit promotes the entry. Entries
// are never mutated in place: a parameter change is a different
// request and therefore a different entry.
//
// Cache is safe for concurrent use.
type Cache struct {
	entries  *lru.Cache[Request, Result]
	group    singleflight.Group
	renderer Renderer

	hits    atomic.Uint64
	misses  atomic.Uint64
	renders atomic.Uint64
}

// NewCache creates a preview cache.
func NewCache(opts ...CacheOption) *Cache {
	o := defaultCacheOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.renderer == nil {
		o.renderer = NewImageRenderer()
	}

	entries, err := lru.New[Request, Result](o.capacity)
	if err != nil {
		// lru.New only fails for capacity < 1, which the option
		// guards against.
		panic(fmt.Sprintf("preview: creating cache: %v", err))
	}
	return &Cache{entries: entries, renderer: o.renderer}
}

// Get returns the preview for the request, rendering it on first use.
// Structurally equal requests share one cached result: a hit returns
// the stored result without render work and marks it most recently
// used. Concurrent misses on the same request wait for a single
// render.
//
// Render errors are returned to the caller and not cached, so a
// transient failure does not poison the entry.
func (c *Cache) Get(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	// A zero wrap width and the explicit default are the same request;
	// normalize so they share one entry and one in-flight render.
	req.WrapWidth = req.wrapWidth()

	if res, ok := c.entries.Get(req); ok {
		c.hits.Add(1)
		return res, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(req.Key(), func() (any, error) {
		// A flight that finished between our lookup and Do may have
		// stored the result already.
		if res, ok := c.entries.Get(req); ok {
			return res, nil
		}
		c.renders.Add(1)
		res, err := c.renderer.Render(req)
		if err != nil {
			return Result{}, err
		}
		c.entries.Add(req, res)
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// Contains reports whether the request is cached, without promoting
// the entry.
func (c *Cache) Contains(req Request) bool {
	req.WrapWidth = req.wrapWidth()
	return c.entries.Contains(req)
}

// Len returns the number of cached previews.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached preview. Counters are kept.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Renders: c.renders.Load(),
	}
}
