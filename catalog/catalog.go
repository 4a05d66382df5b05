// Package catalog discovers the fonts installed on a machine and
// exposes them as a stable, searchable collection.
//
// Discovery runs once per session on a background worker started by
// [Catalog.StartLoad]. While the load is in flight the catalog is
// empty; when the worker finishes, the collected entries are published
// atomically and the catalog is frozen. After that point all queries
// are cheap, read-only and safe for concurrent use.
//
// Variants are deduplicated during discovery: two variants whose
// normalized (family, style) pairs match are the same variant, and the
// first one seen wins.
package catalog

import (
	"strings"
	"sync"
)

// DefaultProgressStride is the number of scanned variants between two
// progress callbacks. Progress is batched so a large catalog does not
// flood subscribers with thousands of events.
const DefaultProgressStride = 50

// LoadProgress describes the state of an in-flight or finished load.
type LoadProgress struct {
	// Scanned is the number of variants examined so far, including
	// duplicates that were dropped. Monotonically non-decreasing
	// across the events of one load.
	Scanned int

	// Total is the number of variants the enumerator reported, or -1
	// while unknown.
	Total int

	// Done marks the terminal event of the load.
	Done bool

	// Err is set on the terminal event when enumeration failed.
	// The catalog still holds whatever was collected before the
	// failure.
	Err error
}

// ProgressFunc receives load progress events. It is called from the
// enumeration worker goroutine and must not block for long.
type ProgressFunc func(LoadProgress)

// LoadHandle tracks one catalog load.
type LoadHandle struct {
	done chan struct{}
	err  error
}

// Done returns a channel closed when the load has finished.
func (h *LoadHandle) Done() <-chan struct{} { return h.done }

// Err returns the enumeration error, if any. Only valid after Done is
// closed.
func (h *LoadHandle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// LoadOption configures a catalog load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	progress   []ProgressFunc
	stride     int
	enumerator Enumerator
}

func defaultLoadOptions() loadOptions {
	return loadOptions{
		stride:     DefaultProgressStride,
		enumerator: &SystemEnumerator{},
	}
}

// WithProgress registers a callback for load progress events. The
// option accumulates: every registered callback receives every event,
// in registration order. That lets wrappers such as the coordinator
// add their own callback without displacing the caller's.
func WithProgress(fn ProgressFunc) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.progress = append(o.progress, fn)
		}
	}
}

// WithProgressStride sets how many variants are scanned between two
// progress events. Values below 1 keep the default.
func WithProgressStride(n int) LoadOption {
	return func(o *loadOptions) {
		if n >= 1 {
			o.stride = n
		}
	}
}

// WithEnumerator replaces the platform enumerator. Mainly a seam for
// tests and for embedding a fixed font set.
func WithEnumerator(e Enumerator) LoadOption {
	return func(o *loadOptions) {
		if e != nil {
			o.enumerator = e
		}
	}
}

// Catalog is the deduplicated collection of installed font families.
//
// A Catalog starts empty. StartLoad populates it exactly once; queries
// return nothing until the load finishes. Catalog is safe for
// concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries []*Entry
	byKey   map[string]*Entry // normalized family -> entry
	flat    []Variant         // all variants in catalog order
	frozen  bool
	handle  *LoadHandle
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{byKey: make(map[string]*Entry)}
}

// StartLoad begins font enumeration on a background worker and returns
// immediately. At most one enumeration runs per catalog: calling
// StartLoad again, during or after the load, returns the original
// handle and ignores the options.
func (c *Catalog) StartLoad(opts ...LoadOption) *LoadHandle {
	c.mu.Lock()
	if c.handle != nil {
		h := c.handle
		c.mu.Unlock()
		return h
	}
	h := &LoadHandle{done: make(chan struct{})}
	c.handle = h
	c.mu.Unlock()

	o := defaultLoadOptions()
	for _, opt := range opts {
		opt(&o)
	}

	go c.load(h, o)
	return h
}

// load is the enumeration worker. It owns all scratch state (the
// seen-key set, the accumulating entry lists) exclusively until
// publish; other goroutines observe nothing until the catalog freezes.
func (c *Catalog) load(h *LoadHandle, o loadOptions) {
	emit := func(p LoadProgress) {
		for _, fn := range o.progress {
			fn(p)
		}
	}

	variants, err := o.enumerator.Fonts()
	if err != nil {
		slogger().Warn("font enumeration failed", "error", err,
			"collected", len(variants))
	}

	seen := make(map[string]struct{}, len(variants))
	byFamily := make(map[string]*Entry)
	var entries []*Entry
	scanned := 0
	total := len(variants)

	for _, v := range variants {
		scanned++
		key := v.Key()
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			fam := normalize(v.Family)
			e := byFamily[fam]
			if e == nil {
				e = &Entry{Family: v.Family}
				byFamily[fam] = e
				entries = append(entries, e)
			}
			e.Variants = append(e.Variants, v)
		}
		if scanned%o.stride == 0 && scanned < total {
			emit(LoadProgress{Scanned: scanned, Total: total})
		}
	}

	c.publish(entries, byFamily)
	kept := 0
	for _, e := range entries {
		kept += len(e.Variants)
	}
	slogger().Info("font catalog loaded",
		"families", len(entries), "variants", kept, "duplicates", scanned-kept)

	// The terminal event must land before Done unblocks, so a caller
	// that waits on the handle sees it without extra synchronization.
	h.err = err
	emit(LoadProgress{Scanned: scanned, Total: total, Done: true, Err: err})
	close(h.done)
}

// publish installs the collected entries and freezes the catalog.
func (c *Catalog) publish(entries []*Entry, byFamily map[string]*Entry) {
	flat := make([]Variant, 0, len(entries))
	for _, e := range entries {
		flat = append(flat, e.Variants...)
	}

	c.mu.Lock()
	c.entries = entries
	c.byKey = byFamily
	c.flat = flat
	c.frozen = true
	c.mu.Unlock()
}

// Frozen reports whether the load has completed and the catalog is
// read-only.
func (c *Catalog) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// Len returns the number of font families, zero before the catalog is
// frozen.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Search returns the entries whose family name contains the given
// substring, case-insensitively, preserving catalog order. An empty
// query returns every entry. Before the catalog is frozen Search
// returns nil.
//
// The returned entries are shared and must not be modified.
func (c *Catalog) Search(query string) []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.frozen {
		return nil
	}
	if query == "" {
		return append([]*Entry(nil), c.entries...)
	}
	q := normalize(query)
	var out []*Entry
	for _, e := range c.entries {
		if strings.Contains(normalize(e.Family), q) {
			out = append(out, e)
		}
	}
	return out
}

// Get returns the entry for the given family name, matched
// case-insensitively. ok is false when the family is unknown or the
// catalog is not frozen yet.
func (c *Catalog) Get(family string) (e *Entry, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.frozen {
		return nil, false
	}
	e, ok = c.byKey[normalize(family)]
	return e, ok
}

// Variants returns every variant in catalog order. This is the order
// Adjacent-mode neighbors are taken from. The returned slice is shared
// and must not be modified. Nil before the catalog is frozen.
func (c *Catalog) Variants() []Variant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.frozen {
		return nil
	}
	return c.flat
}

// Position returns the index of the variant in catalog order, or -1
// when the variant is not part of the catalog.
func (c *Catalog) Position(v Variant) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, fv := range c.flat {
		if fv == v {
			return i
		}
	}
	return -1
}
