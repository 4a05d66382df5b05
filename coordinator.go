package fontview

import (
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gogpu/fontview/catalog"
	"github.com/gogpu/fontview/preview"
)

// DefaultDebounce is the delay window that collapses a burst of
// parameter changes into one recomputation. Long enough to absorb a
// slider drag, short enough to feel immediate.
const DefaultDebounce = 150 * time.Millisecond

// DefaultSampleText is the initial preview sample: mixed case, digits,
// accented Latin and CJK so coverage differences between fonts are
// visible at a glance.
const DefaultSampleText = "AaBbCc 0123456789 àéîøü 日本中国"

// Coordinator bridges catalog loading and preview parameters into a
// debounced stream of rendered previews.
//
// A Coordinator starts Idle. Start launches the catalog load and moves
// to Loading; the terminal load event moves to Ready, after which
// every parameter or selection change schedules a recomputation once
// the debounce window goes quiet. Renders are serialized: a change
// arriving mid-render does not cancel the in-flight render, it
// schedules exactly one follow-up with the then-latest parameters.
// Results older than the latest requested generation are discarded,
// so a newer preview is never superseded by an older one arriving
// late.
//
// Coordinator is safe for concurrent use. Deliveries to the subscriber
// happen on worker goroutines, never as a blocking return to the
// caller that changed a parameter.
type Coordinator struct {
	cat      *catalog.Catalog
	cache    *preview.Cache
	clock    clockwork.Clock
	debounce time.Duration

	// generation tags each recomputation request; delivered tracks the
	// newest generation pushed to the subscriber.
	generation atomic.Uint64
	delivered  atomic.Uint64

	mu         sync.Mutex
	state      State
	degraded   bool
	params     Params
	mode       Mode
	selection  []catalog.Variant
	mostRecent catalog.Variant
	timer      clockwork.Timer
	rendering  bool
	pending    bool
	subscriber UpdateFunc
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCatalog supplies a catalog, for sharing one across coordinators
// or injecting a preloaded one in tests.
func WithCatalog(c *catalog.Catalog) CoordinatorOption {
	return func(co *Coordinator) {
		if c != nil {
			co.cat = c
		}
	}
}

// WithCache supplies a preview cache.
func WithCache(c *preview.Cache) CoordinatorOption {
	return func(co *Coordinator) {
		if c != nil {
			co.cache = c
		}
	}
}

// WithClock replaces the wall clock. Tests use a fake clock to step
// through debounce windows deterministically.
func WithClock(clock clockwork.Clock) CoordinatorOption {
	return func(co *Coordinator) {
		if clock != nil {
			co.clock = clock
		}
	}
}

// WithDebounce sets the debounce window. Zero or negative keeps the
// default.
func WithDebounce(d time.Duration) CoordinatorOption {
	return func(co *Coordinator) {
		if d > 0 {
			co.debounce = d
		}
	}
}

// NewCoordinator creates a coordinator with default parameters: size
// 24, black, DefaultSampleText, default wrap width, ModeSingle.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		clock:    clockwork.NewRealClock(),
		debounce: DefaultDebounce,
		params: Params{
			Size:       24,
			Color:      color.RGBA{A: 255},
			SampleText: DefaultSampleText,
			WrapWidth:  preview.DefaultWrapWidth,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cat == nil {
		c.cat = catalog.New()
	}
	if c.cache == nil {
		c.cache = preview.NewCache()
	}
	return c
}

// Catalog returns the coordinator's catalog, e.g. for the search
// surface of a font list.
func (c *Coordinator) Catalog() *catalog.Catalog { return c.cat }

// Cache returns the coordinator's preview cache.
func (c *Coordinator) Cache() *preview.Cache { return c.cache }

// Subscribe registers the update callback. Only one subscriber is
// supported; a second call replaces the first. The callback runs on
// worker goroutines and must not block for long.
func (c *Coordinator) Subscribe(fn UpdateFunc) {
	c.mu.Lock()
	c.subscriber = fn
	c.mu.Unlock()
}

// Start launches the catalog load and returns its handle immediately.
// Calling Start again returns the same handle; the load runs once per
// session.
//
// The coordinator registers its own progress callback alongside any
// the caller passes via [catalog.WithProgress]; both receive every
// event.
func (c *Coordinator) Start(opts ...catalog.LoadOption) *catalog.LoadHandle {
	c.mu.Lock()
	if c.state == StateIdle {
		c.state = StateLoading
	}
	c.mu.Unlock()

	opts = append(opts, catalog.WithProgress(c.onProgress))
	return c.cat.StartLoad(opts...)
}

// onProgress runs on the enumeration worker.
func (c *Coordinator) onProgress(p catalog.LoadProgress) {
	if !p.Done {
		c.deliver(Update{State: StateLoading, Progress: p, Pending: true})
		return
	}

	c.mu.Lock()
	c.state = StateReady
	c.degraded = p.Err != nil
	degraded := c.degraded
	c.mu.Unlock()

	c.deliver(Update{State: StateReady, Progress: p, Pending: true, Degraded: degraded})

	// Initial previews, without waiting out a debounce window.
	c.trigger()
}

// State returns the coordinator lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Params returns a snapshot of the current parameters.
func (c *Coordinator) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Mode returns the current display mode.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Selection returns a copy of the ordered selection.
func (c *Coordinator) Selection() []catalog.Variant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalog.Variant(nil), c.selection...)
}

// SetSize sets the preview point size. Sizes outside
// [preview.MinPointSize, preview.MaxPointSize] are refused with
// preview.ErrSizeOutOfRange and change nothing; valid requests never
// reach the cache with an out-of-range size.
func (c *Coordinator) SetSize(size float64) error {
	if size < preview.MinPointSize || size > preview.MaxPointSize {
		return preview.ErrSizeOutOfRange
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Size = size
	c.bumpLocked()
	return nil
}

// SetWeight sets the weight override. Zero restores the variant's own
// weight.
func (c *Coordinator) SetWeight(weight int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Weight = weight
	c.bumpLocked()
}

// SetColor sets the sample color.
func (c *Coordinator) SetColor(col color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Color = col
	c.bumpLocked()
}

// SetSampleText sets the preview sample text.
func (c *Coordinator) SetSampleText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.SampleText = text
	c.bumpLocked()
}

// SetWrapWidth sets the wrap width in pixels.
func (c *Coordinator) SetWrapWidth(width int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.WrapWidth = width
	c.bumpLocked()
}

// SetMode switches the display mode.
func (c *Coordinator) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	c.bumpLocked()
}

// Select appends a variant to the ordered selection. Selecting an
// already selected variant moves nothing: the set keeps first-seen
// order, but the variant still becomes the "most recently selected"
// one for ModeSingle and ModeAdjacent.
func (c *Coordinator) Select(v catalog.Variant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.selection {
		if c.selection[i] == v {
			c.mostRecent = v
			c.bumpLocked()
			return
		}
	}
	c.selection = append(c.selection, v)
	c.mostRecent = v
	c.bumpLocked()
}

// Deselect removes a variant from the selection.
func (c *Coordinator) Deselect(v catalog.Variant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.selection {
		if c.selection[i] == v {
			c.selection = append(c.selection[:i], c.selection[i+1:]...)
			break
		}
	}
	if c.mostRecent == v {
		if n := len(c.selection); n > 0 {
			c.mostRecent = c.selection[n-1]
		} else {
			c.mostRecent = catalog.Variant{}
		}
	}
	c.bumpLocked()
}

// SetSelection replaces the selection, dropping duplicates while
// preserving order.
func (c *Coordinator) SetSelection(vs []catalog.Variant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[catalog.Variant]struct{}, len(vs))
	c.selection = c.selection[:0]
	for _, v := range vs {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		c.selection = append(c.selection, v)
	}
	if n := len(c.selection); n > 0 {
		c.mostRecent = c.selection[n-1]
	} else {
		c.mostRecent = catalog.Variant{}
	}
	c.bumpLocked()
}

// ClearSelection empties the selection.
func (c *Coordinator) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = nil
	c.mostRecent = catalog.Variant{}
	c.bumpLocked()
}

// bumpLocked restarts the debounce window. Only the last change
// before the window goes quiet triggers a recomputation. Callers hold
// c.mu.
func (c *Coordinator) bumpLocked() {
	if c.timer == nil {
		c.timer = c.clock.AfterFunc(c.debounce, c.trigger)
		return
	}
	// Restarting discards the previous pending trigger.
	c.timer.Stop()
	c.timer.Reset(c.debounce)
}

// trigger requests a recomputation at a fresh generation. If a render
// is in flight the request is folded into a single follow-up.
func (c *Coordinator) trigger() {
	gen := c.generation.Add(1)

	c.mu.Lock()
	if c.rendering {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.rendering = true
	job := c.snapshotLocked(gen)
	c.mu.Unlock()

	go c.renderLoop(job)
}

// renderJob is an immutable snapshot of everything one recomputation
// needs, taken under the coordinator lock.
type renderJob struct {
	gen      uint64
	state    State
	degraded bool
	params   Params
	targets  []catalog.Variant
}

// snapshotLocked captures the current render targets. Callers hold
// c.mu.
func (c *Coordinator) snapshotLocked(gen uint64) renderJob {
	job := renderJob{
		gen:      gen,
		state:    c.state,
		degraded: c.degraded,
		params:   c.params,
	}
	if c.state != StateReady {
		return job
	}

	switch c.mode {
	case ModeSingle:
		if c.mostRecent != (catalog.Variant{}) {
			job.targets = []catalog.Variant{c.mostRecent}
		}
	case ModeAdjacent:
		job.targets = c.adjacentLocked()
	case ModeSelected:
		n := len(c.selection)
		if n > MaxSelectedPreviews {
			n = MaxSelectedPreviews
		}
		job.targets = append([]catalog.Variant(nil), c.selection[:n]...)
	}
	return job
}

// adjacentLocked returns the most recently selected variant and its
// immediate catalog-order neighbors, clipped at the catalog bounds.
func (c *Coordinator) adjacentLocked() []catalog.Variant {
	if c.mostRecent == (catalog.Variant{}) {
		return nil
	}
	all := c.cat.Variants()
	pos := c.cat.Position(c.mostRecent)
	if pos < 0 {
		// Not in the catalog (e.g. selection survived a degraded
		// load); render just the variant itself.
		return []catalog.Variant{c.mostRecent}
	}
	start := pos - 1
	if start < 0 {
		start = 0
	}
	end := pos + 2
	if end > len(all) {
		end = len(all)
	}
	return append([]catalog.Variant(nil), all[start:end]...)
}

// renderLoop renders jobs until no follow-up is pending. Runs on its
// own goroutine; at most one loop is active at a time.
func (c *Coordinator) renderLoop(job renderJob) {
	for {
		update := c.render(job)

		// Generation discard: deliver only if no newer recomputation
		// has been requested meanwhile, and each generation at most
		// once.
		if job.gen == c.generation.Load() && job.gen > c.delivered.Load() {
			c.delivered.Store(job.gen)
			c.deliver(update)
		} else {
			Logger().Debug("discarding stale render",
				"generation", job.gen, "latest", c.generation.Load())
		}

		c.mu.Lock()
		if !c.pending {
			c.rendering = false
			c.mu.Unlock()
			return
		}
		c.pending = false
		job = c.snapshotLocked(c.generation.Load())
		c.mu.Unlock()
	}
}

// render produces the previews for one job. Cache hits cost no render
// work; misses rasterize synchronously on this goroutine.
func (c *Coordinator) render(job renderJob) Update {
	update := Update{
		State:      job.state,
		Degraded:   job.degraded,
		Generation: job.gen,
	}
	if job.state != StateReady {
		update.Pending = true
		return update
	}

	previews := make([]preview.Result, 0, len(job.targets))
	for _, v := range job.targets {
		req := preview.Request{
			Variant:   v,
			Size:      job.params.Size,
			Weight:    job.params.Weight,
			Color:     job.params.Color,
			Text:      job.params.SampleText,
			WrapWidth: job.params.WrapWidth,
		}
		res, err := c.cache.Get(req)
		if err != nil {
			// Per-variant render failure degrades to a missing
			// preview, never a crash or an error to the subscriber.
			Logger().Warn("preview render failed",
				"variant", v.String(), "error", err)
			continue
		}
		res.Generation = job.gen
		previews = append(previews, res)
	}
	update.Previews = previews
	return update
}

// deliver pushes an update to the subscriber, if any.
func (c *Coordinator) deliver(u Update) {
	c.mu.Lock()
	fn := c.subscriber
	c.mu.Unlock()
	if fn != nil {
		fn(u)
	}
}
