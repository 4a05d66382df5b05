package catalog

import (
	"errors"
	"sync"
	"testing"
)

// fakeEnumerator returns a fixed variant list, optionally with an
// error to exercise the degraded path.
type fakeEnumerator struct {
	variants []Variant
	err      error
}

func (f *fakeEnumerator) Fonts() ([]Variant, error) {
	return f.variants, f.err
}

func variant(family, style string) Variant {
	return Variant{Family: family, Style: style, Weight: 400, Path: "/fonts/" + family + ".ttf"}
}

func loadCatalog(t *testing.T, opts ...LoadOption) *Catalog {
	t.Helper()
	c := New()
	h := c.StartLoad(opts...)
	<-h.Done()
	return c
}

func TestLoadDedupCollapsesCaseVariants(t *testing.T) {
	// Duplicate casing of "Arial Regular" must collapse into the
	// first-seen variant.
	enum := &fakeEnumerator{variants: []Variant{
		variant("Arial", "Regular"),
		variant("Arial", "Bold"),
		variant("arial ", "regular"),
	}}
	c := loadCatalog(t, WithEnumerator(enum))

	if got := c.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	e, ok := c.Get("Arial")
	if !ok {
		t.Fatal("Get(Arial) not found")
	}
	if len(e.Variants) != 2 {
		t.Fatalf("len(Variants) = %d, want 2", len(e.Variants))
	}
	if e.Variants[0].Style != "Regular" || e.Variants[1].Style != "Bold" {
		t.Errorf("variants = %v, want [Regular Bold]", e.Variants)
	}
	// First-seen wins: the surviving Regular keeps the original casing.
	if e.Variants[0].Family != "Arial" {
		t.Errorf("surviving family = %q, want %q", e.Variants[0].Family, "Arial")
	}
}

func TestStartLoadIdempotent(t *testing.T) {
	c := New()
	enum := &fakeEnumerator{variants: []Variant{variant("Go", "Regular")}}
	h1 := c.StartLoad(WithEnumerator(enum))
	h2 := c.StartLoad(WithEnumerator(enum))
	if h1 != h2 {
		t.Error("second StartLoad returned a different handle")
	}
	<-h1.Done()
	// After completion the handle is still the session's one.
	if h3 := c.StartLoad(); h3 != h1 {
		t.Error("StartLoad after completion returned a different handle")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (no second enumeration)", c.Len())
	}
}

func TestQueriesBeforeFreezeAreEmpty(t *testing.T) {
	c := New()
	if c.Frozen() {
		t.Error("new catalog reports frozen")
	}
	if got := c.Search("a"); got != nil {
		t.Errorf("Search before load = %v, want nil", got)
	}
	if _, ok := c.Get("Arial"); ok {
		t.Error("Get before load reported ok")
	}
	if got := c.Variants(); got != nil {
		t.Errorf("Variants before load = %v, want nil", got)
	}
}

func TestSearchCaseInsensitiveKeepsOrder(t *testing.T) {
	enum := &fakeEnumerator{variants: []Variant{
		variant("Noto Sans", "Regular"),
		variant("DejaVu Sans", "Regular"),
		variant("Noto Serif", "Regular"),
		variant("Courier", "Regular"),
	}}
	c := loadCatalog(t, WithEnumerator(enum))

	got := c.Search("noTO")
	if len(got) != 2 {
		t.Fatalf("Search(noTO) returned %d entries, want 2", len(got))
	}
	if got[0].Family != "Noto Sans" || got[1].Family != "Noto Serif" {
		t.Errorf("Search order = [%s %s], want catalog order", got[0].Family, got[1].Family)
	}

	if all := c.Search(""); len(all) != 4 {
		t.Errorf("Search(\"\") returned %d entries, want 4", len(all))
	}
	if none := c.Search("zzz"); len(none) != 0 {
		t.Errorf("Search(zzz) returned %d entries, want 0", len(none))
	}
}

func TestProgressMonotonicAndTerminal(t *testing.T) {
	variants := make([]Variant, 0, 10)
	for _, fam := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		variants = append(variants, variant(fam, "Regular"))
	}
	enum := &fakeEnumerator{variants: variants}

	var mu sync.Mutex
	var events []LoadProgress
	loadCatalog(t, WithEnumerator(enum), WithProgressStride(3), WithProgress(func(p LoadProgress) {
		mu.Lock()
		events = append(events, p)
		mu.Unlock()
	}))

	mu.Lock()
	defer mu.Unlock()
	if len(events) == 0 {
		t.Fatal("no progress events")
	}
	last := 0
	for _, p := range events {
		if p.Scanned < last {
			t.Errorf("scanned count went backwards: %d after %d", p.Scanned, last)
		}
		last = p.Scanned
	}
	final := events[len(events)-1]
	if !final.Done {
		t.Error("last event is not terminal")
	}
	if final.Scanned != 10 || final.Total != 10 {
		t.Errorf("terminal event = %+v, want Scanned=10 Total=10", final)
	}
	if final.Err != nil {
		t.Errorf("terminal Err = %v, want nil", final.Err)
	}
}

func TestWithProgressAccumulates(t *testing.T) {
	enum := &fakeEnumerator{variants: []Variant{variant("Go", "Regular")}}

	var first, second bool
	loadCatalog(t, WithEnumerator(enum),
		WithProgress(func(p LoadProgress) {
			if p.Done {
				first = true
			}
		}),
		WithProgress(func(p LoadProgress) {
			if p.Done {
				second = true
			}
		}))

	if !first || !second {
		t.Errorf("callbacks fired = (%t, %t), want both", first, second)
	}
}

func TestEnumerationFailureKeepsPartialCatalog(t *testing.T) {
	wantErr := errors.New("platform unreachable")
	enum := &fakeEnumerator{
		variants: []Variant{variant("Go", "Regular")},
		err:      wantErr,
	}
	c := New()
	var terminal LoadProgress
	h := c.StartLoad(WithEnumerator(enum), WithProgress(func(p LoadProgress) {
		if p.Done {
			terminal = p
		}
	}))
	<-h.Done()

	if !errors.Is(h.Err(), wantErr) {
		t.Errorf("handle error = %v, want %v", h.Err(), wantErr)
	}
	if !errors.Is(terminal.Err, wantErr) {
		t.Errorf("terminal event error = %v, want %v", terminal.Err, wantErr)
	}
	// The catalog stays usable with what was collected.
	if !c.Frozen() {
		t.Error("catalog not frozen after failure")
	}
	if _, ok := c.Get("Go"); !ok {
		t.Error("partial data lost after enumeration failure")
	}
}

func TestTerminalEventPrecedesDone(t *testing.T) {
	enum := &fakeEnumerator{variants: []Variant{variant("Go", "Regular")}}
	c := New()
	sawTerminal := false
	h := c.StartLoad(WithEnumerator(enum), WithProgress(func(p LoadProgress) {
		if p.Done {
			sawTerminal = true
		}
	}))
	<-h.Done()

	// Closing the handle happens after the terminal event, so this
	// unsynchronized read is safe and must observe it.
	if !sawTerminal {
		t.Error("Done unblocked before the terminal progress event")
	}
}

func TestHandleErrBeforeDone(t *testing.T) {
	h := &LoadHandle{done: make(chan struct{})}
	if h.Err() != nil {
		t.Errorf("Err before done = %v, want nil", h.Err())
	}
}

func TestVariantsAndPosition(t *testing.T) {
	enum := &fakeEnumerator{variants: []Variant{
		variant("Alpha", "Regular"),
		variant("Alpha", "Bold"),
		variant("Beta", "Regular"),
	}}
	c := loadCatalog(t, WithEnumerator(enum))

	flat := c.Variants()
	if len(flat) != 3 {
		t.Fatalf("len(Variants) = %d, want 3", len(flat))
	}
	for i, v := range flat {
		if got := c.Position(v); got != i {
			t.Errorf("Position(%s) = %d, want %d", v, got, i)
		}
	}
	if got := c.Position(variant("Gamma", "Regular")); got != -1 {
		t.Errorf("Position(unknown) = %d, want -1", got)
	}
}
