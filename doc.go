// Package fontview provides the core pipeline of a system font
// browser: asynchronous discovery of installed fonts, deduplication of
// redundant style variants, and cached rendering of parameterized text
// previews.
//
// # Overview
//
// The pipeline has three parts, in dependency order:
//
//   - [github.com/gogpu/fontview/catalog]: enumerates installed font
//     families and variants off the interactive goroutine, collapses
//     duplicates, and freezes into a searchable collection.
//   - [github.com/gogpu/fontview/preview]: renders (font, size,
//     weight, color, text, wrap width) requests into surfaces,
//     memoized by request value with LRU eviction.
//   - [Coordinator] (this package): bridges catalog progress and
//     parameter changes into a debounced, generation-tagged stream of
//     preview results for an interface layer to draw.
//
// Data flows one direction: catalog order and selection feed the
// coordinator, the coordinator feeds the cache, and rendered results
// are pushed to the subscriber. The interface layer itself (windows,
// widgets, pickers) is not part of this module; cmd/fontview shows a
// minimal headless consumer.
//
// # Quick Start
//
//	c := fontview.NewCoordinator()
//	c.Subscribe(func(u fontview.Update) {
//	    for _, p := range u.Previews {
//	        // draw p.Image
//	    }
//	})
//	h := c.Start()          // background font enumeration
//	<-h.Done()
//	c.Select(c.Catalog().Variants()[0])
package fontview
