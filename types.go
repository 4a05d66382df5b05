package fontview

import (
	"image/color"

	"github.com/gogpu/fontview/catalog"
	"github.com/gogpu/fontview/preview"
)

// unknownStr is the string returned for unknown enum values.
const unknownStr = "Unknown"

// Mode selects which variants the coordinator renders.
type Mode int

const (
	// ModeSingle renders exactly the most recently selected variant.
	ModeSingle Mode = iota

	// ModeAdjacent renders the selected variant plus its immediate
	// neighbors in catalog order, clipped at the catalog bounds.
	ModeAdjacent

	// ModeSelected renders every selected variant, truncated to the
	// first MaxSelectedPreviews in selection order.
	ModeSelected
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "Single"
	case ModeAdjacent:
		return "Adjacent"
	case ModeSelected:
		return "Selected"
	default:
		return unknownStr
	}
}

// MaxSelectedPreviews caps how many selected variants ModeSelected
// renders. Selections beyond the cap stay in the selection set but are
// not rendered.
const MaxSelectedPreviews = 20

// State is the coordinator lifecycle state.
type State int

const (
	// StateIdle is the state before Start.
	StateIdle State = iota

	// StateLoading means catalog enumeration is in flight.
	StateLoading

	// StateReady is terminal: the catalog is frozen and previews are
	// being produced. Ready is reached on load completion, or on
	// enumeration failure with whatever partial data exists (see
	// Update.Degraded).
	StateReady
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	default:
		return unknownStr
	}
}

// Params are the adjustable preview parameters. Changing any of them
// through the coordinator setters restarts the debounce window.
type Params struct {
	// Size is the point size within [preview.MinPointSize,
	// preview.MaxPointSize].
	Size float64

	// Weight overrides the variant weight when non-zero.
	Weight int

	// Color is the sample fill color.
	Color color.RGBA

	// SampleText is the text rendered in every preview.
	SampleText string

	// WrapWidth is the wrap width in pixels.
	WrapWidth int
}

// Update is one delivery to the subscriber. Deliveries happen on
// worker goroutines; subscribers must not block for long and must not
// mutate the carried previews.
type Update struct {
	// State is the coordinator state at delivery time.
	State State

	// Progress carries catalog load progress while State is
	// StateLoading, and the terminal event on the transition to
	// StateReady.
	Progress catalog.LoadProgress

	// Previews are the rendered results for the current mode and
	// generation. Empty while Pending.
	Previews []preview.Result

	// Pending is set while the catalog load is incomplete and
	// previews cannot be produced yet.
	Pending bool

	// Degraded is set when enumeration failed and the catalog holds
	// only partial data.
	Degraded bool

	// Generation is the parameter generation the update reflects.
	// Generations only ever increase across deliveries.
	Generation uint64
}

// UpdateFunc receives coordinator updates.
type UpdateFunc func(Update)
