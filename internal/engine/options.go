package engine

import (
	"log"

	"sheetcalc/internal/calc"
	"sheetcalc/internal/grid"
)

// Mode selects how dependents of an edited cell are found.
type Mode string

const (
	// ModeGraph follows exact references transitively, in dependency order.
	ModeGraph Mode = "graph"
	// ModeLegacy re-evaluates every formula whose text contains the edited
	// label, one level deep.
	ModeLegacy Mode = "legacy"
)

// Renderer is told about cells whose value was recomputed as a side effect
// of an edit elsewhere.
type Renderer interface {
	CellPropagated(label string, v grid.Value)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(label string, v grid.Value)

func (f RendererFunc) CellPropagated(label string, v grid.Value) {
	f(label, v)
}

// Options configures an Engine.
type Options struct {
	// Mode picks the propagation strategy. Empty means ModeGraph.
	Mode Mode
	// NaNPolicy controls non-numeric cells inside range functions.
	NaNPolicy calc.NaNPolicy
	// Renderer receives propagated values. May be nil.
	Renderer Renderer
	// Logger receives evaluation diagnostics. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns the graph mode with NaN propagation.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeGraph,
		NaNPolicy: calc.NaNPropagate,
	}
}
