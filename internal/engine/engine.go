// Package engine is the edit entry point: it stores what the user typed,
// evaluates formulas, and recomputes the cells that depend on an edit.
package engine

import (
	"io"
	"log"
	"strings"
	"sync"

	"sheetcalc/internal/calc"
	"sheetcalc/internal/deps"
	"sheetcalc/internal/grid"
	"sheetcalc/internal/store"
)

// Engine owns one sheet. Each SetCell, including its propagation, runs as a
// single transaction; renderer callbacks are delivered after it commits, in
// commit order. A renderer may read the engine from a callback but must not
// call SetCell or Propagate there.
type Engine struct {
	mu       sync.Mutex
	// notifyMu is taken before mu is released so deliveries keep commit order.
	notifyMu sync.Mutex
	store    *store.Store
	graph    *deps.Graph
	planner  deps.Planner
	eval     *calc.Evaluator
	renderer Renderer
	logger   *log.Logger
	mode     Mode
}

// Change is one propagated value.
type Change struct {
	Label string
	Value grid.Value
}

func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	e := &Engine{
		store:    store.New(),
		graph:    deps.NewGraph(),
		renderer: opts.Renderer,
		logger:   logger,
		mode:     opts.Mode,
	}
	e.eval = calc.NewEvaluator(logger)
	e.eval.Policy = opts.NaNPolicy
	switch opts.Mode {
	case ModeLegacy:
		e.planner = deps.Substring{Store: e.store}
	default:
		e.mode = ModeGraph
		e.planner = e.graph
	}
	return e
}

// Mode reports the propagation strategy in use.
func (e *Engine) Mode() Mode {
	return e.mode
}

// SetRenderer replaces the propagation callback.
func (e *Engine) SetRenderer(r Renderer) {
	e.mu.Lock()
	e.renderer = r
	e.mu.Unlock()
}

// SetCell records raw for label and returns the value to display there.
// Text starting with "=" is a formula, evaluated against the sheet as it was
// before this edit; anything else is stored verbatim. The only error is a
// malformed label.
func (e *Engine) SetCell(label, raw string) (grid.Value, error) {
	if _, err := grid.ParseAddress(label); err != nil {
		return grid.Value{}, err
	}

	e.mu.Lock()
	var v grid.Value
	if body, ok := strings.CutPrefix(raw, "="); ok {
		formula := strings.ToUpper(body)
		v = e.eval.Evaluate(e.store, formula)
		e.store.Put(label, store.Record{Formula: formula, HasFormula: true, Value: v})
		e.graph.Set(label, calc.References(formula))
	} else {
		v = grid.Text(raw)
		e.store.Put(label, store.Record{Value: v})
		e.graph.Remove(label)
	}
	changes := e.propagate(label)
	renderer := e.renderer
	e.notifyMu.Lock()
	e.mu.Unlock()

	e.notify(renderer, changes)
	e.notifyMu.Unlock()
	return v, nil
}

// Evaluate computes a formula body against the current sheet without
// storing anything.
func (e *Engine) Evaluate(expr string) grid.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eval.Evaluate(e.store, expr)
}

// Propagate re-evaluates the dependents of label and reports them to the
// renderer. SetCell already does this; it is exposed for hosts that want
// to force a recalculation.
func (e *Engine) Propagate(label string) []Change {
	e.mu.Lock()
	changes := e.propagate(label)
	renderer := e.renderer
	e.notifyMu.Lock()
	e.mu.Unlock()

	e.notify(renderer, changes)
	e.notifyMu.Unlock()
	return changes
}

func (e *Engine) propagate(label string) []Change {
	var changes []Change
	for _, dep := range e.planner.Plan(label) {
		rec, ok := e.store.Get(dep)
		if !ok || !rec.IsFormula() {
			continue
		}
		v := e.eval.Evaluate(e.store, rec.Formula)
		e.store.SetValue(dep, v)
		changes = append(changes, Change{Label: dep, Value: v})
	}
	return changes
}

func (e *Engine) notify(r Renderer, changes []Change) {
	if r == nil {
		return
	}
	for _, c := range changes {
		r.CellPropagated(c.Label, c.Value)
	}
}

// Cell returns the stored record of label.
func (e *Engine) Cell(label string) (store.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(label)
}

// Value returns the stored value of label; never-set cells read as Empty.
func (e *Engine) Value(label string) grid.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.store.Value(label)
	if !ok {
		return grid.Empty
	}
	return v
}

// Labels lists every stored cell in first-write order.
func (e *Engine) Labels() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Labels()
}

// Clear drops every stored cell and dependency edge.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Clear()
	e.graph.Reset()
}

// ColumnLabels returns the first count column headers.
func (e *Engine) ColumnLabels(count int) []string {
	return grid.ColumnLabels(count)
}
