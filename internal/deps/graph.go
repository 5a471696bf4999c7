// Package deps decides which cells must be recomputed after an edit.
package deps

import (
	"sort"

	"sheetcalc/internal/calc"
	"sheetcalc/internal/grid"
)

// Planner returns the formula cells to re-evaluate, in order, after changed
// was written.
type Planner interface {
	Plan(changed string) []string
}

// node is one formula cell and what it reads.
type node struct {
	cells  map[string]struct{}
	ranges []grid.Range
}

// Graph tracks formula -> referenced cells and the reverse edges.
type Graph struct {
	nodes          map[string]*node
	dependents     map[string]map[string]struct{}     // cell -> formulas naming it
	rangeObservers map[grid.Range]map[string]struct{} // range -> formulas reading it
}

func NewGraph() *Graph {
	return &Graph{
		nodes:          map[string]*node{},
		dependents:     map[string]map[string]struct{}{},
		rangeObservers: map[grid.Range]map[string]struct{}{},
	}
}

// Set replaces the references recorded for the formula at label.
func (g *Graph) Set(label string, refs calc.Refs) {
	g.Remove(label)
	if len(refs.Cells) == 0 && len(refs.Ranges) == 0 {
		return
	}
	n := &node{cells: map[string]struct{}{}, ranges: refs.Ranges}
	for _, c := range refs.Cells {
		n.cells[c] = struct{}{}
		if g.dependents[c] == nil {
			g.dependents[c] = map[string]struct{}{}
		}
		g.dependents[c][label] = struct{}{}
	}
	for _, r := range refs.Ranges {
		if g.rangeObservers[r] == nil {
			g.rangeObservers[r] = map[string]struct{}{}
		}
		g.rangeObservers[r][label] = struct{}{}
	}
	g.nodes[label] = n
}

// Remove drops the outgoing edges of label. Edges pointing at label stay,
// other formulas still read it.
func (g *Graph) Remove(label string) {
	n, ok := g.nodes[label]
	if !ok {
		return
	}
	for c := range n.cells {
		delete(g.dependents[c], label)
		if len(g.dependents[c]) == 0 {
			delete(g.dependents, c)
		}
	}
	for _, r := range n.ranges {
		delete(g.rangeObservers[r], label)
		if len(g.rangeObservers[r]) == 0 {
			delete(g.rangeObservers, r)
		}
	}
	delete(g.nodes, label)
}

// Reset forgets every edge.
func (g *Graph) Reset() {
	g.nodes = map[string]*node{}
	g.dependents = map[string]map[string]struct{}{}
	g.rangeObservers = map[grid.Range]map[string]struct{}{}
}

// Dependents returns the formulas that read label directly, sorted.
func (g *Graph) Dependents(label string) []string {
	set := map[string]struct{}{}
	for d := range g.dependents[label] {
		set[d] = struct{}{}
	}
	if addr, err := grid.ParseAddress(label); err == nil {
		for r, observers := range g.rangeObservers {
			if !r.Contains(addr) {
				continue
			}
			for d := range observers {
				set[d] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Plan returns every formula that transitively depends on changed, ordered
// so each cell comes after the cells it reads. changed itself is never part
// of the plan. Cycles are cut where the walk meets a cell already visited.
func (g *Graph) Plan(changed string) []string {
	visited := map[string]bool{changed: true}
	var post []string
	var visit func(label string)
	visit = func(label string) {
		for _, d := range g.Dependents(label) {
			if visited[d] {
				continue
			}
			visited[d] = true
			visit(d)
			post = append(post, d)
		}
	}
	visit(changed)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
