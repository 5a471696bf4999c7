// Package store holds the per-cell state of a sheet.
package store

import (
	"sheetcalc/internal/grid"
)

// Record is the stored state of one cell. Formula is the uppercased body
// without the leading "="; HasFormula is set whenever the input began with
// "=", so a bare "=" is a formula with an empty body.
type Record struct {
	Formula    string
	HasFormula bool
	Value      grid.Value
}

// IsFormula reports whether the cell was entered as a formula.
func (r Record) IsFormula() bool {
	return r.HasFormula
}

// Store maps labels to records and remembers the order in which labels
// were first written.
type Store struct {
	cells map[string]Record
	order []string
}

func New() *Store {
	return &Store{cells: map[string]Record{}}
}

// Put creates or overwrites the record for label.
func (s *Store) Put(label string, rec Record) {
	if _, ok := s.cells[label]; !ok {
		s.order = append(s.order, label)
	}
	s.cells[label] = rec
}

// SetValue overwrites only the value of an existing record.
func (s *Store) SetValue(label string, v grid.Value) {
	rec, ok := s.cells[label]
	if !ok {
		return
	}
	rec.Value = v
	s.cells[label] = rec
}

func (s *Store) Get(label string) (Record, bool) {
	rec, ok := s.cells[label]
	return rec, ok
}

// Value returns the stored value of label; ok is false for never-set cells.
func (s *Store) Value(label string) (grid.Value, bool) {
	rec, ok := s.cells[label]
	if !ok {
		return grid.Value{}, false
	}
	return rec.Value, true
}

// Labels returns every stored label in first-write order.
func (s *Store) Labels() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) Len() int {
	return len(s.cells)
}

// Clear drops every record.
func (s *Store) Clear() {
	s.cells = map[string]Record{}
	s.order = nil
}
