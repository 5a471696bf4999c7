package deps

import (
	"strings"

	"sheetcalc/internal/store"
)

// Substring reproduces the textual dependency rule: every stored formula
// that contains the changed label anywhere in its text is a dependent.
// "A1" therefore also matches formulas naming "A10" or "AA1", and there is
// no cascade past the first level.
type Substring struct {
	Store *store.Store
}

func (s Substring) Plan(changed string) []string {
	var out []string
	for _, label := range s.Store.Labels() {
		rec, ok := s.Store.Get(label)
		if !ok || !rec.IsFormula() {
			continue
		}
		if strings.Contains(rec.Formula, changed) {
			out = append(out, label)
		}
	}
	return out
}
