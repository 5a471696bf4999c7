package calc

import (
	"regexp"
	"strings"

	"github.com/xuri/efp"

	"sheetcalc/internal/grid"
)

var refPattern = regexp.MustCompile(`[A-Z]+[0-9]+`)

// Refs lists the cells and ranges a formula reads.
type Refs struct {
	Cells  []string
	Ranges []grid.Range
}

// References extracts the references of a formula body. Ranges come from
// the Excel formula tokenizer; single cells are every LETTERS+DIGITS run the
// evaluator would substitute, so exponent literals such as 1E3 count as a
// reference to E3. Range endpoints are listed as cells too.
func References(formula string) Refs {
	var refs Refs
	formula = strings.ToUpper(formula)
	ps := efp.ExcelParser()
	for _, token := range ps.Parse("=" + formula) {
		if token.TType != efp.TokenTypeOperand || token.TSubType != efp.TokenSubTypeRange {
			continue
		}
		if !strings.Contains(token.TValue, ":") {
			continue
		}
		if rng, err := grid.ParseRange(token.TValue); err == nil {
			refs.Ranges = append(refs.Ranges, rng)
		}
	}
	seen := map[string]bool{}
	for _, ref := range refPattern.FindAllString(formula, -1) {
		if seen[ref] {
			continue
		}
		if _, err := grid.ParseAddress(ref); err != nil {
			continue
		}
		seen[ref] = true
		refs.Cells = append(refs.Cells, ref)
	}
	return refs
}
