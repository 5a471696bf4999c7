package calc

import (
	"errors"
	"io"
	"log"
	"regexp"
	"strings"

	"sheetcalc/internal/grid"
)

var callPattern = regexp.MustCompile(`([A-Z]+)\(([A-Z]+[0-9]+:[A-Z]+[0-9]+)\)`)

// Evaluator computes formula bodies against a Source.
type Evaluator struct {
	Functions map[string]Reducer
	Policy    NaNPolicy
	Logger    *log.Logger
}

// NewEvaluator returns an evaluator with the default function table.
func NewEvaluator(logger *log.Logger) *Evaluator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Evaluator{
		Functions: DefaultFunctions(),
		Policy:    NaNPropagate,
		Logger:    logger,
	}
}

// Evaluate returns the number a formula body computes to, NotAvailable when
// it cannot be evaluated, or Empty when the arithmetic yields NaN.
//
// At most one range call NAME(ADDR:ADDR) is resolved first; the reducer
// result replaces the call text. Every remaining LETTERS+DIGITS token is then
// replaced by the referenced cell's value text ("0" when never set) and the
// resulting string is evaluated as plain arithmetic.
func (e *Evaluator) Evaluate(src Source, expr string) grid.Value {
	expr = strings.ToUpper(expr)

	if loc := callPattern.FindStringSubmatchIndex(expr); loc != nil {
		name := expr[loc[2]:loc[3]]
		fn, ok := e.Functions[name]
		if !ok {
			e.Logger.Printf("calc: %v %s in %q", ErrUnknownFunction, name, expr)
			return grid.NotAvailable
		}
		rng, err := grid.ParseRange(expr[loc[4]:loc[5]])
		if err != nil {
			e.Logger.Printf("calc: %v", err)
			return grid.NotAvailable
		}
		result := grid.Number(fn(src, rng, e.Policy))
		expr = expr[:loc[0]] + result.String() + expr[loc[1]:]
	}

	expr = refPattern.ReplaceAllStringFunc(expr, func(ref string) string {
		v, ok := src.Value(ref)
		if !ok {
			return "0"
		}
		return v.String()
	})

	val, err := Arith(expr)
	switch {
	case err == nil:
		return grid.Number(val)
	case errors.Is(err, ErrNonNumeric):
		return grid.Empty
	default:
		return grid.NotAvailable
	}
}
