package calc

import (
	"math"

	"sheetcalc/internal/grid"
)

// Source resolves a label to its stored value; ok is false for never-set cells.
type Source interface {
	Value(label string) (grid.Value, bool)
}

// NaNPolicy decides what a non-numeric cell inside a range does to a reduction.
type NaNPolicy int

const (
	// NaNPropagate lets a non-numeric cell turn the whole result into NaN.
	NaNPropagate NaNPolicy = iota
	// NaNSkip ignores non-numeric cells.
	NaNSkip
)

// Reducer computes one number from every cell of an inclusive range.
type Reducer func(src Source, r grid.Range, policy NaNPolicy) float64

// DefaultFunctions is the table of range functions a formula may call.
func DefaultFunctions() map[string]Reducer {
	return map[string]Reducer{
		"SUM":     Sum,
		"AVERAGE": Average,
		"MIN":     Min,
		"MAX":     Max,
		"COUNT":   Count,
	}
}

// rangeValues collects the numeric reading of every cell in r.
// Missing cells read as 0.
func rangeValues(src Source, r grid.Range, policy NaNPolicy) []float64 {
	var out []float64
	r.Each(func(a grid.Address) {
		v, ok := src.Value(a.String())
		if !ok {
			out = append(out, 0)
			return
		}
		f := v.Float()
		if math.IsNaN(f) && policy == NaNSkip {
			return
		}
		out = append(out, f)
	})
	return out
}

func Sum(src Source, r grid.Range, policy NaNPolicy) float64 {
	sum := 0.0
	for _, v := range rangeValues(src, r, policy) {
		sum += v
	}
	return sum
}

// Average of an empty range is NaN.
func Average(src Source, r grid.Range, policy NaNPolicy) float64 {
	values := rangeValues(src, r, policy)
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func Min(src Source, r grid.Range, policy NaNPolicy) float64 {
	return extreme(rangeValues(src, r, policy), func(a, b float64) bool { return a < b })
}

func Max(src Source, r grid.Range, policy NaNPolicy) float64 {
	return extreme(rangeValues(src, r, policy), func(a, b float64) bool { return a > b })
}

func extreme(values []float64, better func(a, b float64) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	best := values[0]
	for _, v := range values {
		if math.IsNaN(v) {
			return v
		}
		if better(v, best) {
			best = v
		}
	}
	return best
}

// Count returns how many stored cells in r hold a numeric value.
func Count(src Source, r grid.Range, _ NaNPolicy) float64 {
	n := 0
	r.Each(func(a grid.Address) {
		v, ok := src.Value(a.String())
		if ok && !math.IsNaN(v.Float()) {
			n++
		}
	})
	return float64(n)
}
