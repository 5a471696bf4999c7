package grid

import (
	"math"
	"strconv"
	"strings"
)

// Value is what a cell holds after evaluation: a number or a piece of text.
type Value struct {
	num    float64
	text   string
	number bool
}

var (
	// NotAvailable marks a formula that could not be evaluated.
	NotAvailable = Text("N/A")
	// Empty marks a formula whose result is not a number.
	Empty = Text("")
)

func Number(f float64) Value {
	return Value{num: f, number: true}
}

func Text(s string) Value {
	return Value{text: s}
}

// IsNumber reports whether v was produced by arithmetic.
func (v Value) IsNumber() bool {
	return v.number
}

// String returns the text substituted for a reference to this value.
func (v Value) String() string {
	if !v.number {
		return v.text
	}
	if math.IsNaN(v.num) {
		return "NaN"
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// Float coerces v to a number. Text is read like a floating-point parse:
// the longest numeric prefix counts, anything else is NaN.
func (v Value) Float() float64 {
	if v.number {
		return v.num
	}
	return leadingFloat(v.text)
}

// Equal compares kind and content; NaN numbers are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.number != o.number {
		return false
	}
	if !v.number {
		return v.text == o.text
	}
	if math.IsNaN(v.num) && math.IsNaN(o.num) {
		return true
	}
	return v.num == o.num
}

func leadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}
	// out of range values come back as ±Inf alongside the error
	f, _ := strconv.ParseFloat(s[:end], 64)
	return f
}
