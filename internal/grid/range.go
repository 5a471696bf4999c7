package grid

import (
	"strings"
)

// Range is an inclusive rectangle of addresses. Start must not exceed End on
// either axis; a reversed range is empty.
type Range struct {
	Start Address
	End   Address
}

// ParseRange parses "A1:B3".
func ParseRange(text string) (Range, error) {
	left, right, ok := strings.Cut(text, ":")
	if !ok {
		return Range{}, &AddressError{Text: text, Err: ErrMalformedAddress}
	}
	start, err := ParseAddress(left)
	if err != nil {
		return Range{}, err
	}
	end, err := ParseAddress(right)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}, nil
}

func (r Range) String() string {
	return r.Start.String() + ":" + r.End.String()
}

// Empty reports whether the range covers no cells.
func (r Range) Empty() bool {
	return r.Start.Col > r.End.Col || r.Start.Row > r.End.Row
}

// Contains reports whether a lies inside r.
func (r Range) Contains(a Address) bool {
	return a.Col >= r.Start.Col && a.Col <= r.End.Col &&
		a.Row >= r.Start.Row && a.Row <= r.End.Row
}

// Each visits every address of r row by row.
func (r Range) Each(fn func(Address)) {
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			fn(Address{Col: col, Row: row})
		}
	}
}
