package grid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrMalformedAddress is returned when a label lacks its letter run or its digit run.
var ErrMalformedAddress = errors.New("malformed address")

// AddressError reports the text that failed to parse.
type AddressError struct {
	Text string
	Err  error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Text)
}

func (e *AddressError) Unwrap() error {
	return e.Err
}

// Address identifies a cell. Col is 0-based, Row starts at 1.
type Address struct {
	Col int
	Row int
}

// String renders the label, e.g. col 1,row 12 -> "B12".
func (a Address) String() string {
	return ColumnLabel(a.Col) + strconv.Itoa(a.Row)
}

// ColumnLabel: 0 -> A, 25 -> Z, 26 -> AA and so on
func ColumnLabel(col int) string {
	if col < 0 {
		return "?"
	}
	var buf []byte
	n := col + 1
	for n > 0 {
		rem := (n - 1) % 26
		buf = append(buf, byte('A'+rem))
		n = (n - 1) / 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ColumnLabels returns the first count column labels in order.
func ColumnLabels(count int) []string {
	if count <= 0 {
		return []string{}
	}
	out := make([]string, count)
	for i := range out {
		out[i] = ColumnLabel(i)
	}
	return out
}

// ColumnIndex is the inverse of ColumnLabel. Labels past MaxInt32 columns
// are malformed rather than wrapping around.
func ColumnIndex(label string) (int, error) {
	if label == "" {
		return 0, &AddressError{Text: label, Err: ErrMalformedAddress}
	}
	col := 0
	for i := 0; i < len(label); i++ {
		if !isUpper(label[i]) {
			return 0, &AddressError{Text: label, Err: ErrMalformedAddress}
		}
		if col > (math.MaxInt32-26)/26 {
			return 0, &AddressError{Text: label, Err: ErrMalformedAddress}
		}
		col = col*26 + int(label[i]-'A') + 1
	}
	return col - 1, nil
}

// ParseAddress splits names like A1, AB12 into column index and row number.
// The whole text must be uppercase letters followed by digits.
func ParseAddress(text string) (Address, error) {
	i := 0
	for i < len(text) && isUpper(text[i]) {
		i++
	}
	if i == 0 || i >= len(text) {
		return Address{}, &AddressError{Text: text, Err: ErrMalformedAddress}
	}
	for j := i; j < len(text); j++ {
		if !isDigit(text[j]) {
			return Address{}, &AddressError{Text: text, Err: ErrMalformedAddress}
		}
	}
	row, err := strconv.ParseUint(text[i:], 10, 31)
	if err != nil || row == 0 {
		return Address{}, &AddressError{Text: text, Err: ErrMalformedAddress}
	}
	col, err := ColumnIndex(text[:i])
	if err != nil {
		return Address{}, &AddressError{Text: text, Err: ErrMalformedAddress}
	}
	return Address{Col: col, Row: int(row)}, nil
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
func isDigit(b byte) bool {
	return (b >= '0' && b <= '9')
}
