package calc

import (
	"errors"
	"math"
	"strconv"
)

// Arith evaluates numeric literals joined by + - * / with the usual
// precedence, left to right within a level. Unary signs are allowed,
// grouping is not. The literal NaN stands for a not-a-number operand.
func Arith(expr string) (float64, error) {
	p := parser{input: expr}

	val, ok := p.parseAddSub()
	if !ok {
		return 0, &EvalError{Expr: expr, Err: ErrArithmetic}
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, &EvalError{Expr: expr, Err: ErrArithmetic}
	}
	if math.IsNaN(val) {
		return val, &EvalError{Expr: expr, Err: ErrNonNumeric}
	}
	if math.IsInf(val, 0) {
		return val, &EvalError{Expr: expr, Err: ErrArithmetic}
	}
	return val, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) parseAddSub() (float64, bool) {
	val, ok := p.parseMulDiv()
	if !ok {
		return 0, false
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			break
		}
		p.pos++
		right, ok := p.parseMulDiv()
		if !ok {
			return 0, false
		}
		if op == '+' {
			val += right
		} else {
			val -= right
		}
	}
	return val, true
}

func (p *parser) parseMulDiv() (float64, bool) {
	val, ok := p.parseFactor()
	if !ok {
		return 0, false
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			break
		}
		p.pos++
		right, ok := p.parseFactor()
		if !ok {
			return 0, false
		}
		if op == '*' {
			val *= right
		} else {
			val /= right
		}
	}
	return val, true
}

func (p *parser) parseFactor() (float64, bool) {
	p.skipSpaces()
	if p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '+':
			p.pos++
			return p.parseFactor()
		case '-':
			p.pos++
			v, ok := p.parseFactor()
			return -v, ok
		}
	}
	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	if len(p.input)-p.pos >= 3 && p.input[p.pos:p.pos+3] == "NaN" {
		p.pos += 3
		return math.NaN(), true
	}
	ch := p.input[p.pos]
	if !isDigit(ch) && ch != '.' {
		return 0, false
	}
	start := p.pos
	j := p.pos
	seenDot := false
	seenE := false
	for j < len(p.input) {
		c := p.input[j]
		if isDigit(c) {
			j++
			continue
		}
		if c == '.' {
			if seenDot || seenE {
				break
			}
			seenDot = true
			j++
			continue
		}
		if (c == 'e' || c == 'E') && !seenE {
			seenE = true
			j++
			if j < len(p.input) && (p.input[j] == '+' || p.input[j] == '-') {
				j++
			}
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.input[start:j], 64)
	if err != nil {
		// "1e400" overflows to Inf with a range error; keep the value
		if errors.Is(err, strconv.ErrRange) {
			p.pos = j
			return v, true
		}
		return 0, false
	}
	p.pos = j
	return v, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
