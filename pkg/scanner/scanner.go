package scanner

import (
	"math/big"
)

// Operator tags the binary operators the statement grammar recognises.
type Operator int

const (
	OpPlus Operator = iota + 1
)

func (op Operator) String() string {
	switch op {
	case OpPlus:
		return "+"
	default:
		return "?"
	}
}

// View is the unconsumed remainder of a statement. Every read either advances
// the view past a token and its trailing whitespace or leaves it untouched.
type View struct {
	rest string
}

// NewView wraps the full input.
func NewView(input string) *View {
	return &View{rest: input}
}

// Rest returns the remaining, unconsumed input.
func (v *View) Rest() string {
	return v.rest
}

// Empty reports whether all input has been consumed.
func (v *View) Empty() bool {
	return len(v.rest) == 0
}

// SkipWhitespace consumes leading ASCII whitespace.
func (v *View) SkipWhitespace() {
	i := 0
	for i < len(v.rest) && isSpace(v.rest[i]) {
		i++
	}
	v.rest = v.rest[i:]
}

// ReadRequired consumes c plus trailing whitespace, failing with ExpectedChar
// when c is not the next character.
func (v *View) ReadRequired(c byte) error {
	if len(v.rest) > 0 && v.rest[0] == c {
		v.rest = v.rest[1:]
		v.SkipWhitespace()
		return nil
	}
	return &Failure{Rest: v.rest, Kind: ExpectedChar, Want: c}
}

// ReadIdentifier consumes the longest run of ASCII letters. The spelling is
// returned as written; no case folding is applied.
func (v *View) ReadIdentifier() (string, bool) {
	n := 0
	for n < len(v.rest) && isAlpha(v.rest[n]) {
		n++
	}
	if n == 0 {
		return "", false
	}
	name := v.rest[:n]
	v.rest = v.rest[n:]
	v.SkipWhitespace()
	return name, true
}

// ReadNumber consumes the longest run of decimal digits and converts it.
// Signs, decimal points and radix prefixes end the run and are left for the
// caller to see as unconsumed input.
func (v *View) ReadNumber() (*big.Int, bool, error) {
	n := 0
	for n < len(v.rest) && isDigit(v.rest[n]) {
		n++
	}
	if n == 0 {
		return nil, false, nil
	}
	value, ok := new(big.Int).SetString(v.rest[:n], 10)
	if !ok {
		return nil, false, &Failure{Rest: v.rest, Kind: NumberConversionFailure}
	}
	v.rest = v.rest[n:]
	v.SkipWhitespace()
	return value, true, nil
}

// ReadBinaryOperator consumes a single supported operator.
func (v *View) ReadBinaryOperator() (Operator, bool) {
	if len(v.rest) == 0 {
		return 0, false
	}
	switch v.rest[0] {
	case '+':
		v.rest = v.rest[1:]
		v.SkipWhitespace()
		return OpPlus, true
	default:
		return 0, false
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
