package calc

import (
	"errors"
	"fmt"
	"strings"

	"eqcalc/pkg/scanner"
)

// ErrorKind classifies a parse failure.
type ErrorKind = scanner.Kind

const (
	ExpectedChar            = scanner.ExpectedChar
	ExpectedTerm            = scanner.ExpectedTerm
	UndefinedVariable       = scanner.UndefinedVariable
	TrailingInput           = scanner.TrailingInput
	NumberConversionFailure = scanner.NumberConversionFailure
)

// ParseError reports where and why a statement was rejected. Cursor is a byte
// offset into the string passed to Evaluate, in [0, len(input)].
type ParseError struct {
	Cursor int
	Kind   ErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = e.Kind.String()
	}
	return fmt.Sprintf("parse error at offset %d (code %d): %s", e.Cursor, e.Kind.Code(), detail)
}

// Code returns the numeric error code of the failure kind.
func (e *ParseError) Code() int {
	return e.Kind.Code()
}

// Describe renders err against the statement it came from. Parse errors get a
// caret under the failing byte; other errors are returned as their message.
//
//	parse error at offset 20 (code 2): undefined variable 'green'
//	  pizza = red + green + 5
//	                      ^
func Describe(input string, err error) string {
	var perr *ParseError
	if !errors.As(err, &perr) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	cursor := perr.Cursor
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(input) {
		cursor = len(input)
	}
	line := strings.NewReplacer("\n", " ", "\r", " ").Replace(input)
	var pad strings.Builder
	for _, r := range input[:cursor] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteByte(' ')
	}
	var b strings.Builder
	b.WriteString(perr.Error())
	b.WriteString("\n  ")
	b.WriteString(line)
	b.WriteString("\n  ")
	b.WriteString(pad.String())
	b.WriteString("^")
	return b.String()
}
