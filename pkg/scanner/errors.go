package scanner

import "fmt"

// Kind classifies a parse failure.
type Kind int

const (
	ExpectedChar Kind = iota + 1
	ExpectedTerm
	UndefinedVariable
	TrailingInput
	NumberConversionFailure
)

func (k Kind) String() string {
	switch k {
	case ExpectedChar:
		return "expected character"
	case ExpectedTerm:
		return "expected term"
	case UndefinedVariable:
		return "undefined variable"
	case TrailingInput:
		return "unexpected trailing input"
	case NumberConversionFailure:
		return "invalid number"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Code returns the stable numeric error code. An unresolved variable in
// operand position shares code 2 with a missing term.
func (k Kind) Code() int {
	switch k {
	case ExpectedChar:
		return 1
	case ExpectedTerm, UndefinedVariable:
		return 2
	case TrailingInput:
		return 3
	case NumberConversionFailure:
		return 4
	default:
		return 0
	}
}

// Failure is a scanner-level error. Rest is the input remaining at the
// failure point; it is only meaningful relative to the string being scanned.
type Failure struct {
	Rest string
	Kind Kind
	Want byte
	Name string
}

func (f *Failure) Error() string {
	switch {
	case f.Kind == ExpectedChar && f.Want != 0:
		return fmt.Sprintf("expected %q", f.Want)
	case f.Kind == UndefinedVariable && f.Name != "":
		return fmt.Sprintf("undefined variable '%s'", f.Name)
	default:
		return f.Kind.String()
	}
}

// Fail builds a failure of the given kind at the view's current position.
func (v *View) Fail(kind Kind) *Failure {
	return &Failure{Rest: v.rest, Kind: kind}
}
