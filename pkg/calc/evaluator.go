package calc

import (
	"errors"
	"fmt"
	"math/big"

	"eqcalc/pkg/runtime"
	"eqcalc/pkg/scanner"
)

// Evaluator parses assignment statements of the form
//
//	name = term { '+' term }
//
// and keeps the resulting bindings for later statements. An Evaluator is not
// safe for concurrent use; callers sharing one must evaluate one statement at a time.
type Evaluator struct {
	vars *runtime.Environment
}

// New returns an evaluator with no bindings.
func New() *Evaluator {
	return &Evaluator{vars: runtime.NewEnvironment()}
}

// Evaluate parses and executes one statement, returning the assigned name.
// On failure the bindings are left unchanged and the error is a *ParseError
// whose Cursor is a byte offset into input.
//
// A statement with nothing to the right of '=' removes the binding.
func (e *Evaluator) Evaluate(input string) (string, error) {
	name, sum, err := e.parse(scanner.NewView(input))
	if err != nil {
		var failure *scanner.Failure
		if errors.As(err, &failure) {
			return "", &ParseError{
				Cursor: len(input) - len(failure.Rest),
				Kind:   failure.Kind,
				Detail: failure.Error(),
			}
		}
		return "", fmt.Errorf("calc: evaluate %q: %w", input, err)
	}
	e.vars.Set(name, sum)
	return name, nil
}

// Value returns the value bound to name.
func (e *Evaluator) Value(name string) (*big.Int, bool) {
	return e.vars.Get(name)
}

// SetValue binds name to value; a nil value removes the binding.
func (e *Evaluator) SetValue(name string, value *big.Int) {
	e.vars.Set(name, value)
}

// Unset removes the binding for name, if any.
func (e *Evaluator) Unset(name string) {
	e.vars.Unset(name)
}

// Variables returns a snapshot of every binding, ordered by name.
func (e *Evaluator) Variables() []runtime.Binding {
	return e.vars.Bindings()
}

func (e *Evaluator) parse(v *scanner.View) (string, *big.Int, error) {
	v.SkipWhitespace()
	lhs, ok := v.ReadIdentifier()
	// A missing identifier is only noticed if '=' happens to be present.
	missingLHS := v.Fail(scanner.ExpectedChar)
	if err := v.ReadRequired('='); err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, missingLHS
	}
	sum, err := e.readTerms(v)
	if err != nil {
		return "", nil, err
	}
	if !v.Empty() {
		return "", nil, v.Fail(scanner.TrailingInput)
	}
	return lhs, sum, nil
}

// readTerms returns nil without error when no term is present at all.
func (e *Evaluator) readTerms(v *scanner.View) (*big.Int, error) {
	first, ok, err := e.readValue(v)
	if err != nil || !ok {
		return nil, err
	}
	total := first
	for {
		op, ok := v.ReadBinaryOperator()
		if !ok {
			break
		}
		next, ok, err := e.readValue(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, v.Fail(scanner.ExpectedTerm)
		}
		switch op {
		case scanner.OpPlus:
			total.Add(total, next)
		}
	}
	return total, nil
}

// readValue reads a number literal or a bound identifier. The undefined
// variable failure is positioned after the identifier has been consumed.
func (e *Evaluator) readValue(v *scanner.View) (*big.Int, bool, error) {
	num, ok, err := v.ReadNumber()
	if err != nil || ok {
		return num, ok, err
	}
	name, ok := v.ReadIdentifier()
	if !ok {
		return nil, false, nil
	}
	val, ok := e.vars.Get(name)
	if !ok {
		failure := v.Fail(scanner.UndefinedVariable)
		failure.Name = name
		return nil, false, failure
	}
	return val, true, nil
}
