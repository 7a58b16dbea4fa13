package scanner

import (
	"errors"
	"testing"
)

func TestSkipWhitespace(t *testing.T) {
	v := NewView(" \t\r\n\v\fx ")
	v.SkipWhitespace()
	if got := v.Rest(); got != "x " {
		t.Fatalf("Rest = %q, want %q", got, "x ")
	}
	v = NewView("")
	v.SkipWhitespace()
	if !v.Empty() {
		t.Fatalf("expected empty view")
	}
}

func TestReadRequired(t *testing.T) {
	v := NewView("=  5")
	if err := v.ReadRequired('='); err != nil {
		t.Fatalf("ReadRequired returned error: %v", err)
	}
	if got := v.Rest(); got != "5" {
		t.Fatalf("Rest = %q, want %q", got, "5")
	}

	v = NewView("_ = 17")
	err := v.ReadRequired('=')
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %T", err)
	}
	if failure.Kind != ExpectedChar || failure.Rest != "_ = 17" {
		t.Fatalf("unexpected failure %#v", failure)
	}
	if v.Rest() != "_ = 17" {
		t.Fatalf("view moved on failure: %q", v.Rest())
	}
	if failure.Error() != `expected '='` {
		t.Fatalf("Error = %q", failure.Error())
	}
}

func TestReadRequiredAtEnd(t *testing.T) {
	v := NewView("")
	err := v.ReadRequired('=')
	var failure *Failure
	if !errors.As(err, &failure) || failure.Rest != "" {
		t.Fatalf("expected failure at end of input, got %v", err)
	}
}

func TestReadIdentifier(t *testing.T) {
	cases := []struct {
		input string
		name  string
		ok    bool
		rest  string
	}{
		{input: "left = 5", name: "left", ok: true, rest: "= 5"},
		{input: "abCD=1", name: "abCD", ok: true, rest: "=1"},
		{input: "lady_bug", name: "lady", ok: true, rest: "_bug"},
		{input: "x1", name: "x", ok: true, rest: "1"},
		{input: "42", ok: false, rest: "42"},
		{input: "", ok: false, rest: ""},
		{input: "é", ok: false, rest: "é"},
	}
	for _, tc := range cases {
		v := NewView(tc.input)
		name, ok := v.ReadIdentifier()
		if ok != tc.ok || name != tc.name {
			t.Fatalf("%q: ReadIdentifier = (%q, %v), want (%q, %v)", tc.input, name, ok, tc.name, tc.ok)
		}
		if v.Rest() != tc.rest {
			t.Fatalf("%q: Rest = %q, want %q", tc.input, v.Rest(), tc.rest)
		}
	}
}

func TestReadNumber(t *testing.T) {
	cases := []struct {
		input string
		value string
		ok    bool
		rest  string
	}{
		{input: "17", value: "17", ok: true, rest: ""},
		{input: "800000000000000000000 + x", value: "800000000000000000000", ok: true, rest: "+ x"},
		{input: "123.456", value: "123", ok: true, rest: ".456"},
		{input: "0x234", value: "0", ok: true, rest: "x234"},
		{input: "007", value: "7", ok: true, rest: ""},
		{input: "-17", ok: false, rest: "-17"},
		{input: "red", ok: false, rest: "red"},
	}
	for _, tc := range cases {
		v := NewView(tc.input)
		value, ok, err := v.ReadNumber()
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.input, err)
		}
		if ok != tc.ok {
			t.Fatalf("%q: ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && value.String() != tc.value {
			t.Fatalf("%q: value = %s, want %s", tc.input, value, tc.value)
		}
		if v.Rest() != tc.rest {
			t.Fatalf("%q: Rest = %q, want %q", tc.input, v.Rest(), tc.rest)
		}
	}
}

func TestReadBinaryOperator(t *testing.T) {
	v := NewView("+  right")
	op, ok := v.ReadBinaryOperator()
	if !ok || op != OpPlus {
		t.Fatalf("ReadBinaryOperator = (%v, %v), want (+, true)", op, ok)
	}
	if v.Rest() != "right" {
		t.Fatalf("Rest = %q, want %q", v.Rest(), "right")
	}

	for _, input := range []string{"- 17", "* 2", ""} {
		v := NewView(input)
		if _, ok := v.ReadBinaryOperator(); ok {
			t.Fatalf("%q: expected no operator", input)
		}
		if v.Rest() != input {
			t.Fatalf("%q: view moved to %q", input, v.Rest())
		}
	}
}

func TestKindCodes(t *testing.T) {
	cases := map[Kind]int{
		ExpectedChar:            1,
		ExpectedTerm:            2,
		UndefinedVariable:       2,
		TrailingInput:           3,
		NumberConversionFailure: 4,
	}
	for kind, want := range cases {
		if got := kind.Code(); got != want {
			t.Fatalf("%s: Code = %d, want %d", kind, got, want)
		}
	}
}
