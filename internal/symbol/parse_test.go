package symbol

import (
	"strings"
	"testing"
)

func TestParseRendersCanonicalForms(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "x**2", want: "x**2"},
		{input: "x^2", want: "x**2"},
		{input: "2x", want: "2*x"},
		{input: "3(x+1)", want: "3*(x + 1)"},
		{input: "x sin(x)", want: "sin(x)*x"},
		{input: "1/x", want: "x**(-1)"},
		{input: "-x + x", want: "0"},
		{input: "x + x", want: "2*x"},
		{input: "x*x", want: "x**2"},
		{input: "2*x + 3*x", want: "5*x"},
		{input: "ln(x)", want: "log(x)"},
		{input: "x**-2", want: "x**(-2)"},
		{input: "1 + x", want: "x + 1"},
		{input: "2.5", want: "5/2"},
		{input: "pi", want: "pi"},
		{input: "exp(0)", want: "1"},
		{input: "sin(0)", want: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			e, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.input, err)
			}
			if got := e.String(); got != tc.want {
				t.Fatalf("Parse(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "spaces only", input: "   "},
		{name: "dangling power", input: "x**"},
		{name: "unclosed paren", input: "sin(x"},
		{name: "function without args", input: "sin + 1"},
		{name: "trailing junk", input: "x + 1)"},
		{name: "bare operator", input: "*x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.input); err == nil {
				t.Fatalf("Parse(%q): expected error", tc.input)
			}
		})
	}
}

func TestParseUnknownIdentifierBecomesVariable(t *testing.T) {
	e, err := Parse("y**2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	vars := FreeVars(e)
	if _, ok := vars["y"]; !ok || len(vars) != 1 {
		t.Fatalf("expected free vars {y}, got %v", vars)
	}
}

func TestParseConstantsAreNotFreeVariables(t *testing.T) {
	e, err := Parse("pi*x + e")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	vars := FreeVars(e)
	if len(vars) != 1 {
		t.Fatalf("expected only x free, got %v", vars)
	}
}

func TestParseErrorMentionsPosition(t *testing.T) {
	_, err := Parse("x**")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "pos") {
		t.Fatalf("expected position in error, got %q", err.Error())
	}
}
