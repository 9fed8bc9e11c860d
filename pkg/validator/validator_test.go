package validator_test

import (
	"strings"
	"testing"

	"github.com/thomasrohde/tinybc/pkg/diagnostics"
	"github.com/thomasrohde/tinybc/pkg/parser"
	"github.com/thomasrohde/tinybc/pkg/validator"
)

// helper parses source and validates, returning diagnostics from validation only.
// It fatals on parse errors so test cases focus on validator behavior.
func mustParseAndValidate(t *testing.T, source string) []diagnostics.Diagnostic {
	t.Helper()
	prog, parseErrs := parser.Parse(source, "test.bas")
	if len(parseErrs) > 0 {
		t.Fatalf("unexpected parse error: %s", parseErrs[0].Message)
	}
	return validator.Validate(prog)
}

// assertNoDiags asserts zero diagnostics were produced.
func assertNoDiags(t *testing.T, diags []diagnostics.Diagnostic) {
	t.Helper()
	if len(diags) != 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.Code+": "+d.Message)
		}
		t.Errorf("expected no diagnostics, got %d:\n  %s", len(diags), strings.Join(msgs, "\n  "))
	}
}

// assertDiagCount asserts the expected number of diagnostics.
func assertDiagCount(t *testing.T, diags []diagnostics.Diagnostic, expected int) {
	t.Helper()
	if len(diags) != expected {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.Code+": "+d.Message)
		}
		t.Fatalf("expected %d diagnostics, got %d:\n  %s", expected, len(diags), strings.Join(msgs, "\n  "))
	}
}

func TestBoundNames(t *testing.T) {
	tests := []string{
		"",
		"print 1",
		`print "no names here"`,
		"let x = 1\nprint x",
		"let x = 1\nlet y = x * 2\nprint x; y",
		"let x = 1\nlet x = x + 1",
		"let a = 1\nprint abs(a), max(a, 2)",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assertNoDiags(t, mustParseAndValidate(t, src))
		})
	}
}

func TestUnboundVariable(t *testing.T) {
	diags := mustParseAndValidate(t, "print x")
	assertDiagCount(t, diags, 1)
	d := diags[0]
	if d.Code != diagnostics.EUnbound {
		t.Errorf("code = %s, want %s", d.Code, diagnostics.EUnbound)
	}
	if d.Message != "unbound variable 'x'" {
		t.Errorf("message = %q", d.Message)
	}
	if d.Line != 1 || d.Column != 7 || d.File != "test.bas" {
		t.Errorf("location = %s", d.Location())
	}
	if !strings.Contains(d.Hint, "LET x") {
		t.Errorf("hint = %q", d.Hint)
	}
}

func TestSelfReferenceIsUnbound(t *testing.T) {
	diags := mustParseAndValidate(t, "let x = x + 1")
	assertDiagCount(t, diags, 1)
	if diags[0].Column != 9 {
		t.Errorf("column = %d, want 9", diags[0].Column)
	}
}

func TestUseBeforeLet(t *testing.T) {
	diags := mustParseAndValidate(t, "print y\nlet y = 2\nprint y")
	assertDiagCount(t, diags, 1)
	if diags[0].Line != 1 {
		t.Errorf("line = %d, want 1", diags[0].Line)
	}
}

func TestEveryOccurrenceReported(t *testing.T) {
	diags := mustParseAndValidate(t, "print a + a; f(b, -c)")
	assertDiagCount(t, diags, 4)
	var names []string
	for _, d := range diags {
		names = append(names, d.Message)
	}
	want := []string{
		"unbound variable 'a'",
		"unbound variable 'a'",
		"unbound variable 'b'",
		"unbound variable 'c'",
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("diag %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCaseSensitiveHint(t *testing.T) {
	diags := mustParseAndValidate(t, "let Total = 1\nprint total")
	assertDiagCount(t, diags, 1)
	if diags[0].Hint != "did you mean 'Total'? names are case-sensitive" {
		t.Errorf("hint = %q", diags[0].Hint)
	}
}

func TestFunctionNamesNotChecked(t *testing.T) {
	assertNoDiags(t, mustParseAndValidate(t, "print undefined_fn(1)"))
}

func TestNilProgram(t *testing.T) {
	if diags := validator.Validate(nil); diags != nil {
		t.Errorf("expected nil, got %v", diags)
	}
}
