package parser_test

import (
	"testing"

	"github.com/thomasrohde/tinybc/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; it should return diagnostics for invalid input.
func FuzzParse(f *testing.F) {
	seeds := []string{
		// Statements
		`let x = 42`,
		`print "a"; x, y`,
		`print`,
		"let a = 1\nlet b = a * 2\nprint a; b",
		// Expressions
		`let y = -1 - -2`,
		`let z = 2 ^ 3 ^ 2`,
		`let w = (1 + 2) * f(x, g(1))`,
		`let v = f()`,
		// Comments
		`' comment`,
		`rem comment` + "\nprint 1",
		// Errors
		`let x =`,
		`print "a" "b"`,
		`let x = (1 + 2`,
		`let x = 1 2`,
		`let = 1`,
		`print "unterminated`,
		`let x = 1.2.3`,
		`@#$`,
		`((((((((((1))))))))))`,
		`))))`,
		``,
		"\x00",
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		prog, diags := parser.Parse(input, "fuzz.bas", parser.WithMaxDepth(64))
		if prog == nil && len(diags) == 0 {
			t.Fatalf("Parse(%q) returned neither a program nor diagnostics", input)
		}
		if prog != nil && len(diags) > 0 {
			t.Fatalf("Parse(%q) returned both a program and diagnostics", input)
		}
		if len(diags) > 1 {
			t.Fatalf("Parse(%q) returned %d diagnostics, want at most one", input, len(diags))
		}
	})
}
