package formatter_test

import (
	"strings"
	"testing"

	"github.com/thomasrohde/tinybc/pkg/ast"
	"github.com/thomasrohde/tinybc/pkg/formatter"
	"github.com/thomasrohde/tinybc/pkg/lexer"
	"github.com/thomasrohde/tinybc/pkg/parser"
)

func mustExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	expr, err := parser.ParseExpression(source, "test.bas")
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return expr
}

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, diags := parser.Parse(source, "test.bas")
	if len(diags) > 0 {
		t.Fatalf("parse %q: %v", source, diags)
	}
	return prog
}

func TestFormatToken(t *testing.T) {
	tests := []struct {
		tok  lexer.Token
		want string
	}{
		{lexer.Token{Type: lexer.TokNumber, Text: "7", Line: 1, Column: 1}, `NUMBER "7" at 1:1`},
		{lexer.Token{Type: lexer.TokBinaryOp, Char: '+', Line: 1, Column: 5}, `BINARY_OP '+' at 1:5`},
		{lexer.Token{Type: lexer.TokString, Text: "a\nb", Line: 2, Column: 3}, `STRING "a\nb" at 2:3`},
		{lexer.Token{Type: lexer.TokLParen, Line: 3, Column: 9}, `OPEN_PAREN at 3:9`},
		{lexer.Token{Type: lexer.TokEOF, Line: 1, Column: 11}, `EOF at 1:11`},
	}
	for _, tt := range tests {
		if got := formatter.FormatToken(tt.tok); got != tt.want {
			t.Errorf("FormatToken = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatTokens(t *testing.T) {
	res := lexer.Tokenize("let x = 1", "test.bas")
	want := `LET at 1:1
NAME "x" at 1:5
ASSIGN at 1:7
NUMBER "1" at 1:9
EOF at 1:10
`
	if got := formatter.FormatTokens(res.Tokens); got != want {
		t.Errorf("FormatTokens =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatBufferEmpty(t *testing.T) {
	lx := lexer.New("", "test.bas")
	if got := formatter.FormatBuffer(lx.Snapshot()); got != "[]\n" {
		t.Errorf("got %q", got)
	}
}

func TestFormatBufferWrapped(t *testing.T) {
	lx := lexer.New("a + b", "test.bas", lexer.WithLookahead(2))
	lx.Next() // a
	lx.Next() // +
	lx.Next() // b

	// slot 0 holds b, slot 1 holds +, cursor is back at slot 1
	want := `[
  cap = 2,
  len = 2,
  next = 1,
  peeked = 0
  ----------
  BINARY_OP '+' at 1:3
  NAME "b" at 1:5
]
`
	if got := formatter.FormatBuffer(lx.Snapshot()); got != want {
		t.Errorf("FormatBuffer =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatBufferUnwrapped(t *testing.T) {
	lx := lexer.New("x 1", "test.bas", lexer.WithLookahead(3))
	lx.PeekN(1)

	want := `[
  cap = 3,
  len = 2,
  next = 0,
  peeked = 2
  ----------
  NAME "x" at 1:1,
  NUMBER "1" at 1:3
]
`
	if got := formatter.FormatBuffer(lx.Snapshot()); got != want {
		t.Errorf("FormatBuffer =\n%s\nwant\n%s", got, want)
	}
}

func TestTree(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1 + 2 * 3", "+(1, *(2, 3))"},
		{"2 ^ 3 ^ 2", "^(2, ^(3, 2))"},
		{"-1 - -2", "-(-(1), -(2))"},
		{`"a\tb"`, `"a\tb"`},
		{"f(x, 1)", "f(x, 1)"},
	}
	for _, tt := range tests {
		if got := formatter.Tree(mustExpr(t, tt.source)); got != tt.want {
			t.Errorf("Tree(%q) = %s, want %s", tt.source, got, tt.want)
		}
	}
}

func TestFormatExprMinimalParens(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1+2*3", "1 + 2 * 3"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"(1*2)+3", "1 * 2 + 3"},
		{"1-(2-3)", "1 - (2 - 3)"},
		{"(1-2)-3", "1 - 2 - 3"},
		{"2^(3^2)", "2 ^ 3 ^ 2"},
		{"(2^3)^2", "(2 ^ 3) ^ 2"},
		{"(-2)^2", "(-2) ^ 2"},
		{"-(2^2)", "-2 ^ 2"},
		{"-(1+2)", "-(1 + 2)"},
		{"-(2*3)", "-(2 * 3)"},
		{"1 - -2", "1 - -2"},
		{"2 ^ -1", "2 ^ -1"},
		{"- -x", "--x"},
		{"((x))", "x"},
		{"f(1+2, g(x))*2", "f(1 + 2, g(x)) * 2"},
		{`"q\"x\\"`, `"q\"x\\"`},
		{"f()", "f()"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := formatter.FormatExpr(mustExpr(t, tt.source)); got != tt.want {
				t.Errorf("FormatExpr(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestFormatExprRoundTrips(t *testing.T) {
	sources := []string{
		"1 + 2 * 3 - 4 / 5",
		"(1 + 2) * (3 - 4) ^ -(5 + 6)",
		"-(-x) ^ 2 ^ (y - 1)",
		"((2 ^ 3) ^ 4) / -f(a, b * c)",
		"a - (b - (c - d))",
		"-a * -b",
	}
	for _, src := range sources {
		first := mustExpr(t, src)
		text := formatter.FormatExpr(first)
		second := mustExpr(t, text)
		if formatter.Tree(first) != formatter.Tree(second) {
			t.Errorf("%q formatted as %q changed the tree: %s vs %s",
				src, text, formatter.Tree(first), formatter.Tree(second))
		}
	}
}

func TestFormatExprList(t *testing.T) {
	list, err := parser.ParseExpressionList(`"a";b,  1+2;c`, "test.bas")
	if err != nil {
		t.Fatal(err)
	}
	if got := formatter.FormatExprList(list); got != `"a"; b, 1 + 2; c` {
		t.Errorf("FormatExprList = %q", got)
	}
	if got := formatter.TreeList(list); got != `"a"; b, +(1, 2); c` {
		t.Errorf("TreeList = %q", got)
	}

	// lists parsed without delimiters fall back to commas
	bare := &ast.ExprList{Exprs: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}}}
	if got := formatter.FormatExprList(bare); got != "x, y" {
		t.Errorf("FormatExprList(bare) = %q", got)
	}
	if got := formatter.FormatExprList(nil); got != "" {
		t.Errorf("FormatExprList(nil) = %q", got)
	}
}

func TestFormatProgram(t *testing.T) {
	source := `' header comment
let x = (1+2)*3
print "x is";x,  -x
print
`
	want := `LET x = (1 + 2) * 3
PRINT "x is"; x, -x
PRINT
`
	got := formatter.Format(mustParse(t, source))
	if got != want {
		t.Errorf("Format =\n%s\nwant\n%s", got, want)
	}

	// formatting is idempotent
	if again := formatter.Format(mustParse(t, got)); again != got {
		t.Errorf("second pass changed output:\n%s", again)
	}
}

func TestTreeProgram(t *testing.T) {
	got := formatter.TreeProgram(mustParse(t, "let y = 1 + 2 * 3\nprint y; -y"))
	want := "LET y = +(1, *(2, 3))\nPRINT y; -(y)\n"
	if got != want {
		t.Errorf("TreeProgram = %q, want %q", got, want)
	}
}

func TestFormatEmptyProgram(t *testing.T) {
	if got := formatter.Format(mustParse(t, "")); got != "" {
		t.Errorf("got %q", got)
	}
	if got := formatter.Format(nil); got != "" {
		t.Errorf("nil program: got %q", got)
	}
	if strings.TrimSpace(formatter.TreeProgram(mustParse(t, "' nothing"))) != "" {
		t.Error("comment-only program should render empty")
	}
}
