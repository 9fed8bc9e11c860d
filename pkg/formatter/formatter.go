// Package formatter renders tinybc tokens, lookahead buffers and ASTs as text.
package formatter

import (
	"fmt"
	"strings"

	"github.com/thomasrohde/tinybc/pkg/ast"
	"github.com/thomasrohde/tinybc/pkg/lexer"
)

// Binding powers for operators, mirroring the parser (higher = tighter binding)
var binaryPower = map[string][2]int{
	"+": {1, 2}, "-": {1, 2},
	"*": {3, 4}, "/": {3, 4},
	"^": {7, 6},
}

const unaryPower = 5

// needsParens reports whether child must be wrapped to keep its place as the
// left or right operand of parent.
func needsParens(child ast.Expr, parentOp string, isRight bool) bool {
	call, ok := child.(*ast.Call)
	if !ok || !call.Operator {
		return false
	}
	parent := binaryPower[parentOp]
	if call.IsUnary() {
		// a leading negation only keeps its operand short of '^'
		return !isRight && unaryPower <= parent[0]
	}
	bp := binaryPower[call.Name]
	if isRight {
		return bp[0] < parent[1]
	}
	return bp[1] <= parent[0]
}

// --- Tokens ---

// FormatToken renders tok as KIND ["literal"] at LINE:COLUMN.
func FormatToken(tok lexer.Token) string {
	return tok.String()
}

// FormatTokens renders one token per line.
func FormatTokens(tokens []lexer.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(FormatToken(tok))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatBufferRange(b *strings.Builder, tokens []lexer.Token, start, end int) {
	for i := start; i < end; i++ {
		b.WriteString("  ")
		b.WriteString(FormatToken(tokens[i]))
		if i < end-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
}

// FormatBuffer dumps a lookahead buffer snapshot, oldest slot first.
func FormatBuffer(s lexer.Snapshot) string {
	if s.Length == 0 {
		return "[]\n"
	}

	var b strings.Builder
	b.WriteString("[\n")
	fmt.Fprintf(&b, "  cap = %d,\n  len = %d,\n  next = %d,\n  peeked = %d\n  ----------\n",
		s.Capacity, s.Length, s.Next, s.Peeked)

	if s.Next == 0 {
		formatBufferRange(&b, s.Tokens, 0, s.Length)
	} else {
		formatBufferRange(&b, s.Tokens, s.Next, s.Length)
		formatBufferRange(&b, s.Tokens, 0, s.Next)
	}

	b.WriteString("]\n")
	return b.String()
}

// --- Expressions ---

// FormatExpr renders e as source with the fewest parentheses that still
// parse back to the same tree.
func FormatExpr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.NumberLit:
		return n.Text
	case *ast.StringLit:
		return quoteString(n.Value)
	case *ast.Var:
		return n.Name
	case *ast.Call:
		if n.IsUnary() {
			operand := FormatExpr(n.Args[0])
			if arg, ok := n.Args[0].(*ast.Call); ok && arg.IsBinary() && binaryPower[arg.Name][0] < unaryPower {
				operand = "(" + operand + ")"
			}
			return n.Name + operand
		}
		if n.IsBinary() {
			left := FormatExpr(n.Args[0])
			if needsParens(n.Args[0], n.Name, false) {
				left = "(" + left + ")"
			}
			right := FormatExpr(n.Args[1])
			if needsParens(n.Args[1], n.Name, true) {
				right = "(" + right + ")"
			}
			return left + " " + n.Name + " " + right
		}
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = FormatExpr(a)
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// Tree renders e in prefix form, e.g. +(1, *(2, 3)).
func Tree(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.NumberLit:
		return n.Text
	case *ast.StringLit:
		return quoteString(n.Value)
	case *ast.Var:
		return n.Name
	case *ast.Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = Tree(a)
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// FormatExprList joins the elements of l with its recorded delimiters, or
// with ", " when none were recorded.
func FormatExprList(l *ast.ExprList) string {
	return joinList(l, FormatExpr)
}

// TreeList is FormatExprList with each element in prefix form.
func TreeList(l *ast.ExprList) string {
	return joinList(l, Tree)
}

func joinList(l *ast.ExprList, render func(ast.Expr) string) string {
	if l.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range l.Exprs {
		if i > 0 {
			delim := byte(',')
			if i-1 < len(l.Delimiters) {
				delim = l.Delimiters[i-1]
			}
			b.WriteByte(delim)
			b.WriteByte(' ')
		}
		b.WriteString(render(e))
	}
	return b.String()
}

// quoteString writes s back as a string literal using the escapes the
// lexer understands.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// --- Programs ---

// Format pretty-prints a tinybc program back to source code, one statement
// per line with upper-case keywords. Comments are not preserved.
func Format(program *ast.Program) string {
	return formatProgram(program, FormatExpr, FormatExprList)
}

// TreeProgram renders each statement with its expressions in prefix form.
func TreeProgram(program *ast.Program) string {
	return formatProgram(program, Tree, TreeList)
}

func formatProgram(program *ast.Program, expr func(ast.Expr) string, list func(*ast.ExprList) string) string {
	if program == nil || len(program.Statements) == 0 {
		return ""
	}
	var lines []string
	for _, s := range program.Statements {
		lines = append(lines, formatStmt(s, expr, list))
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatStmt(s ast.Stmt, expr func(ast.Expr) string, list func(*ast.ExprList) string) string {
	switch n := s.(type) {
	case *ast.LetStmt:
		return "LET " + n.Name + " = " + expr(n.Value)
	case *ast.PrintStmt:
		if n.Args.Len() == 0 {
			return "PRINT"
		}
		return "PRINT " + list(n.Args)
	default:
		return fmt.Sprintf("<%T>", s)
	}
}
