// Package parser implements the tinybc precedence-climbing parser.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/thomasrohde/tinybc/pkg/ast"
	"github.com/thomasrohde/tinybc/pkg/diagnostics"
	"github.com/thomasrohde/tinybc/pkg/lexer"
)

// DefaultMaxDepth bounds expression nesting when no limit is configured.
const DefaultMaxDepth = 256

// BindingPower is the (left, right) precedence pair of an operator.
type BindingPower struct {
	Left  uint8
	Right uint8
}

// bindingPower returns the binding power of an operator token.
func bindingPower(tok lexer.Token) (BindingPower, bool) {
	switch tok.Type {
	case lexer.TokUnaryOp:
		if tok.Char == '-' {
			return BindingPower{Right: 5}, true
		}
	case lexer.TokBinaryOp:
		switch tok.Char {
		case '+', '-':
			return BindingPower{Left: 1, Right: 2}, true
		case '*', '/':
			return BindingPower{Left: 3, Right: 4}, true
		case '^':
			return BindingPower{Left: 7, Right: 6}, true
		}
	}
	return BindingPower{}, false
}

// ParseError wraps a diagnostic for parse errors.
type ParseError struct {
	Diag diagnostics.Diagnostic
}

func (e *ParseError) Error() string {
	return e.Diag.Message
}

// Diagnostic returns the wrapped diagnostic.
func (e *ParseError) Diagnostic() diagnostics.Diagnostic {
	return e.Diag
}

// Option configures a Parser.
type Option func(*options)

type options struct {
	lookahead int
	maxDepth  int
	logger    *slog.Logger
}

// WithLookahead sets the lexer's lookahead buffer capacity.
func WithLookahead(capacity int) Option {
	return func(o *options) {
		o.lookahead = capacity
	}
}

// WithMaxDepth sets the maximum expression nesting depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the logger for the parser and its lexer.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Parser builds expressions and statements from a Lexer's token stream.
// The first diagnostic aborts the current parse; there is no recovery.
type Parser struct {
	lx       *lexer.Lexer
	depth    int
	maxDepth int
	logger   *slog.Logger
}

// New creates a Parser over source.
func New(source, filename string, opts ...Option) *Parser {
	o := options{lookahead: lexer.DefaultLookahead, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	lx := lexer.New(source, filename,
		lexer.WithLookahead(o.lookahead),
		lexer.WithLogger(logger))
	return &Parser{
		lx:       lx,
		maxDepth: o.maxDepth,
		logger:   logger.With(slog.String("component", "parser")),
	}
}

// Lexer exposes the underlying lexer, mainly for buffer snapshots.
func (p *Parser) Lexer() *lexer.Lexer {
	return p.lx
}

func (p *Parser) errorAt(code string, line, col int, msg string) *ParseError {
	diag := diagnostics.MakeDiag(code, msg, line, col).WithFile(p.lx.Filename())
	return &ParseError{Diag: diag}
}

func (p *Parser) tokenError(tok lexer.Token, format string, args ...any) *ParseError {
	return p.errorAt(diagnostics.EParse, tok.Line, tok.Column, fmt.Sprintf(format, args...))
}

// --- Expressions ---

// ParseExpr parses one expression. A string literal is accepted only when
// allowString is set; everywhere else expressions are arithmetic.
func (p *Parser) ParseExpr(allowString bool) (ast.Expr, error) {
	tok, err := p.lx.Peek()
	if err != nil {
		return nil, err
	}
	if allowString && tok.Type == lexer.TokString {
		p.lx.Next()
		op, err := p.lx.Peek()
		if err != nil {
			return nil, err
		}
		if op.Type == lexer.TokBinaryOp {
			return nil, p.tokenError(op, "math cannot be done with strings")
		}
		return &ast.StringLit{Pos: tok.Pos(), Value: tok.Text}, nil
	}
	return p.parseMathExpr(0)
}

func (p *Parser) parseMathExpr(minBP uint8) (ast.Expr, error) {
	tok, err := p.lx.Next()
	if err != nil {
		return nil, err
	}

	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		e := p.errorAt(diagnostics.EDepth, tok.Line, tok.Column, "expression nested too deeply")
		e.Diag = e.Diag.WithHint(fmt.Sprintf("the maximum nesting depth is %d", p.maxDepth))
		return nil, e
	}

	lhs, err := p.parseOperand(tok)
	if err != nil {
		return nil, err
	}

	// continually try to parse more operators
	for {
		op, err := p.lx.Peek()
		if err != nil {
			return nil, err
		}
		if op.EndsExpr() {
			break
		}
		if op.Type != lexer.TokBinaryOp {
			p.lx.Next() // consume the offender so the error points past it
			return nil, p.tokenError(op, "expected binary operator, received %s", op.Type)
		}

		bp, ok := bindingPower(op)
		if !ok {
			return nil, p.tokenError(op, "unknown operator '%c'", op.Char)
		}
		if bp.Left < minBP {
			break
		}

		p.lx.Next()

		// make sure there is an operand before we recurse
		following, err := p.lx.Peek()
		if err != nil {
			return nil, err
		}
		if following.EndsExpr() {
			e := p.tokenError(op, "incomplete expression after '%c'", op.Char)
			e.Diag = e.Diag.WithErrorColumn(following.Column)
			return nil, e
		}

		rhs, err := p.parseMathExpr(bp.Right)
		if err != nil {
			return nil, err
		}

		lhs = &ast.Call{
			Pos:      lhs.NodePos(),
			Name:     string(op.Char),
			Operator: true,
			Args:     []ast.Expr{lhs, rhs},
		}
	}

	// the expression builds up in lhs; return that at the end
	return lhs, nil
}

// parseOperand turns the already consumed tok into the left-hand seed.
func (p *Parser) parseOperand(tok lexer.Token) (ast.Expr, error) {
	switch tok.Type {
	case lexer.TokNumber:
		return &ast.NumberLit{Pos: tok.Pos(), Text: tok.Text}, nil

	case lexer.TokString:
		return nil, p.tokenError(tok, "math cannot be done with strings")

	case lexer.TokUnaryOp:
		bp, ok := bindingPower(tok)
		if !ok {
			return nil, p.tokenError(tok, "unknown operator '%c'", tok.Char)
		}
		arg, err := p.parseMathExpr(bp.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Call{
			Pos:      tok.Pos(),
			Name:     string(tok.Char),
			Operator: true,
			Args:     []ast.Expr{arg},
		}, nil

	case lexer.TokLParen:
		inner, err := p.parseMathExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectClose(tok); err != nil {
			return nil, err
		}
		return inner, nil

	case lexer.TokName:
		return p.parseNameOrCall(tok)

	case lexer.TokEOF:
		return nil, p.tokenError(tok, "expected expression")

	default:
		return nil, p.tokenError(tok, "unexpected token: %s", tok.Type)
	}
}

func (p *Parser) parseNameOrCall(name lexer.Token) (ast.Expr, error) {
	open, err := p.lx.Peek()
	if err != nil {
		return nil, err
	}
	if open.Type != lexer.TokLParen {
		return &ast.Var{Pos: name.Pos(), Name: name.Text}, nil
	}
	p.lx.Next() // consume '('

	call := &ast.Call{Pos: name.Pos(), Name: name.Text}

	next, err := p.lx.Peek()
	if err != nil {
		return nil, err
	}
	if next.Type != lexer.TokRParen {
		// arguments never take strings and never keep their delimiters
		args, err := p.ParseExprList(false, false)
		if err != nil {
			return nil, err
		}
		call.Args = args.Exprs
	}

	if err := p.expectClose(open); err != nil {
		return nil, err
	}
	return call, nil
}

// expectClose consumes the token that must close the parenthesis open.
func (p *Parser) expectClose(open lexer.Token) error {
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	if tok.Type == lexer.TokRParen {
		return nil
	}
	e := p.errorAt(diagnostics.EParse, open.Line, open.Column, "expected closing parenthesis")
	if tok.Line == open.Line {
		e.Diag = e.Diag.WithErrorColumn(tok.Column)
	}
	e.Diag = e.Diag.WithHint(fmt.Sprintf("found %s at %d:%d", tok.Type, tok.Line, tok.Column))
	return e
}

// --- Expression lists ---

// ParseExprList parses one or more expressions separated by ',' or ';'.
// With recordDelimiters set, each separator is kept on the list.
func (p *Parser) ParseExprList(allowString, recordDelimiters bool) (*ast.ExprList, error) {
	list := &ast.ExprList{}
	if recordDelimiters {
		list.Delimiters = []byte{}
	}

	for {
		expr, err := p.ParseExpr(allowString)
		if err != nil {
			return nil, err
		}
		list.Exprs = append(list.Exprs, expr)

		tok, err := p.lx.Peek()
		if err != nil {
			return nil, err
		}
		if tok.IsSeparator() {
			p.lx.Next()
			if recordDelimiters {
				list.Delimiters = append(list.Delimiters, tok.Char)
			}
			continue
		}
		if tok.EndsExpr() {
			return list, nil
		}
		return nil, p.tokenError(tok, "expected ',' or ';' between expressions, received %s", tok.Type)
	}
}

// --- Statements ---

// ParseStatement parses one LET or PRINT statement.
func (p *Parser) ParseStatement() (ast.Stmt, error) {
	tok, err := p.lx.Next()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case lexer.TokLet:
		return p.parseLet(tok)
	case lexer.TokPrint:
		return p.parsePrint(tok)
	default:
		return nil, p.tokenError(tok, "expected statement, received %s", tok.Type)
	}
}

func (p *Parser) parseLet(start lexer.Token) (*ast.LetStmt, error) {
	name, err := p.lx.Next()
	if err != nil {
		return nil, err
	}
	if name.Type != lexer.TokName {
		return nil, p.tokenError(name, "expected variable name after LET, received %s", name.Type)
	}

	assign, err := p.lx.Next()
	if err != nil {
		return nil, err
	}
	if assign.Type != lexer.TokAssign {
		return nil, p.tokenError(assign, "expected '=' after %s, received %s", name.Text, assign.Type)
	}

	value, err := p.ParseExpr(false)
	if err != nil {
		return nil, err
	}
	return &ast.LetStmt{Pos: start.Pos(), Name: name.Text, Value: value}, nil
}

func (p *Parser) parsePrint(start lexer.Token) (*ast.PrintStmt, error) {
	next, err := p.lx.Peek()
	if err != nil {
		return nil, err
	}
	switch next.Type {
	case lexer.TokEOF, lexer.TokLet, lexer.TokPrint:
		return &ast.PrintStmt{Pos: start.Pos(), Args: &ast.ExprList{Delimiters: []byte{}}}, nil
	}

	args, err := p.ParseExprList(true, true)
	if err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Pos: start.Pos(), Args: args}, nil
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{File: p.lx.Filename()}

	for {
		tok, err := p.lx.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Type == lexer.TokEOF {
			break
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		p.logger.Debug("parsed statement",
			slog.String("kind", stmt.Kind()),
			slog.Int("line", stmt.NodePos().Line))
		prog.Statements = append(prog.Statements, stmt)
	}

	return prog, nil
}

// expectEOF fails unless the whole source has been consumed.
func (p *Parser) expectEOF() error {
	tok, err := p.lx.Peek()
	if err != nil {
		return err
	}
	if tok.Type != lexer.TokEOF {
		return p.tokenError(tok, "unexpected token after expression: %s", tok.Type)
	}
	return nil
}

// --- Entry points ---

// Parse tokenizes source and parses it into a Program.
func Parse(source, filename string, opts ...Option) (*ast.Program, []diagnostics.Diagnostic) {
	p := New(source, filename, opts...)
	prog, err := p.ParseProgram()
	if err != nil {
		d := toDiagnostic(err, filename)
		p.logger.Debug("parse failed", slog.String("code", d.Code), slog.String("at", d.Location()))
		return nil, []diagnostics.Diagnostic{d}
	}
	return prog, nil
}

// ParseExpression parses source as a single expression. A string literal is
// accepted only as the whole expression.
func ParseExpression(source, filename string, opts ...Option) (ast.Expr, error) {
	p := New(source, filename, opts...)
	expr, err := p.ParseExpr(true)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseExpressionList parses source as one delimiter-recording expression list.
func ParseExpressionList(source, filename string, opts ...Option) (*ast.ExprList, error) {
	p := New(source, filename, opts...)
	list, err := p.ParseExprList(true, true)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return list, nil
}

func toDiagnostic(err error, filename string) diagnostics.Diagnostic {
	if d, ok := diagnostics.FromError(err); ok {
		return d
	}
	return diagnostics.MakeDiag(diagnostics.EParse, err.Error(), 1, 1).WithFile(filename)
}
