// Package frontend provides the top-level tinybc orchestrator.
package frontend

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/thomasrohde/tinybc/pkg/ast"
	"github.com/thomasrohde/tinybc/pkg/config"
	"github.com/thomasrohde/tinybc/pkg/diagnostics"
	"github.com/thomasrohde/tinybc/pkg/formatter"
	"github.com/thomasrohde/tinybc/pkg/lexer"
	"github.com/thomasrohde/tinybc/pkg/parser"
	"github.com/thomasrohde/tinybc/pkg/validator"
)

// ReplFile is the filename diagnostics carry for REPL input.
const ReplFile = "<repl>"

// Frontend wires together all tinybc components for one session.
// It holds no parse state and is safe for concurrent use.
type Frontend struct {
	cfg       *config.Config
	logger    *slog.Logger
	lookahead int
	maxDepth  int
	sessionID string
}

// Option is a functional option for configuring the Frontend.
type Option func(*Frontend)

// WithConfig sets the configuration. Explicit lookahead and depth options
// take precedence over it.
func WithConfig(cfg *config.Config) Option {
	return func(f *Frontend) {
		f.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Frontend) {
		f.logger = logger
	}
}

// WithLookahead sets the lexer's lookahead buffer capacity.
func WithLookahead(capacity int) Option {
	return func(f *Frontend) {
		f.lookahead = capacity
	}
}

// WithMaxDepth sets the parser's nesting limit.
func WithMaxDepth(depth int) Option {
	return func(f *Frontend) {
		f.maxDepth = depth
	}
}

// WithSessionID sets the session ID carried on log records.
func WithSessionID(id string) Option {
	return func(f *Frontend) {
		f.sessionID = id
	}
}

// New creates a new Frontend with the given options.
// By default the built-in configuration is used, logging is discarded and a
// random session ID is generated.
func New(opts ...Option) *Frontend {
	f := &Frontend{}
	for _, opt := range opts {
		opt(f)
	}
	if f.cfg == nil {
		f.cfg = config.Default()
	}
	if f.lookahead == 0 {
		f.lookahead = f.cfg.Lexer.Lookahead
	}
	if f.maxDepth == 0 {
		f.maxDepth = f.cfg.Parser.MaxDepth
	}
	if f.sessionID == "" {
		f.sessionID = uuid.NewString()
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	f.logger = f.logger.With(slog.String("session", f.sessionID))
	return f
}

// SessionID returns the ID carried on this session's log records.
func (f *Frontend) SessionID() string {
	return f.sessionID
}

// Config returns the configuration in effect.
func (f *Frontend) Config() *config.Config {
	return f.cfg
}

func (f *Frontend) lexerOpts() []lexer.Option {
	return []lexer.Option{lexer.WithLookahead(f.lookahead), lexer.WithLogger(f.logger)}
}

func (f *Frontend) parserOpts() []parser.Option {
	return []parser.Option{
		parser.WithLookahead(f.lookahead),
		parser.WithMaxDepth(f.maxDepth),
		parser.WithLogger(f.logger),
	}
}

// Tokens scans the whole source, continuing past lex errors.
func (f *Frontend) Tokens(source, filename string) lexer.Result {
	res := lexer.Tokenize(source, filename, f.lexerOpts()...)
	f.logger.Debug("tokenized",
		slog.String("file", filename),
		slog.Int("tokens", len(res.Tokens)),
		slog.Int("invalid", len(res.Invalid)),
		slog.Int("errors", len(res.Errors)))
	return res
}

// BufferTrace consumes the source token by token and returns a dump of the
// lookahead buffer after each consumption. It stops at EOF or the first
// lex error.
func (f *Frontend) BufferTrace(source, filename string) ([]string, error) {
	lx := lexer.New(source, filename, f.lexerOpts()...)
	var dumps []string
	for {
		tok, err := lx.Next()
		if err != nil {
			return dumps, f.diagError(err, filename)
		}
		dumps = append(dumps, formatter.FormatBuffer(lx.Snapshot()))
		if tok.Type == lexer.TokEOF {
			return dumps, nil
		}
	}
}

// Parse parses a tinybc program.
func (f *Frontend) Parse(source, filename string) (*ast.Program, error) {
	program, diags := parser.Parse(source, filename, f.parserOpts()...)
	if len(diags) > 0 {
		f.logger.Debug("parse failed", slog.String("file", filename), slog.String("code", diags[0].Code))
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	f.logger.Debug("parsed", slog.String("file", filename), slog.Int("statements", len(program.Statements)))
	return program, nil
}

// Check parses and validates a tinybc program.
func (f *Frontend) Check(source, filename string) []diagnostics.Diagnostic {
	program, err := f.Parse(source, filename)
	if err != nil {
		return f.diagnostics(err, filename)
	}

	vDiags := validator.Validate(program)
	return vDiags
}

// Format parses and formats a tinybc program.
func (f *Frontend) Format(source, filename string) (string, error) {
	program, err := f.Parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(program), nil
}

// Tree parses a program and renders its expressions in prefix form.
func (f *Frontend) Tree(source, filename string) (string, error) {
	program, err := f.Parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.TreeProgram(program), nil
}

// Line is the result of parsing one line of REPL input: either statements
// or a bare expression list.
type Line struct {
	Program *ast.Program
	Exprs   *ast.ExprList
}

// Tree renders the line in prefix form.
func (l *Line) Tree() string {
	if l.Exprs != nil {
		return formatter.TreeList(l.Exprs)
	}
	return strings.TrimSuffix(formatter.TreeProgram(l.Program), "\n")
}

// ParseLine parses one line of REPL input. Lines starting with LET or PRINT
// are statements; anything else is parsed as an expression list.
func (f *Frontend) ParseLine(line string) (*Line, error) {
	first, err := lexer.New(line, ReplFile, f.lexerOpts()...).Peek()
	if err != nil {
		return nil, f.diagError(err, ReplFile)
	}

	switch first.Type {
	case lexer.TokLet, lexer.TokPrint, lexer.TokEOF:
		program, err := f.Parse(line, ReplFile)
		if err != nil {
			return nil, err
		}
		return &Line{Program: program}, nil
	}

	list, err := parser.ParseExpressionList(line, ReplFile, f.parserOpts()...)
	if err != nil {
		return nil, f.diagError(err, ReplFile)
	}
	return &Line{Exprs: list}, nil
}

func (f *Frontend) diagnostics(err error, filename string) []diagnostics.Diagnostic {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Diagnostics
	}
	if d, ok := diagnostics.FromError(err); ok {
		return []diagnostics.Diagnostic{d}
	}
	return []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EParse, err.Error(), 1, 1).WithFile(filename)}
}

func (f *Frontend) diagError(err error, filename string) error {
	return &DiagnosticError{Diagnostics: f.diagnostics(err, filename)}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
