// Package lexer implements the tinybc tokenizer and its lookahead buffer.
package lexer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/thomasrohde/tinybc/pkg/diagnostics"
)

// DefaultLookahead is the buffer capacity used when none is configured.
const DefaultLookahead = 3

type scanner struct {
	source    string
	filename  string
	pos       int
	line      int
	lineStart int
	comments  int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		line:     1,
	}
}

// atEnd treats a NUL byte as the end of the source.
func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source) || s.source[s.pos] == 0
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) col() int {
	return s.pos - s.lineStart + 1
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.lineStart = s.pos
	}
	return ch
}

// matchFold reports whether the source continues with word, ignoring case.
func (s *scanner) matchFold(word string) bool {
	end := s.pos + len(word)
	if end > len(s.source) {
		return false
	}
	return strings.EqualFold(s.source[s.pos:end], word)
}

func (s *scanner) skip(n int) {
	for i := 0; i < n; i++ {
		s.advance()
	}
}

func (s *scanner) atComment() bool {
	return s.peek() == '\'' || s.matchFold("rem")
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.advance()
		} else if s.atComment() {
			// Skip comment to end of line
			s.comments++
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			break
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNameChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

// startsToken reports whether ch can begin a token, whitespace or comment.
func startsToken(ch byte) bool {
	if isDigit(ch) || isNameChar(ch) {
		return true
	}
	return strings.IndexByte(" \t\r\n'+-*/^=(),;\"", ch) >= 0
}

// minusIsBinary reports whether a '-' following prev subtracts rather than negates.
func minusIsBinary(prev Token, ok bool) bool {
	if !ok {
		return false
	}
	switch prev.Type {
	case TokRParen, TokNumber, TokName:
		return true
	default:
		return false
	}
}

func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col()

	for s.peek() == '0' {
		s.advance()
	}

	startPos := s.pos
	seenDot := false
	secondDotCol := 0
	for !s.atEnd() {
		ch := s.peek()
		if isDigit(ch) {
			s.advance()
			continue
		}
		if ch != '.' {
			break
		}
		if seenDot && secondDotCol == 0 {
			secondDotCol = s.col()
		}
		seenDot = true
		s.advance()
	}

	if secondDotCol != 0 {
		return Token{}, s.lexError(diagnostics.ELex, "a number cannot have two decimal points", startLine, startCol, secondDotCol)
	}

	text := s.source[startPos:s.pos]
	if text == "" || text[0] == '.' {
		text = "0" + text
	}
	return Token{Type: TokNumber, Text: text, Line: startLine, Column: startCol}, nil
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col()
	s.advance() // consume opening "

	var buf strings.Builder
	for {
		if s.atEnd() {
			return Token{}, s.unterminated(startLine, startCol, "end of input")
		}
		ch := s.peek()
		switch ch {
		case '"':
			s.advance() // consume closing "
			return Token{Type: TokString, Text: buf.String(), Line: startLine, Column: startCol}, nil
		case '\n':
			return Token{}, s.unterminated(startLine, startCol, "end of line")
		case '\\':
			s.advance() // consume backslash
			if s.atEnd() {
				return Token{}, s.unterminated(startLine, startCol, "end of input")
			}
			if s.peek() == '\n' {
				return Token{}, s.unterminated(startLine, startCol, "end of line")
			}
			switch esc := s.advance(); esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			default:
				// covers \" and \\ as well as unknown escapes
				buf.WriteByte(esc)
			}
		default:
			buf.WriteByte(s.advance())
		}
	}
}

func (s *scanner) unterminated(line, col int, where string) error {
	return s.lexError(diagnostics.ELex, "expected closing double quotes before "+where, line, col, s.col())
}

func (s *scanner) scanName() Token {
	startLine, startCol := s.line, s.col()
	startPos := s.pos
	for !s.atEnd() && isNameChar(s.peek()) {
		s.advance()
	}
	return Token{Type: TokName, Text: s.source[startPos:s.pos], Line: startLine, Column: startCol}
}

// scanInvalid consumes a run of adjacent characters that cannot start a token.
func (s *scanner) scanInvalid() error {
	startLine, startCol := s.line, s.col()
	startPos := s.pos
	lastCol := startCol
	for !s.atEnd() && !startsToken(s.peek()) {
		lastCol = s.col()
		s.advance()
	}
	run := s.source[startPos:s.pos]
	msg := fmt.Sprintf("invalid character %q", run)
	if len(run) > 1 {
		msg = fmt.Sprintf("invalid characters %q", run)
	}
	return s.lexError(diagnostics.EInvalidChar, msg, startLine, startCol, lastCol)
}

func (s *scanner) lexError(code, msg string, line, col, errCol int) error {
	diag := diagnostics.MakeDiag(code, msg, line, col).
		WithFile(s.filename).
		WithErrorColumn(errCol)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

// Diagnostic returns the wrapped diagnostic.
func (e *LexError) Diagnostic() diagnostics.Diagnostic {
	return e.Diag
}

// nextToken scans one token. last is the most recently produced valid token.
func (s *scanner) nextToken(last Token, hasLast bool) (Token, error) {
	s.skipWhitespaceAndComments()

	startLine, startCol := s.line, s.col()
	if s.atEnd() {
		return Token{Type: TokEOF, Line: startLine, Column: startCol}, nil
	}

	ch := s.peek()
	single := func(typ TokenType, lit byte) (Token, error) {
		s.advance()
		return Token{Type: typ, Char: lit, Line: startLine, Column: startCol}, nil
	}

	switch ch {
	case '+', '*', '/', '^':
		return single(TokBinaryOp, ch)
	case '-':
		if minusIsBinary(last, hasLast) {
			return single(TokBinaryOp, ch)
		}
		return single(TokUnaryOp, ch)
	case '=':
		return single(TokAssign, 0)
	case '(':
		return single(TokLParen, 0)
	case ')':
		return single(TokRParen, 0)
	case ',':
		return single(TokComma, ch)
	case ';':
		return single(TokSemicolon, ch)
	}

	// Keywords match as prefixes, the way classic BASIC crunches them.
	if s.matchFold("let") {
		s.skip(3)
		return Token{Type: TokLet, Line: startLine, Column: startCol}, nil
	}
	if s.matchFold("print") {
		s.skip(5)
		return Token{Type: TokPrint, Line: startLine, Column: startCol}, nil
	}

	if isDigit(ch) {
		return s.scanNumber()
	}

	if ch == '"' {
		return s.scanString()
	}

	if isNameChar(ch) {
		return s.scanName(), nil
	}

	return Token{}, s.scanInvalid()
}

// Lexer scans tokens lazily and serves them through a lookahead buffer.
// A Lexer is not safe for concurrent use.
type Lexer struct {
	sc      *scanner
	buf     *Buffer
	pending error
	logger  *slog.Logger
}

// Option configures a Lexer.
type Option func(*lexerOptions)

type lexerOptions struct {
	lookahead int
	logger    *slog.Logger
}

// WithLookahead sets the lookahead buffer capacity.
func WithLookahead(capacity int) Option {
	return func(o *lexerOptions) {
		o.lookahead = capacity
	}
}

// WithLogger sets the logger; nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *lexerOptions) {
		o.logger = logger
	}
}

// New creates a Lexer over source. It panics if the configured lookahead
// capacity is below MinLookahead.
func New(source, filename string, opts ...Option) *Lexer {
	o := lexerOptions{lookahead: DefaultLookahead}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lexer{
		sc:     newScanner(source, filename),
		buf:    NewBuffer(o.lookahead),
		logger: logger.With(slog.String("component", "lexer")),
	}
}

func (l *Lexer) scan() (Token, error) {
	last, ok := l.buf.Last()
	tok, err := l.sc.nextToken(last, ok)
	if err != nil {
		l.logger.Debug("lex error", slog.String("error", err.Error()))
		return Token{}, err
	}
	l.logger.Debug("scanned token",
		slog.String("type", tok.Type.String()),
		slog.Int("line", tok.Line),
		slog.Int("column", tok.Column))
	return tok, nil
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	return l.PeekN(0)
}

// PeekN returns the token n positions past the cursor without consuming
// anything. A scan error is returned at the position where it occurred.
// n must be below the buffer capacity minus one.
func (l *Lexer) PeekN(n int) (Token, error) {
	for l.buf.Peeked() <= n {
		if l.pending != nil {
			return Token{}, l.pending
		}
		if l.buf.Peeked()+1 >= l.buf.Cap() {
			panic(fmt.Sprintf("lexer: peek %d exceeds lookahead capacity %d", n, l.buf.Cap()))
		}
		tok, err := l.scan()
		if err != nil {
			l.pending = err
			return Token{}, err
		}
		l.buf.push(tok)
	}
	return l.buf.at(n), nil
}

// Next consumes and returns the next token, or the scan error in its place.
func (l *Lexer) Next() (Token, error) {
	if l.buf.Peeked() > 0 {
		return l.buf.pop(), nil
	}
	if l.pending != nil {
		err := l.pending
		l.pending = nil
		return Token{}, err
	}
	tok, err := l.scan()
	if err != nil {
		return Token{}, err
	}
	l.buf.push(tok)
	return l.buf.pop(), nil
}

// Previous returns the most recently consumed token.
func (l *Lexer) Previous() (Token, bool) {
	return l.buf.Previous()
}

// Filename returns the name diagnostics are attributed to.
func (l *Lexer) Filename() string {
	return l.sc.filename
}

// Comments returns how many comments have been skipped so far.
func (l *Lexer) Comments() int {
	return l.sc.comments
}

// Snapshot returns a copy of the lookahead buffer state.
func (l *Lexer) Snapshot() Snapshot {
	return l.buf.Snapshot()
}
