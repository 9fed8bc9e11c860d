package lexer

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/thomasrohde/tinybc/pkg/ast"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokLet TokenType = iota
	TokPrint

	// Literals
	TokNumber
	TokString

	// Identifiers
	TokName

	// Operators
	TokAssign   // =
	TokBinaryOp // + - * / ^
	TokUnaryOp  // -

	// Punctuation
	TokLParen    // (
	TokRParen    // )
	TokComma     // ,
	TokSemicolon // ;

	// Special
	TokEOF
)

var tokenNames = [...]string{
	TokLet:       "LET",
	TokPrint:     "PRINT",
	TokNumber:    "NUMBER",
	TokString:    "STRING",
	TokName:      "NAME",
	TokAssign:    "ASSIGN",
	TokBinaryOp:  "BINARY_OP",
	TokUnaryOp:   "UNARY_OP",
	TokLParen:    "OPEN_PAREN",
	TokRParen:    "CLOSE_PAREN",
	TokComma:     "COMMA",
	TokSemicolon: "SEMICOLON",
	TokEOF:       "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// LiteralKind says which payload, if any, a token carries.
type LiteralKind int

const (
	LitNone LiteralKind = iota
	LitChar
	LitString
)

// Token represents a single lexer token. Char is set for operators and
// separators, Text for names, numbers and strings.
type Token struct {
	Type   TokenType
	Char   byte
	Text   string
	Line   int
	Column int
}

// LiteralKind reports the payload kind carried by t.
func (t Token) LiteralKind() LiteralKind {
	switch t.Type {
	case TokBinaryOp, TokUnaryOp, TokComma, TokSemicolon:
		return LitChar
	case TokName, TokNumber, TokString:
		return LitString
	default:
		return LitNone
	}
}

// Literal returns the payload as a string, or "" for payload-free tokens.
func (t Token) Literal() string {
	switch t.LiteralKind() {
	case LitChar:
		return string(t.Char)
	case LitString:
		return t.Text
	default:
		return ""
	}
}

// Pos returns the position where scanning of t began.
func (t Token) Pos() ast.Pos {
	return ast.Pos{Line: t.Line, Column: t.Column}
}

// String renders t as KIND ["literal"] at LINE:COLUMN.
func (t Token) String() string {
	switch t.LiteralKind() {
	case LitChar:
		return fmt.Sprintf("%s '%c' at %d:%d", t.Type, t.Char, t.Line, t.Column)
	case LitString:
		return fmt.Sprintf("%s %s at %d:%d", t.Type, strconv.Quote(t.Text), t.Line, t.Column)
	default:
		return fmt.Sprintf("%s at %d:%d", t.Type, t.Line, t.Column)
	}
}

// EndsExpr reports whether t cannot continue or start an arithmetic term.
func (t Token) EndsExpr() bool {
	switch t.Type {
	case TokNumber, TokString, TokBinaryOp, TokUnaryOp, TokLParen, TokName:
		return false
	default:
		return true
	}
}

// IsSeparator reports whether t separates the elements of an expression list.
func (t Token) IsSeparator() bool {
	return t.Type == TokComma || t.Type == TokSemicolon
}

// MarshalJSON encodes t with its type name and literal payload.
func (t Token) MarshalJSON() ([]byte, error) {
	out := struct {
		Type    string `json:"type"`
		Literal string `json:"literal,omitempty"`
		Line    int    `json:"line"`
		Column  int    `json:"column"`
	}{t.Type.String(), t.Literal(), t.Line, t.Column}
	return json.Marshal(out)
}
