// Package ast defines the tinybc AST node types.
package ast

import "fmt"

// Pos is a 1-based source position.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodePos() Pos
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

// NumberLit keeps the numeral text as scanned, leading zeros stripped.
type NumberLit struct {
	Pos  Pos
	Text string
}

func (n *NumberLit) Kind() string { return "Number" }
func (n *NumberLit) NodePos() Pos { return n.Pos }
func (n *NumberLit) exprNode() {}

// StringLit holds the unescaped string value.
type StringLit struct {
	Pos   Pos
	Value string
}

func (n *StringLit) Kind() string { return "String" }
func (n *StringLit) NodePos() Pos { return n.Pos }
func (n *StringLit) exprNode() {}

// --- Identifiers ---

type Var struct {
	Pos  Pos
	Name string
}

func (n *Var) Kind() string { return "Var" }
func (n *Var) NodePos() Pos { return n.Pos }
func (n *Var) exprNode() {}

// --- Calls ---

// Call is either an operator application (Operator set, Name is the
// operator character) or a call of a named function.
type Call struct {
	Pos      Pos
	Name     string
	Operator bool
	Args     []Expr
}

func (n *Call) Kind() string { return "Call" }
func (n *Call) NodePos() Pos { return n.Pos }
func (n *Call) exprNode() {}

// IsUnary reports whether n is a prefix operator application.
func (n *Call) IsUnary() bool {
	return n.Operator && len(n.Args) == 1
}

// IsBinary reports whether n is an infix operator application.
func (n *Call) IsBinary() bool {
	return n.Operator && len(n.Args) == 2
}

// --- Lists ---

// ExprList is an ordered sequence of expressions. When delimiters are
// recorded, Delimiters[i] is the separator between Exprs[i] and Exprs[i+1].
type ExprList struct {
	Exprs      []Expr
	Delimiters []byte
}

// Len returns the number of expressions in the list.
func (l *ExprList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Exprs)
}

// RecordsDelimiters reports whether the list kept its separators.
func (l *ExprList) RecordsDelimiters() bool {
	return l != nil && l.Delimiters != nil
}

// --- Statements ---

type LetStmt struct {
	Pos   Pos
	Name  string
	Value Expr
}

func (n *LetStmt) Kind() string { return "LetStmt" }
func (n *LetStmt) NodePos() Pos { return n.Pos }
func (n *LetStmt) stmtNode() {}

type PrintStmt struct {
	Pos  Pos
	Args *ExprList
}

func (n *PrintStmt) Kind() string { return "PrintStmt" }
func (n *PrintStmt) NodePos() Pos { return n.Pos }
func (n *PrintStmt) stmtNode() {}

// --- Program ---

type Program struct {
	File       string
	Statements []Stmt
}

func (n *Program) Kind() string { return "Program" }
func (n *Program) NodePos() Pos { return Pos{Line: 1, Column: 1} }

// Walk calls fn for e and every expression nested inside it, parents first.
// Returning false from fn skips the children of that node.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	if call, ok := e.(*Call); ok {
		for _, arg := range call.Args {
			Walk(arg, fn)
		}
	}
}
