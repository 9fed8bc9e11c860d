// Package validator implements semantic validation of tinybc AST programs.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thomasrohde/tinybc/pkg/ast"
	"github.com/thomasrohde/tinybc/pkg/diagnostics"
)

type scope struct {
	bindings map[string]bool
}

func newScope() *scope {
	return &scope{bindings: make(map[string]bool)}
}

func (s *scope) has(name string) bool {
	return s.bindings[name]
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

// similar returns a bound name that differs from name only in case.
func (s *scope) similar(name string) (string, bool) {
	var matches []string
	for b := range s.bindings {
		if strings.EqualFold(b, name) {
			matches = append(matches, b)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

type validator struct {
	file  string
	diags []diagnostics.Diagnostic
	scope *scope
}

// Validate performs semantic analysis on a tinybc program and returns diagnostics.
// Names are bound by LET in statement order; reading a name before it is bound
// is reported once per occurrence.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	if program == nil {
		return nil
	}
	v := &validator{file: program.File, scope: newScope()}

	for _, stmt := range program.Statements {
		v.validateStmt(stmt)
	}

	return v.diags
}

func (v *validator) addDiag(code, msg string, pos ast.Pos, hint string) {
	d := diagnostics.MakeDiag(code, msg, pos.Line, pos.Column).WithHint(hint)
	if v.file != "" {
		d = d.WithFile(v.file)
	}
	v.diags = append(v.diags, d)
}

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		// the value is checked before the name is bound, so `let x = x` is unbound
		v.validateExpr(s.Value)
		v.scope.add(s.Name)
	case *ast.PrintStmt:
		if s.Args == nil {
			return
		}
		for _, e := range s.Args.Exprs {
			v.validateExpr(e)
		}
	}
}

func (v *validator) validateExpr(expr ast.Expr) {
	ast.Walk(expr, func(e ast.Expr) bool {
		ref, ok := e.(*ast.Var)
		if !ok || v.scope.has(ref.Name) {
			return true
		}
		hint := fmt.Sprintf("assign it first with LET %s = ...", ref.Name)
		if alt, found := v.scope.similar(ref.Name); found {
			hint = fmt.Sprintf("did you mean '%s'? names are case-sensitive", alt)
		}
		v.addDiag(diagnostics.EUnbound, fmt.Sprintf("unbound variable '%s'", ref.Name), ref.Pos, hint)
		return true
	})
}
