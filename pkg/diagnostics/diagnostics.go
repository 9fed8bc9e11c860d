// Package diagnostics defines tinybc diagnostic types for lex/parse/check errors.
package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Diagnostic code constants.
const (
	ELex         = "E_LEX"
	EInvalidChar = "E_INVALID_CHAR"
	EParse       = "E_PARSE"
	EDepth       = "E_DEPTH"
	EUnbound     = "E_UNBOUND"
	EIO          = "E_IO"
	EConfig      = "E_CONFIG"
)

// Diagnostic represents a lex, parse, or validation diagnostic.
//
// Column is where the offending construct begins; ErrorColumn, when non-zero,
// is the column of the character or token that actually caused the error.
type Diagnostic struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	File        string `json:"file,omitempty"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	ErrorColumn int    `json:"errorColumn,omitempty"`
	Hint        string `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, line, column int) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Line:    line,
		Column:  column,
	}
}

// WithFile returns a copy of d attributed to file.
func (d Diagnostic) WithFile(file string) Diagnostic {
	d.File = file
	return d
}

// WithErrorColumn returns a copy of d pointing at the offending column.
func (d Diagnostic) WithErrorColumn(col int) Diagnostic {
	d.ErrorColumn = col
	return d
}

// WithHint returns a copy of d carrying hint.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// Location renders file:line:column, or line:column without a file.
func (d Diagnostic) Location() string {
	if d.File == "" {
		return fmt.Sprintf("%d:%d", d.Line, d.Column)
	}
	return fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
}

// Carrier is implemented by errors that wrap a single Diagnostic.
type Carrier interface {
	error
	Diagnostic() Diagnostic
}

// FromError extracts the Diagnostic wrapped anywhere in err's chain.
func FromError(err error) (Diagnostic, bool) {
	var c Carrier
	if errors.As(err, &c) {
		return c.Diagnostic(), true
	}
	return Diagnostic{}, false
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, d.Location())
	if d.ErrorColumn != 0 && d.ErrorColumn != d.Column {
		out += fmt.Sprintf(" (at column %d)", d.ErrorColumn)
	}
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		if diags == nil {
			diags = []Diagnostic{}
		}
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
