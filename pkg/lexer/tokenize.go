package lexer

import (
	"sort"

	"github.com/thomasrohde/tinybc/pkg/diagnostics"
)

// Result holds everything a full scan of a source produced.
type Result struct {
	// Tokens are the valid tokens in source order, EOF last.
	Tokens []Token
	// Invalid holds one diagnostic per run of invalid characters.
	Invalid []diagnostics.Diagnostic
	// Errors holds structural lexer diagnostics (strings, numerals).
	Errors []diagnostics.Diagnostic
	// Comments counts the REM and ' comments skipped.
	Comments int
}

// OK reports whether the scan produced no diagnostics.
func (r Result) OK() bool {
	return len(r.Invalid) == 0 && len(r.Errors) == 0
}

// Diagnostics returns Invalid and Errors merged in source order.
func (r Result) Diagnostics() []diagnostics.Diagnostic {
	all := make([]diagnostics.Diagnostic, 0, len(r.Invalid)+len(r.Errors))
	all = append(all, r.Invalid...)
	all = append(all, r.Errors...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Line != all[j].Line {
			return all[i].Line < all[j].Line
		}
		return all[i].Column < all[j].Column
	})
	return all
}

// Tokenize scans all of source, continuing past lex errors.
func Tokenize(source, filename string, opts ...Option) Result {
	lx := New(source, filename, opts...)
	var res Result

	for {
		tok, err := lx.Next()
		if err != nil {
			d, ok := diagnostics.FromError(err)
			if !ok {
				d = diagnostics.MakeDiag(diagnostics.ELex, err.Error(), 1, 1).WithFile(filename)
			}
			if d.Code == diagnostics.EInvalidChar {
				res.Invalid = append(res.Invalid, d)
			} else {
				res.Errors = append(res.Errors, d)
			}
			continue
		}
		res.Tokens = append(res.Tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}
	res.Comments = lx.Comments()

	return res
}
