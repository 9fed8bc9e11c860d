package cmd

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thomasrohde/tinybc/pkg/diagnostics"
	"github.com/thomasrohde/tinybc/pkg/formatter"
	"github.com/thomasrohde/tinybc/pkg/lexer"
)

// Color palette
var (
	colorError   = lipgloss.Color("#E06C75")
	colorWarning = lipgloss.Color("#E5C07B")
	colorKind    = lipgloss.Color("#61AFEF")
	colorMuted   = lipgloss.Color("#7F848E")
	colorOK      = lipgloss.Color("#98C379")
)

// styles renders CLI output, with or without color.
type styles struct {
	enabled bool
	err     lipgloss.Style
	warn    lipgloss.Style
	kind    lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
}

func newStyles(w io.Writer, enabled bool) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		enabled: enabled,
		err:     r.NewStyle().Foreground(colorError).Bold(true),
		warn:    r.NewStyle().Foreground(colorWarning),
		kind:    r.NewStyle().Foreground(colorKind),
		muted:   r.NewStyle().Foreground(colorMuted),
		ok:      r.NewStyle().Foreground(colorOK),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

func (s styles) warning(text string) string {
	return s.render(s.warn, text)
}

func (s styles) success(text string) string {
	return s.render(s.ok, text)
}

// diagnostic renders d in pretty form with a highlighted header line.
func (s styles) diagnostic(d diagnostics.Diagnostic) string {
	text := diagnostics.FormatDiagnostic(d, true)
	header, rest, found := strings.Cut(text, "\n")
	out := s.render(s.err, header)
	if found {
		out += "\n" + s.render(s.muted, rest)
	}
	return out
}

// token renders tok with its kind highlighted.
func (s styles) token(tok lexer.Token) string {
	text := formatter.FormatToken(tok)
	kind := tok.Type.String()
	return s.render(s.kind, kind) + strings.TrimPrefix(text, kind)
}
