package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thomasrohde/tinybc/pkg/diagnostics"
	"github.com/thomasrohde/tinybc/pkg/lexer"
)

func newTokensCmd(a *app) *cobra.Command {
	var buffer bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "List the tokens of a file",
		Long: `List every valid token of a file, one per line, followed by any lex
diagnostics. Scanning continues past errors. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := a.readSource(args[0])
			if err != nil {
				return err
			}
			if buffer {
				return a.runBufferTrace(source, filename)
			}
			return a.runTokens(source, filename)
		},
	}
	cmd.Flags().BoolVar(&buffer, "buffer", false, "dump the lookahead buffer after every token")
	return cmd
}

type tokensOutput struct {
	File    string                   `json:"file"`
	Tokens  []lexer.Token            `json:"tokens"`
	Invalid []diagnostics.Diagnostic `json:"invalid"`
	Errors  []diagnostics.Diagnostic `json:"errors"`
}

func (a *app) runTokens(source, filename string) error {
	res := a.fe.Tokens(source, filename)

	if a.jsonOutput() {
		out := tokensOutput{
			File:    filename,
			Tokens:  res.Tokens,
			Invalid: res.Invalid,
			Errors:  res.Errors,
		}
		if out.Invalid == nil {
			out.Invalid = []diagnostics.Diagnostic{}
		}
		if out.Errors == nil {
			out.Errors = []diagnostics.Diagnostic{}
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(b))
	} else {
		for _, tok := range res.Tokens {
			fmt.Fprintln(a.stdout, a.out.token(tok))
		}
		if !res.OK() {
			a.reportDiags(res.Diagnostics())
		}
	}

	if !res.OK() {
		return exitWith(ExitDiagnostics)
	}
	return nil
}

func (a *app) runBufferTrace(source, filename string) error {
	dumps, err := a.fe.BufferTrace(source, filename)
	for _, d := range dumps {
		fmt.Fprint(a.stdout, d)
	}
	if err != nil {
		return a.failDiagnostics(err, filename)
	}
	return nil
}
