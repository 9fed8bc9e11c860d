package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and print its expression tree",
		Long: `Parse a file and print each statement with its expressions in prefix
form, e.g. LET x = +(1, *(2, 3)). Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(args[0])
		},
	}
}

type parseOutput struct {
	File       string   `json:"file"`
	Statements []string `json:"statements"`
}

func (a *app) runParse(file string) error {
	source, filename, err := a.readSource(file)
	if err != nil {
		return err
	}

	tree, err := a.fe.Tree(source, filename)
	if err != nil {
		return a.failDiagnostics(err, filename)
	}

	if a.jsonOutput() {
		out := parseOutput{File: filename, Statements: []string{}}
		if tree != "" {
			out.Statements = strings.Split(strings.TrimSuffix(tree, "\n"), "\n")
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(b))
		return nil
	}

	fmt.Fprint(a.stdout, tree)
	return nil
}
