package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thomasrohde/tinybc/pkg/diagnostics"
)

func newFmtCmd(a *app) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Print a file in canonical form",
		Long: `Print a file with upper-case keywords, one statement per line and
minimal parentheses. Comments are not preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			if write && file == "-" {
				fmt.Fprintln(a.stderr, "error: --write cannot be used with stdin")
				return exitWith(ExitUsage)
			}

			source, filename, err := a.readSource(file)
			if err != nil {
				return err
			}

			formatted, err := a.fe.Format(source, filename)
			if err != nil {
				return a.failDiagnostics(err, filename)
			}

			// Warn about comments
			if a.fe.Tokens(source, filename).Comments > 0 {
				fmt.Fprintln(a.stderr, a.style.warning("warning: comments are not preserved by the formatter"))
			}

			if write {
				if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
					a.reportDiags([]diagnostics.Diagnostic{
						diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("error writing file: %s", err), 1, 1).WithFile(file),
					})
					return exitWith(ExitUsage)
				}
				return nil
			}

			fmt.Fprint(a.stdout, formatted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")
	return cmd
}
