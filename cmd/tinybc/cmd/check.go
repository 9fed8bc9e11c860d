package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a file and report unbound names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := a.readSource(args[0])
			if err != nil {
				return err
			}

			diags := a.fe.Check(source, filename)
			if len(diags) > 0 {
				a.reportDiags(diags)
				return exitWith(ExitDiagnostics)
			}

			// Valid program
			if a.cfg.Output.Pretty {
				fmt.Fprintln(a.stdout, a.out.success("No errors found."))
			} else {
				fmt.Fprintln(a.stdout, "[]")
			}
			return nil
		},
	}
}
