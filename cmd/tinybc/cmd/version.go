package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/thomasrohde/tinybc/pkg/help"
)

var (
	GitCommit = "development"
	BuildDate = "unknown"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "tinybc %s\n", help.Version)
			fmt.Fprintf(a.stdout, "  Git Commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build Date: %s\n", BuildDate)
			fmt.Fprintf(a.stdout, "  Go Version: %s\n", runtime.Version())
			fmt.Fprintf(a.stdout, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
