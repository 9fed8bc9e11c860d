package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thomasrohde/tinybc/pkg/help"
)

func newHelpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "help [topic]",
		Short: "Show the quick reference or a help topic",
		Long:  "Topics: " + strings.Join(help.TopicList, ", "),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprint(a.stdout, help.QUICKREF)
				return nil
			}

			if content, ok := help.Topics[strings.ToLower(args[0])]; ok {
				fmt.Fprint(a.stdout, content)
				return nil
			}

			// help for a subcommand, e.g. "tinybc help fmt"
			if sub, _, err := cmd.Root().Find(args); err == nil && sub != cmd.Root() {
				return sub.Help()
			}

			_, content, err := help.MatchTopic(args[0])
			if err != nil {
				fmt.Fprintln(a.stderr, a.style.warning(err.Error()))
				return exitWith(ExitUsage)
			}
			fmt.Fprint(a.stdout, content)
			return nil
		},
	}
}
