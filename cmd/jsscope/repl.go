package main

import (
	"github.com/spf13/cobra"

	"jsscope/internal/repl"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Analyze JavaScript interactively",
		Long:  `Repl reads statements line by line and prints the scope tree of everything entered so far; type :help for commands`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return repl.REPL(cmd.OutOrStdout(), st.color)
		},
	}
}
