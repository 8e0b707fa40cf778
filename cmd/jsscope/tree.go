package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jsscope/internal/scopefmt"
	"jsscope/internal/source"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree [flags] [file|directory...]",
		Short: "Print the scope tree of every script",
		RunE:  runTree,
	}
	cmd.Flags().Bool("through", true, "list references crossing with and eval scopes")
	return cmd
}

func runTree(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	through, err := cmd.Flags().GetBool("through")
	if err != nil {
		return fmt.Errorf("failed to get through flag: %w", err)
	}
	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	fs, results, err := runPipeline(cmd, st, args, false)
	if err != nil {
		return err
	}

	heading := color.New(color.Bold)
	if st.color {
		heading.EnableColor()
	} else {
		heading.DisableColor()
	}
	out := cmd.OutOrStdout()
	first := true
	for _, r := range results {
		f := fs.Get(r.FileID)
		for _, s := range r.Scripts {
			if !first {
				fmt.Fprintln(out)
			}
			first = false
			title := r.Path
			if f != nil {
				title = f.FormatPath(source.PathAuto, "")
				if f.Kind == source.KindHTML {
					pos := f.Position(s.Offset)
					title = fmt.Sprintf("%s <script> @%d:%d", title, pos.Line, pos.Col)
				}
			}
			if s.Module {
				title += " (module)"
			}
			fmt.Fprintln(out, heading.Sprint(title))
			scopefmt.Tree(out, s.Global, scopefmt.TreeOpts{
				Color:   st.color,
				Locate:  scopefmt.SpanLocator(fs, s.Span),
				Through: through,
			})
		}
	}
	return reportErrors(cmd, st, fs, results)
}
