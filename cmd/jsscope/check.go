package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jsscope/internal/diag"
	"jsscope/internal/diagfmt"
	"jsscope/internal/source"
	"jsscope/internal/version"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [file|directory...]",
		Short: "Report syntax errors and lint findings",
		Long:  `Check analyzes every input and reports parse errors and lint findings; it exits with status 1 when errors are present`,
		RunE:  runCheck,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	cmd.Flags().Bool("no-warnings", false, "drop warnings and infos")
	cmd.Flags().Bool("warnings-as-errors", false, "exit with status 1 on warnings too")
	cmd.Flags().String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	cmd.Flags().Int8("context", 0, "source lines shown above each finding")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, short, json or sarif)", format)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := source.ParsePathMode(pathModeStr)
	if !ok {
		return fmt.Errorf("invalid --path-mode %q", pathModeStr)
	}
	contextLines, err := cmd.Flags().GetInt8("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}

	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	fs, results, err := runPipeline(cmd, st, args, true)
	if err != nil {
		return err
	}

	bag := collect(results, func(d diag.Diagnostic) bool {
		return !noWarnings || d.Severity >= diag.SevError
	})

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		})
	case "sarif":
		err = diagfmt.Sarif(out, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "jsscope",
			ToolVersion:    version.Collect().Version,
			InvocationArgs: append([]string{"check"}, args...),
		})
	case "short":
		fmt.Fprint(out, diag.FormatShort(bag.Items(), fs, withNotes))
	default:
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     st.color,
			Context:   contextLines,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
		if !st.quiet {
			printSummary(cmd, bag, len(results))
		}
	}
	if err != nil {
		return err
	}

	if bag.HasErrors() || (warningsAsErrors && bag.HasWarnings()) {
		return errFindings
	}
	return nil
}

func printSummary(cmd *cobra.Command, bag *diag.Bag, files int) {
	var errs, warns, infos int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			infos++
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d %s, %d %s, %d %s in %d %s\n",
		errs, plural(errs, "error"), warns, plural(warns, "warning"), infos, plural(infos, "info"),
		files, plural(files, "file"))
}

func plural(n int, word string) string {
	if n == 1 || word == "info" {
		return word
	}
	return word + "s"
}
