package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jsscope/internal/diag"
	"jsscope/internal/diagfmt"
	"jsscope/internal/driver"
	"jsscope/internal/scopefmt"
	"jsscope/internal/source"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [flags] [file|directory...]",
		Short: "Serialize the scope tree of every script as JSON",
		Long: `Analyze parses each input (JavaScript files, or inline scripts of HTML pages) and prints its scope tree.
json-lines prints one tree per line; json-array prints one array of {path, offset, scope} documents.`,
		RunE: runAnalyze,
	}
	cmd.Flags().String("format", "json-lines", "output format (json-lines|json-array)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "json-lines" && format != "json-array" {
		return fmt.Errorf("unsupported format %q (must be json-lines or json-array)", format)
	}

	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	fs, results, err := runPipeline(cmd, st, args, true)
	if err != nil {
		return err
	}

	var docs []scopefmt.Document
	for _, r := range results {
		path := r.Path
		if f := fs.Get(r.FileID); f != nil {
			path = f.FormatPath(source.PathAuto, "")
		}
		for _, s := range r.Scripts {
			docs = append(docs, scopefmt.Document{Path: path, Offset: s.Offset, Scope: json.RawMessage(s.JSON)})
		}
	}
	if format == "json-array" {
		err = scopefmt.JSONArray(cmd.OutOrStdout(), docs)
	} else {
		err = scopefmt.JSONLines(cmd.OutOrStdout(), docs)
	}
	if err != nil {
		return err
	}
	return reportErrors(cmd, st, fs, results)
}

// reportErrors prints error diagnostics of results to stderr and returns
// errFindings when there were any.
func reportErrors(cmd *cobra.Command, st settings, fs *source.FileSet, results []driver.FileResult) error {
	bag := collect(results, func(d diag.Diagnostic) bool { return d.Severity >= diag.SevError })
	if bag.Len() == 0 {
		return nil
	}
	if !st.quiet {
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{Color: st.color, PathMode: source.PathAuto})
	}
	return errFindings
}

// collect merges the diagnostics of every file that pass keep into one
// sorted bag.
func collect(results []driver.FileResult, keep func(diag.Diagnostic) bool) *diag.Bag {
	bag := diag.NewBag(1)
	for _, r := range results {
		bag.Merge(r.Bag)
	}
	if keep != nil {
		bag.Filter(keep)
	}
	bag.Sort()
	return bag
}
