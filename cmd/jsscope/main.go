package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jsscope/internal/version"
)

// errFindings is returned by commands whose output reports errors; main turns
// it into exit status 1 without printing anything else.
var errFindings = errors.New("errors reported")

// newRootCmd assembles the CLI. Each call returns an independent tree so tests
// can run commands side by side.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jsscope",
		Short:         "JavaScript scope and binding analyzer",
		Long:          `jsscope resolves every identifier of JavaScript programs to the variable it declares or references and reports the scope tree`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			traceCleanup = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			runTraceCleanup()
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newReplCmd())
	rootCmd.AddCommand(newVersionCmd())

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics kept per file")
	flags.Bool("module", false, "analyze inputs as modules")
	flags.Int("jobs", 0, "max parallel workers (0=auto)")
	flags.Bool("no-cache", false, "do not read or write the result cache")
	flags.Bool("validate", false, "check structural invariants of every scope tree")
	flags.String("ui", "auto", "progress view for multi-file runs (auto|on|off)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0=off)")
	return rootCmd
}

// main runs the CLI and exits with status 1 on any error.
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.Execute()
	if err != nil {
		runTraceCleanup()
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	}
	return err
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
