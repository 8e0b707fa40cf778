package main

import (
	"errors"
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/spf13/cobra"

	"jsscope/internal/driver"
	"jsscope/internal/scope"
	"jsscope/internal/scopefmt"
	"jsscope/internal/source"
)

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [flags] <file> --line L --col C",
		Short: "Show the variable an identifier declares or references",
		Long: `Lookup finds the identifier at the given 1-based line and column (column in bytes) and prints
the variable it declares or resolves to, its scope and every declaration and reference site.`,
		Args: cobra.ExactArgs(1),
		RunE: runLookup,
	}
	cmd.Flags().Uint32("line", 0, "1-based line")
	cmd.Flags().Uint32("col", 0, "1-based column in bytes")
	return cmd
}

func runLookup(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	line, err := cmd.Flags().GetUint32("line")
	if err != nil {
		return fmt.Errorf("failed to get line flag: %w", err)
	}
	col, err := cmd.Flags().GetUint32("col")
	if err != nil {
		return fmt.Errorf("failed to get col flag: %w", err)
	}
	if line == 0 || col == 0 {
		return errors.New("--line and --col are required")
	}

	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st.ui = uiModeOff
	fs, results, err := runPipeline(cmd, st, args, false)
	if err != nil {
		return err
	}
	if err := reportErrors(cmd, st, fs, results); err != nil {
		return err
	}
	r := results[0]
	f := fs.Get(r.FileID)
	off, ok := f.Offset(source.LineCol{Line: line, Col: col})
	if !ok {
		return fmt.Errorf("%s has no position %d:%d", r.Path, line, col)
	}

	s, id, ok := identifierAt(r.Scripts, off)
	if !ok {
		return fmt.Errorf("no identifier at %s:%d:%d", r.Path, line, col)
	}
	lookup := scope.NewLookup(s.Global)
	opts := scopefmt.TreeOpts{Color: st.color, Locate: scopefmt.SpanLocator(fs, s.Span)}
	out := cmd.OutOrStdout()

	if v, ok := lookup.FindVariableDeclaredBy(id); ok {
		fmt.Fprintf(out, "declaration of %s\n", id.Name)
		owner, _ := lookup.ScopeOf(v)
		scopefmt.Variable(out, v, owner, opts)
		if c, ok := lookup.Companion(id); ok && c != v {
			fmt.Fprintln(out, "annex B companion:")
			cOwner, _ := lookup.ScopeOf(c)
			scopefmt.Variable(out, c, cOwner, opts)
		}
		return nil
	}
	v, ok := lookup.FindVariableReferencedBy(id)
	if !ok {
		return fmt.Errorf("identifier %s at %d:%d is not resolved", id.Name, line, col)
	}
	fmt.Fprintf(out, "reference to %s\n", id.Name)
	owner, _ := lookup.ScopeOf(v)
	scopefmt.Variable(out, v, owner, opts)
	return nil
}

// identifierAt finds the script holding byte offset off and the identifier
// covering it.
func identifierAt(scripts []driver.ScriptResult, off uint32) (driver.ScriptResult, *ast.Identifier, bool) {
	for _, s := range scripts {
		if s.Global == nil || off < s.Offset {
			continue
		}
		if id, ok := scope.NewLookup(s.Global).IdentifierAt(file.Idx(off - s.Offset + 1)); ok {
			return s, id, true
		}
	}
	return driver.ScriptResult{}, nil, false
}
