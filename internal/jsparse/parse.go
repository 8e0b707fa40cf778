// Package jsparse turns source files into goja ASTs ready for scope analysis.
package jsparse

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"jsscope/internal/diag"
	"jsscope/internal/source"
)

// Script is one parsed program of a file. Plain script files yield one
// Script; HTML pages yield one per inline <script> element.
type Script struct {
	Program *ast.Program
	File    source.FileID
	Offset  uint32 // byte offset of the program text inside its file
	Module  bool
	Text    string
}

// Options configures parsing.
type Options struct {
	// Module marks every script as a module. HTML scripts with type="module"
	// are modules regardless.
	Module   bool
	Reporter diag.Reporter
}

// ParseSource parses JavaScript text without any file bookkeeping.
func ParseSource(name, text string) (*ast.Program, error) {
	return parser.ParseFile(nil, name, text, parser.IgnoreRegExpErrors, parser.WithDisableSourceMaps)
}

// ParseFile parses every program contained in f. Syntax errors are reported
// and the offending program is skipped; the remaining ones are returned.
func ParseFile(f *source.File, opts Options) []Script {
	var fragments []Fragment
	if f.Kind == source.KindHTML {
		var err error
		fragments, err = ExtractScripts(f.Content)
		if err != nil {
			diag.ReportError(opts.Reporter, diag.ParHTMLError, source.Span{File: f.ID}, err.Error()).Emit()
		}
	} else {
		fragments = []Fragment{{Text: string(f.Content)}}
	}

	scripts := make([]Script, 0, len(fragments))
	for _, frag := range fragments {
		prog, err := ParseSource(f.Path, frag.Text)
		if err != nil {
			reportSyntax(opts.Reporter, f.ID, frag, err)
			continue
		}
		scripts = append(scripts, Script{
			Program: prog,
			File:    f.ID,
			Offset:  frag.Offset,
			Module:  opts.Module || frag.Module,
			Text:    frag.Text,
		})
	}
	return scripts
}

func reportSyntax(r diag.Reporter, file source.FileID, frag Fragment, err error) {
	var list parser.ErrorList
	if !errors.As(err, &list) {
		diag.ReportError(r, diag.ParSyntaxError, source.Span{File: file, Start: frag.Offset, End: frag.Offset}, err.Error()).Emit()
		return
	}
	for _, e := range list {
		off := offsetOf(frag.Text, e.Position.Line, e.Position.Column)
		start := frag.Offset + off
		end := start
		if int(off) < len(frag.Text) {
			end++
		}
		diag.ReportError(r, diag.ParSyntaxError, source.Span{File: file, Start: start, End: end}, e.Message).Emit()
	}
}

// offsetOf converts a 1-based line and column of text into a byte offset.
func offsetOf(text string, line, col int) uint32 {
	off := 0
	for l := 1; l < line && off < len(text); off++ {
		if text[off] == '\n' {
			l++
		}
	}
	if col > 1 {
		off += col - 1
	}
	off = min(off, len(text))
	value, err := safecast.Conv[uint32](off)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return value
}

// Span returns the location of node inside the file that holds s.
func (s Script) Span(node ast.Node) source.Span {
	start, err := safecast.Conv[uint32](int(node.Idx0()) - 1)
	if err != nil {
		return source.Span{File: s.File, Start: s.Offset, End: s.Offset}
	}
	end, err := safecast.Conv[uint32](int(node.Idx1()) - 1)
	if err != nil || end < start {
		end = start
	}
	return source.Span{File: s.File, Start: start, End: end}.Shift(s.Offset)
}
