// Package diagfmt renders diagnostic bags for terminals and machines.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jsscope/internal/diag"
	"jsscope/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, mark *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgHiBlack),
		mark:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.mark} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes diagnostics in bag order (call bag.Sort first) as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by the source line with a ^~~~ marker under the primary span and,
// when enabled, the notes in the same layout.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		if f == nil {
			fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(d.Severity), d.Code.ID(), d.Message)
			continue
		}
		pos := f.Position(d.Primary.Start)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprintf("%s:%d:%d", f.FormatPath(opts.PathMode, fs.BaseDir()), pos.Line, pos.Col),
			p.severity(d.Severity).Sprint(d.Severity),
			p.severity(d.Severity).Sprint(d.Code.ID()),
			d.Message)
		writeSnippet(w, p, f, d.Primary, int(opts.Context))
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			if nf == nil {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
				continue
			}
			npos := nf.Position(n.Span.Start)
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"),
				p.path.Sprintf("%s:%d:%d", nf.FormatPath(opts.PathMode, fs.BaseDir()), npos.Line, npos.Col), n.Msg)
			writeSnippet(w, p, nf, n.Span, 0)
		}
	}
}

// writeSnippet prints up to context preceding lines plus the primary line and
// an underline whose columns account for wide runes and tabs.
func writeSnippet(w io.Writer, p palette, f *source.File, sp source.Span, context int) {
	pos := f.Position(sp.Start)
	first := int(pos.Line) - max(context, 0)
	if first < 1 {
		first = 1
	}
	gutterWidth := len(fmt.Sprint(pos.Line))
	for line := first; line <= int(pos.Line); line++ {
		text := expandTabs(f.Line(uint32(line)))
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, line), text)
	}

	lineText := f.Line(pos.Line)
	startCol := int(pos.Col) - 1
	startCol = min(max(startCol, 0), len(lineText))
	endCol := startCol + int(sp.Len())
	endCol = min(endCol, len(lineText))

	pad := runewidth.StringWidth(expandTabs(lineText[:startCol]))
	width := max(runewidth.StringWidth(expandTabs(lineText[startCol:endCol])), 1)
	marker := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprint(strings.Repeat(" ", gutterWidth)+" |"), strings.Repeat(" ", pad), p.mark.Sprint(marker))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
