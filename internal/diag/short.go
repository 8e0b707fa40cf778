package diag

import (
	"fmt"
	"sort"
	"strings"

	"jsscope/internal/source"
)

type shortDiagnostic struct {
	Path     string
	Line     uint32
	Column   uint32
	Severity Severity
	Code     string
	Message  string
}

// FormatShort renders diagnostics one per line as
// "path:line:col: SEVERITY CODE: message", sorted by position. Notes follow
// their diagnostic indented by two spaces when includeNotes is set.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	type entry struct {
		head  shortDiagnostic
		notes []shortDiagnostic
	}
	entries := make([]entry, 0, len(diags))
	for _, d := range diags {
		e := entry{head: shortFor(fs, d.Primary, d.Severity, d.Code.ID(), d.Message)}
		if includeNotes {
			for _, n := range d.Notes {
				e.notes = append(e.notes, shortFor(fs, n.Span, SevInfo, "note", n.Msg))
			}
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].head, entries[j].head
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		return di.Code < dj.Code
	})

	var b strings.Builder
	for _, e := range entries {
		writeShort(&b, "", e.head)
		for _, n := range e.notes {
			writeShort(&b, "  ", n)
		}
	}
	return b.String()
}

func shortFor(fs *source.FileSet, span source.Span, sev Severity, code, msg string) shortDiagnostic {
	out := shortDiagnostic{Severity: sev, Code: code, Message: msg}
	if f := fs.Get(span.File); f != nil {
		pos := f.Position(span.Start)
		out.Path, out.Line, out.Column = f.Path, pos.Line, pos.Col
	}
	return out
}

func writeShort(b *strings.Builder, indent string, d shortDiagnostic) {
	if d.Code == "note" {
		fmt.Fprintf(b, "%s%s:%d:%d: note: %s\n", indent, d.Path, d.Line, d.Column, d.Message)
		return
	}
	fmt.Fprintf(b, "%s%s:%d:%d: %s %s: %s\n", indent, d.Path, d.Line, d.Column, d.Severity, d.Code, d.Message)
}
