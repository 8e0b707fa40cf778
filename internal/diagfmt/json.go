package diagfmt

import (
	"encoding/json"
	"io"

	"jsscope/internal/diag"
	"jsscope/internal/source"
)

// Position is a 1-based line and column.
type Position struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// Location is a byte range of a file, with positions on request.
type Location struct {
	File  string    `json:"file"`
	Start uint32    `json:"start"`
	End   uint32    `json:"end"`
	From  *Position `json:"from,omitempty"`
	To    *Position `json:"to,omitempty"`
}

type Note struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

type Entry struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	Notes    []Note   `json:"notes,omitempty"`
}

// Summary counts the reported entries per severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Report is the JSON document written by JSON.
type Report struct {
	Diagnostics []Entry `json:"diagnostics"`
	Summary     Summary `json:"summary"`
}

type locator struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (l locator) locate(sp source.Span) Location {
	loc := Location{Start: sp.Start, End: sp.End}
	f := l.fs.Get(sp.File)
	if f == nil {
		return loc
	}
	loc.File = f.FormatPath(l.opts.PathMode, l.fs.BaseDir())
	if l.opts.IncludePositions {
		from, to := l.fs.Resolve(sp)
		loc.From = &Position{Line: from.Line, Col: from.Col}
		loc.To = &Position{Line: to.Line, Col: to.Col}
	}
	return loc
}

// BuildReport converts bag, keeping at most opts.Max entries when set.
func BuildReport(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Report {
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	l := locator{fs: fs, opts: opts}
	rep := Report{Diagnostics: make([]Entry, 0, len(items))}
	for _, d := range items {
		e := Entry{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: l.locate(d.Primary),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				e.Notes = append(e.Notes, Note{Message: n.Msg, Location: l.locate(n.Span)})
			}
		}
		switch d.Severity {
		case diag.SevError:
			rep.Summary.Errors++
		case diag.SevWarning:
			rep.Summary.Warnings++
		default:
			rep.Summary.Infos++
		}
		rep.Diagnostics = append(rep.Diagnostics, e)
	}
	return rep
}

// JSON writes bag as an indented Report.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, fs, opts))
}
