// Package scopefmt renders analyzed scope trees for people and programs.
package scopefmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jsscope/internal/scope"
	"jsscope/internal/source"
)

// LocateFunc renders the position of a node, e.g. "3:14".
type LocateFunc func(ast.Node) string

// SpanLocator builds a LocateFunc printing line:col of the spans computed by
// span inside fs.
func SpanLocator(fs *source.FileSet, span func(ast.Node) source.Span) LocateFunc {
	return func(n ast.Node) string {
		sp := span(n)
		f := fs.Get(sp.File)
		if f == nil {
			return "?"
		}
		pos := f.Position(sp.Start)
		return fmt.Sprintf("%d:%d", pos.Line, pos.Col)
	}
}

// TreeOpts configures the pretty tree.
type TreeOpts struct {
	Color  bool
	Locate LocateFunc
	// Through lists the through references of dynamic scopes.
	Through bool
}

type styles struct {
	kind, name, flag, decl, through, dim *color.Color
}

func newStyles(enabled bool) styles {
	s := styles{
		kind:    color.New(color.FgCyan, color.Bold),
		name:    color.New(color.FgYellow),
		flag:    color.New(color.FgMagenta),
		decl:    color.New(color.FgGreen),
		through: color.New(color.FgRed),
		dim:     color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{s.kind, s.name, s.flag, s.decl, s.through, s.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

type treePrinter struct {
	w    io.Writer
	opts TreeOpts
	st   styles
}

// Tree writes global as an indented tree: one header line per scope followed
// by its variables in declaration order, name column aligned per scope.
func Tree(w io.Writer, global *scope.GlobalScope, opts TreeOpts) {
	p := &treePrinter{w: w, opts: opts, st: newStyles(opts.Color)}
	p.scope(global.Scope, "", "")
}

func (p *treePrinter) scope(s *scope.Scope, lead, childLead string) {
	fmt.Fprintf(p.w, "%s%s%s\n", lead, p.st.kind.Sprint(s.Kind), p.header(s))

	vars := s.Variables()
	children := s.ChildScopes()
	nameWidth := 0
	for _, v := range vars {
		nameWidth = max(nameWidth, runewidth.StringWidth(v.Name))
	}
	for i, v := range vars {
		branch := "│ "
		if len(children) == 0 && i == len(vars)-1 && !p.hasThrough(s) {
			branch = "  "
		}
		fmt.Fprintf(p.w, "%s%s%s  %s\n", childLead, p.st.dim.Sprint(branch),
			p.st.name.Sprint(runewidth.FillRight(v.Name, nameWidth)), p.summary(v))
	}
	if p.hasThrough(s) {
		for _, entry := range s.Through() {
			fmt.Fprintf(p.w, "%s%s%s %s ×%d\n", childLead, p.st.dim.Sprint("│ "),
				p.st.through.Sprint("through"), entry.Name, len(entry.References))
		}
	}
	for i, child := range children {
		if i == len(children)-1 {
			p.scope(child, childLead+p.st.dim.Sprint("└─ "), childLead+"   ")
		} else {
			p.scope(child, childLead+p.st.dim.Sprint("├─ "), childLead+p.st.dim.Sprint("│  "))
		}
	}
}

func (p *treePrinter) hasThrough(s *scope.Scope) bool {
	return p.opts.Through && len(s.Through()) > 0
}

func (p *treePrinter) header(s *scope.Scope) string {
	var flags []string
	if s.IsDynamic() {
		flags = append(flags, "dynamic")
	}
	if s.IsStrict() {
		flags = append(flags, "strict")
	}
	var b strings.Builder
	if len(flags) > 0 {
		b.WriteString(" ")
		b.WriteString(p.st.flag.Sprintf("[%s]", strings.Join(flags, ", ")))
	}
	if p.opts.Locate != nil && s.Node != nil {
		b.WriteString(" ")
		b.WriteString(p.st.dim.Sprint("@" + p.opts.Locate(s.Node)))
	}
	return b.String()
}

// summary renders "Var,FunctionB33 r2 w1" or "free r3".
func (p *treePrinter) summary(v *scope.Variable) string {
	kinds := "free"
	if !v.IsFree() {
		names := make([]string, 0, len(v.Declarations))
		for _, d := range v.Declarations {
			names = append(names, d.Kind.String())
		}
		kinds = strings.Join(names, ",")
	}
	reads, writes := countAccess(v)
	return fmt.Sprintf("%s %s", p.st.decl.Sprint(kinds), p.st.dim.Sprintf("r%d w%d", reads, writes))
}

func countAccess(v *scope.Variable) (reads, writes int) {
	for _, r := range v.References {
		if r.Access.IsRead() {
			reads++
		}
		if r.Access.IsWrite() {
			writes++
		}
	}
	return reads, writes
}
