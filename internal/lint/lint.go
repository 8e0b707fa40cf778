// Package lint reports suspicious binding patterns found in a scope tree.
package lint

import (
	"fmt"
	"slices"

	"github.com/dop251/goja/ast"

	"jsscope/internal/diag"
	"jsscope/internal/scope"
	"jsscope/internal/source"
)

// SpanFunc maps an AST node to its location in the source file.
type SpanFunc func(ast.Node) source.Span

// Config selects rules and extends the set of known host globals.
type Config struct {
	Globals []string
	Disable []diag.Code
	Unused  bool
}

// DefaultConfig enables every rule.
func DefaultConfig() Config {
	return Config{Unused: true}
}

type linter struct {
	global *scope.GlobalScope
	lookup *scope.Lookup
	span   SpanFunc
	cfg    Config
	known  map[string]struct{}
	r      diag.Reporter
}

// Run checks global and reports findings to r in scope pre-order.
func Run(global *scope.GlobalScope, span SpanFunc, cfg Config, r diag.Reporter) {
	if global == nil || r == nil {
		return
	}
	l := &linter{
		global: global,
		lookup: scope.NewLookup(global),
		span:   span,
		cfg:    cfg,
		known:  knownGlobals(cfg.Globals),
		r:      r,
	}
	l.globals()
	global.Walk(func(s *scope.Scope) bool {
		l.scope(s)
		return true
	})
}

func (l *linter) enabled(code diag.Code) bool {
	if code == diag.LntUnusedBinding && !l.cfg.Unused {
		return false
	}
	return !slices.Contains(l.cfg.Disable, code)
}

func (l *linter) at(node ast.Node) source.Span {
	if l.span == nil || node == nil {
		return source.Span{}
	}
	return l.span(node)
}

// globals checks free variables of the global scope.
func (l *linter) globals() {
	for _, v := range l.global.Variables() {
		if !v.IsFree() || len(v.References) == 0 {
			continue
		}
		if w := firstWrite(v); w != nil {
			if l.enabled(diag.LntImplicitGlobal) {
				diag.ReportWarning(l.r, diag.LntImplicitGlobal, l.at(w.Node),
					fmt.Sprintf("assignment to undeclared '%s' creates an implicit global", v.Name)).Emit()
			}
			continue
		}
		if _, ok := l.known[v.Name]; ok || !l.enabled(diag.LntUndeclaredGlobal) {
			continue
		}
		b := diag.ReportInfo(l.r, diag.LntUndeclaredGlobal, l.at(v.References[0].Node),
			fmt.Sprintf("'%s' is not declared in this program", v.Name))
		if n := len(v.References); n > 1 {
			b.WithNote(l.at(v.References[n-1].Node), fmt.Sprintf("read %d times", n))
		}
		b.Emit()
	}
}

func (l *linter) scope(s *scope.Scope) {
	switch {
	case s.Kind == scope.KindWith:
		if l.enabled(diag.LntWithStatement) {
			b := diag.ReportWarning(l.r, diag.LntWithStatement, keyword(l.at(s.Node), len("with")),
				"with statement makes name resolution dynamic")
			for _, entry := range s.Through() {
				b.WithNote(l.at(entry.References[0].Node), fmt.Sprintf("'%s' may resolve to a property of the object", entry.Name))
			}
			b.Emit()
		}
	case s.IsDynamic() && s.Kind != scope.KindGlobal:
		if l.enabled(diag.LntDynamicEval) {
			diag.ReportWarning(l.r, diag.LntDynamicEval, keyword(l.at(s.Node), 1),
				fmt.Sprintf("direct eval makes this %s scope dynamic", s.Kind)).Emit()
		}
	}
	if s.Kind != scope.KindGlobal {
		l.unused(s)
	}
	l.argumentsShadowed(s)
	l.confusable(s)
}

func (l *linter) unused(s *scope.Scope) {
	if !l.enabled(diag.LntUnusedBinding) {
		return
	}
	for _, v := range s.Variables() {
		if v.IsFree() || v.Name == "arguments" || isRead(v) || !reportable(v) {
			continue
		}
		if l.companionRead(v) {
			continue
		}
		d := v.Declarations[0]
		diag.ReportWarning(l.r, diag.LntUnusedBinding, l.at(d.Node),
			fmt.Sprintf("%s '%s' is never read", declNoun(d.Kind), v.Name)).Emit()
	}
}

// companionRead reports whether a block-level function is used through its
// Annex B companion binding.
func (l *linter) companionRead(v *scope.Variable) bool {
	for _, d := range v.Declarations {
		if c, ok := l.lookup.Companion(d.Node); ok && isRead(c) {
			return true
		}
	}
	return false
}

func (l *linter) argumentsShadowed(s *scope.Scope) {
	if s.Kind != scope.KindFunction && s.Kind != scope.KindParameters {
		return
	}
	v, ok := s.LookupVariable("arguments")
	if !ok || v.IsFree() || !l.enabled(diag.LntArgumentsShadowed) {
		return
	}
	diag.ReportInfo(l.r, diag.LntArgumentsShadowed, l.at(v.Declarations[0].Node),
		fmt.Sprintf("%s 'arguments' hides the implicit arguments object", declNoun(v.Declarations[0].Kind))).Emit()
}

func firstWrite(v *scope.Variable) *scope.Reference {
	for _, r := range v.References {
		if r.Access.IsWrite() {
			return r
		}
	}
	return nil
}

func isRead(v *scope.Variable) bool {
	for _, r := range v.References {
		if r.Access.IsRead() {
			return true
		}
	}
	return false
}

// reportable excludes parameters and self-reference names, which are often
// unused on purpose.
func reportable(v *scope.Variable) bool {
	for _, d := range v.Declarations {
		switch d.Kind {
		case scope.DeclParam, scope.DeclFunctionName, scope.DeclClassName, scope.DeclFunctionB33:
			return false
		}
	}
	return true
}

func declNoun(k scope.DeclKind) string {
	switch k {
	case scope.DeclVar:
		return "variable"
	case scope.DeclLet, scope.DeclConst:
		return "binding"
	case scope.DeclParam:
		return "parameter"
	case scope.DeclFunctionDeclaration:
		return "function"
	case scope.DeclClassDeclaration:
		return "class"
	case scope.DeclCatchParam:
		return "catch parameter"
	default:
		return "name"
	}
}

// keyword narrows a statement span to its leading n bytes.
func keyword(sp source.Span, n int) source.Span {
	if end := sp.Start + uint32(n); end < sp.End {
		sp.End = end
	}
	return sp
}
