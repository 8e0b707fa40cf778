package scope

import (
	"github.com/dop251/goja/ast"
)

// GlobalScope is the root of an analyzed program. It embeds the Global scope
// and owns the arenas every other scope and variable of the program lives in.
type GlobalScope struct {
	*Scope

	program *ast.Program
	module  bool
	scopes  *Scopes
	vars    *Variables
}

// Program returns the analyzed AST root.
func (g *GlobalScope) Program() *ast.Program { return g.program }

// IsModule reports whether the program was analyzed as a module.
func (g *GlobalScope) IsModule() bool { return g.module }

// ScopeByID resolves a scope handle.
func (g *GlobalScope) ScopeByID(id ScopeID) *Scope { return g.scopes.Get(id) }

// VariableByID resolves a variable handle.
func (g *GlobalScope) VariableByID(id VariableID) *Variable { return g.vars.Get(id) }

// ScopeCount reports the number of scopes including the global one.
func (g *GlobalScope) ScopeCount() int { return g.scopes.Len() }

// VariableCount reports the number of variables across all scopes.
func (g *GlobalScope) VariableCount() int { return g.vars.Len() }

// Walk visits every scope in pre-order, parents before children, children in
// source order. Returning false from fn skips the scope's subtree.
func (g *GlobalScope) Walk(fn func(*Scope) bool) {
	var visit func(id ScopeID)
	visit = func(id ScopeID) {
		s := g.scopes.Get(id)
		if s == nil || !fn(s) {
			return
		}
		for _, child := range s.children {
			visit(child)
		}
	}
	visit(g.ID)
}

// Scopes returns every scope in pre-order.
func (g *GlobalScope) Scopes() []*Scope {
	out := make([]*Scope, 0, g.scopes.Len())
	g.Walk(func(s *Scope) bool {
		out = append(out, s)
		return true
	})
	return out
}

// Chain returns the scopes from id up to the global scope, innermost first.
func (g *GlobalScope) Chain(id ScopeID) []*Scope {
	var out []*Scope
	for s := g.scopes.Get(id); s != nil; s = g.scopes.Get(s.Parent) {
		out = append(out, s)
	}
	return out
}
