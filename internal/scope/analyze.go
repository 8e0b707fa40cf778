package scope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"
)

// Options configures a single analysis run.
type Options struct {
	// Module analyzes the program with module semantics: all code is strict
	// and block functions get no Annex B companion binding.
	Module bool
}

// Analyze builds the scope tree of a script.
func Analyze(prog *ast.Program) (*GlobalScope, error) {
	return AnalyzeWith(prog, Options{})
}

// AnalyzeModule builds the scope tree of a module.
func AnalyzeModule(prog *ast.Program) (*GlobalScope, error) {
	return AnalyzeWith(prog, Options{Module: true})
}

// MustAnalyze is like Analyze but panics on unsupported input.
func MustAnalyze(prog *ast.Program) *GlobalScope {
	global, err := Analyze(prog)
	if err != nil {
		panic(err)
	}
	return global
}

// AnalyzeWith walks prog once and resolves every identifier occurrence.
// The result is immutable. An AST node the analyzer does not recognize aborts
// the run with ErrUnsupportedNode and no partial tree.
func AnalyzeWith(prog *ast.Program, opts Options) (global *GlobalScope, err error) {
	if prog == nil {
		return nil, fmt.Errorf("%w: nil program", ErrInvalidArgument)
	}
	defer func() {
		if r := recover(); r != nil {
			un, ok := r.(*unsupportedNode)
			if !ok {
				panic(r)
			}
			global, err = nil, un
		}
	}()
	a := newAnalyzer(opts)
	return a.run(prog), nil
}

type pendingRef struct {
	from ScopeID
	ref  *Reference
}

// b33Candidate is a block-level function declaration that may also bind in
// its var scope once that scope is complete.
type b33Candidate struct {
	id       *ast.Identifier
	block    ScopeID
	varScope ScopeID
	path     Path
}

type analyzer struct {
	opts    Options
	scopes  *Scopes
	vars    *Variables
	stack   []ScopeID
	path    []string
	pending []pendingRef
	b33     []b33Candidate
}

func newAnalyzer(opts Options) *analyzer {
	return &analyzer{
		opts:   opts,
		scopes: NewScopes(0),
		vars:   NewVariables(0),
		stack:  make([]ScopeID, 0, 8),
		path:   make([]string, 0, 16),
	}
}

func (a *analyzer) run(prog *ast.Program) *GlobalScope {
	root := a.enter(KindGlobal, prog)
	rootScope := a.scopes.Get(root)
	rootScope.dynamic = true
	rootScope.strict = a.opts.Module || hasUseStrict(prog.Body)

	a.statements(prog.Body, "Body")
	a.finishVarScope(root)
	a.leave(root)

	for _, p := range a.pending {
		a.resolve(root, p)
	}

	global := &GlobalScope{
		program: prog,
		module:  a.opts.Module,
		scopes:  a.scopes,
		vars:    a.vars,
	}
	for i := range a.scopes.data {
		a.scopes.data[i].global = global
	}
	global.Scope = a.scopes.Get(root)
	return global
}

// enter creates a child of the current scope and makes it current.
// Strictness is inherited from the parent.
func (a *analyzer) enter(kind Kind, node ast.Node) ScopeID {
	parent := a.currentID()
	id := a.scopes.New(kind, parent, node)
	if p := a.scopes.Get(parent); p != nil {
		a.scopes.Get(id).strict = p.strict
	}
	a.stack = append(a.stack, id)
	return id
}

// leave pops the current scope, which must be expected.
func (a *analyzer) leave(expected ScopeID) {
	if len(a.stack) == 0 {
		panic(fmt.Errorf("scope stack underflow leaving %d", expected))
	}
	top := a.stack[len(a.stack)-1]
	if top != expected {
		panic(fmt.Errorf("scope mismatch: leaving %d, current %d", expected, top))
	}
	a.stack = a.stack[:len(a.stack)-1]
}

func (a *analyzer) currentID() ScopeID {
	if len(a.stack) == 0 {
		return NoScopeID
	}
	return a.stack[len(a.stack)-1]
}

func (a *analyzer) current() *Scope { return a.scopes.Get(a.currentID()) }

// varScope returns the nearest open scope where var declarations bind.
func (a *analyzer) varScope() ScopeID {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if a.scopes.Get(a.stack[i]).Kind.IsVarScope() {
			return a.stack[i]
		}
	}
	return NoScopeID
}

func (a *analyzer) push(seg string) { a.path = append(a.path, seg) }

func (a *analyzer) pop() { a.path = a.path[:len(a.path)-1] }

func (a *analyzer) currentPath() Path { return Path(strings.Join(a.path, ".")) }

func index(field string, i int) string { return field + "[" + strconv.Itoa(i) + "]" }

func (a *analyzer) unsupported(node any) {
	if n, ok := node.(ast.Node); ok {
		panic(&unsupportedNode{node: n, path: a.currentPath()})
	}
	panic(&unsupportedNode{path: a.currentPath()})
}

// declare records a binding of id in scope target, creating the variable on
// first use of the name.
func (a *analyzer) declare(target ScopeID, id *ast.Identifier, kind DeclKind) {
	a.declareAt(target, id, kind, a.currentPath())
}

func (a *analyzer) declareAt(target ScopeID, id *ast.Identifier, kind DeclKind, path Path) {
	v := a.vars.Get(a.variable(target, id.Name.String()))
	v.Declarations = append(v.Declarations, &Declaration{Node: id, Kind: kind, Path: path})
}

func (a *analyzer) variable(target ScopeID, name string) VariableID {
	s := a.scopes.Get(target)
	if vid, ok := s.names[name]; ok {
		return vid
	}
	vid := a.vars.New(name, target)
	s.names[name] = vid
	s.varIDs = append(s.varIDs, vid)
	return vid
}

// reference queues an identifier occurrence for resolution from the current scope.
func (a *analyzer) reference(id *ast.Identifier, access Accessibility) {
	a.pending = append(a.pending, pendingRef{
		from: a.currentID(),
		ref:  &Reference{Node: id, Access: access, Path: a.currentPath()},
	})
}

// resolve attaches p to the innermost variable of the same name. A reference
// that reaches a non-global variable after crossing dynamic scopes is also
// recorded in the through table of each crossed scope. Anything that ends up
// in the global scope resolves to a global variable, declared or free.
func (a *analyzer) resolve(root ScopeID, p pendingRef) {
	name := p.ref.Name()
	var crossed []ScopeID
	for id := p.from; id.IsValid(); {
		s := a.scopes.Get(id)
		if vid, ok := s.names[name]; ok {
			v := a.vars.Get(vid)
			v.References = append(v.References, p.ref)
			if s.Kind != KindGlobal {
				for _, c := range crossed {
					a.scopes.Get(c).addThrough(p.ref)
				}
			}
			return
		}
		if s.dynamic && s.Kind != KindGlobal {
			crossed = append(crossed, id)
		}
		id = s.Parent
	}
	v := a.vars.Get(a.variable(root, name))
	v.References = append(v.References, p.ref)
}

// finishVarScope applies pending Annex B companions whose var scope is id.
// It runs once every declaration of the var scope is known.
func (a *analyzer) finishVarScope(id ScopeID) {
	kept := a.b33[:0]
	var ready []b33Candidate
	for _, c := range a.b33 {
		if c.varScope == id {
			ready = append(ready, c)
		} else {
			kept = append(kept, c)
		}
	}
	a.b33 = kept
	for _, c := range ready {
		if a.b33Blocked(c) {
			continue
		}
		a.declareAt(c.varScope, c.id, DeclFunctionB33, c.path)
	}
}

// b33Blocked reports whether hoisting c would clash with a lexical binding or
// another function declaration between the function's block and its var
// scope (inclusive), or with a parameter.
func (a *analyzer) b33Blocked(c b33Candidate) bool {
	name := c.id.Name.String()
	block := a.scopes.Get(c.block)
	for id := block.Parent; id.IsValid(); {
		s := a.scopes.Get(id)
		if vid, ok := s.names[name]; ok {
			for _, d := range a.vars.Get(vid).Declarations {
				if d.Kind.IsLexical() || d.Kind == DeclParam {
					return true
				}
				if d.Kind == DeclFunctionDeclaration && d.Node != c.id {
					return true
				}
			}
		}
		if id == c.varScope {
			if parent := a.scopes.Get(s.Parent); parent != nil && parent.Kind == KindParameters {
				if _, ok := parent.names[name]; ok {
					return true
				}
			}
			return false
		}
		id = s.Parent
	}
	return false
}

// synthesizeArguments adds the implicit arguments variable to a non-arrow
// function unless a parameter or body declaration already owns the name.
func (a *analyzer) synthesizeArguments(fn, params ScopeID) {
	const name = "arguments"
	if p := a.scopes.Get(params); p != nil {
		if _, ok := p.names[name]; ok {
			return
		}
	}
	if _, ok := a.scopes.Get(fn).names[name]; ok {
		return
	}
	a.variable(fn, name)
}

func hasUseStrict(list []ast.Statement) bool {
	for _, st := range list {
		es, ok := st.(*ast.ExpressionStatement)
		if !ok {
			return false
		}
		lit, ok := es.Expression.(*ast.StringLiteral)
		if !ok {
			return false
		}
		if lit.Literal == `"use strict"` || lit.Literal == `'use strict'` {
			return true
		}
	}
	return false
}
