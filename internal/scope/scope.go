package scope

import (
	"slices"

	"github.com/dop251/goja/ast"
)

// Path is the structural location of a node from the program root,
// e.g. "Body[0].Function.Body.List[1].Expression.Callee".
type Path string

// Declaration records one binding site of a variable.
type Declaration struct {
	Node *ast.Identifier
	Kind DeclKind
	Path Path
}

// Reference records one use of a variable.
type Reference struct {
	Node   *ast.Identifier
	Access Accessibility
	Path   Path
}

// Name returns the referenced identifier.
func (r *Reference) Name() string { return r.Node.Name.String() }

// Variable is a named binding owned by exactly one scope.
type Variable struct {
	ID           VariableID
	Name         string
	Scope        ScopeID
	Declarations []*Declaration
	References   []*Reference
}

// IsFree reports whether the variable has no declaration, i.e. an implicit global.
func (v *Variable) IsFree() bool { return len(v.Declarations) == 0 }

// ThroughEntry groups references of one name that passed through a dynamic scope.
type ThroughEntry struct {
	Name       string
	References []*Reference
}

// Scope models one lexical environment of the analyzed program.
// Parent is an arena id; the tree owns scopes through its children only.
// Everything the analyzer fills in after creation is read through methods.
type Scope struct {
	ID     ScopeID
	Kind   Kind
	Node   ast.Node
	Parent ScopeID

	dynamic      bool
	strict       bool
	children     []ScopeID
	varIDs       []VariableID
	names        map[string]VariableID
	through      []ThroughEntry
	throughIndex map[string]int
	global       *GlobalScope
}

// IsDynamic reports whether names may be bound at runtime: the global scope,
// with scopes and scopes tainted by direct eval.
func (s *Scope) IsDynamic() bool { return s.dynamic }

// IsStrict reports whether code in the scope runs in strict mode.
func (s *Scope) IsStrict() bool { return s.strict }

// ChildIDs returns the handles of nested scopes in source order.
func (s *Scope) ChildIDs() []ScopeID { return slices.Clone(s.children) }

// Variables returns the variables owned by the scope in declaration order.
func (s *Scope) Variables() []*Variable {
	out := make([]*Variable, 0, len(s.varIDs))
	for _, id := range s.varIDs {
		out = append(out, s.global.vars.Get(id))
	}
	return out
}

// LookupVariable consults the local table only; enclosing scopes are not searched.
func (s *Scope) LookupVariable(name string) (*Variable, bool) {
	id, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return s.global.vars.Get(id), true
}

// ChildScopes returns nested scopes in source order.
func (s *Scope) ChildScopes() []*Scope {
	out := make([]*Scope, 0, len(s.children))
	for _, id := range s.children {
		out = append(out, s.global.scopes.Get(id))
	}
	return out
}

// ParentScope resolves the enclosing scope, if any.
func (s *Scope) ParentScope() (*Scope, bool) {
	if !s.Parent.IsValid() {
		return nil, false
	}
	return s.global.scopes.Get(s.Parent), true
}

// Through returns references that resolved statically while crossing this
// dynamic scope, grouped by name in order of first discovery.
func (s *Scope) Through() []ThroughEntry {
	out := make([]ThroughEntry, len(s.through))
	copy(out, s.through)
	return out
}

// ThroughFor returns the through references recorded for one name.
func (s *Scope) ThroughFor(name string) []*Reference {
	idx, ok := s.throughIndex[name]
	if !ok {
		return nil
	}
	return s.through[idx].References
}

func (s *Scope) addThrough(ref *Reference) {
	name := ref.Name()
	if s.throughIndex == nil {
		s.throughIndex = make(map[string]int)
	}
	idx, ok := s.throughIndex[name]
	if !ok {
		idx = len(s.through)
		s.through = append(s.through, ThroughEntry{Name: name})
		s.throughIndex[name] = idx
	}
	s.through[idx].References = append(s.through[idx].References, ref)
}
