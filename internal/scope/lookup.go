package scope

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
)

// Lookup is a read-only reverse index over a finished scope tree.
type Lookup struct {
	global     *GlobalScope
	declared   map[*ast.Identifier]*Variable
	companion  map[*ast.Identifier]*Variable
	classInner map[*ast.Identifier]*Variable
	referenced map[*ast.Identifier]*Variable
	scopes     map[ast.Node]*Scope
}

// NewLookup indexes every declaration, reference and scope anchor of global.
func NewLookup(global *GlobalScope) *Lookup {
	l := &Lookup{
		global:     global,
		declared:   make(map[*ast.Identifier]*Variable),
		companion:  make(map[*ast.Identifier]*Variable),
		classInner: make(map[*ast.Identifier]*Variable),
		referenced: make(map[*ast.Identifier]*Variable),
		scopes:     make(map[ast.Node]*Scope),
	}
	// pre-order: outer scopes first, so a shared anchor maps to the outer
	// scope and a shared class name maps to the enclosing binding
	global.Walk(func(s *Scope) bool {
		if _, ok := l.scopes[s.Node]; !ok {
			l.scopes[s.Node] = s
		}
		switch n := s.Node.(type) {
		case *ast.FunctionDeclaration:
			if _, ok := l.scopes[n.Function]; !ok {
				l.scopes[n.Function] = s
			}
		case *ast.ClassDeclaration:
			if _, ok := l.scopes[n.Class]; !ok {
				l.scopes[n.Class] = s
			}
		}
		for _, v := range s.Variables() {
			for _, d := range v.Declarations {
				switch {
				case d.Kind == DeclFunctionB33:
					l.companion[d.Node] = v
				case d.Kind == DeclClassName:
					l.classInner[d.Node] = v
					if _, ok := l.declared[d.Node]; !ok {
						l.declared[d.Node] = v
					}
				default:
					if _, ok := l.declared[d.Node]; !ok {
						l.declared[d.Node] = v
					}
				}
			}
			for _, r := range v.References {
				l.referenced[r.Node] = v
			}
		}
		return true
	})
	return l
}

// Global returns the indexed tree root.
func (l *Lookup) Global() *GlobalScope { return l.global }

// FindVariableDeclaredBy returns the variable declared by a binding
// identifier. For names bound twice by one node (class declarations, Annex B
// functions) the binding visible at the declaration site wins.
func (l *Lookup) FindVariableDeclaredBy(id *ast.Identifier) (*Variable, bool) {
	if v, ok := l.declared[id]; ok {
		return v, true
	}
	v, ok := l.companion[id]
	return v, ok
}

// Companion returns the Annex B var-scoped binding created for a block-level
// function name, if any.
func (l *Lookup) Companion(id *ast.Identifier) (*Variable, bool) {
	v, ok := l.companion[id]
	return v, ok
}

// FindVariableReferencedBy returns the variable an identifier occurrence
// resolved to. Every identifier expression of the program resolves.
func (l *Lookup) FindVariableReferencedBy(id *ast.Identifier) (*Variable, bool) {
	v, ok := l.referenced[id]
	return v, ok
}

// FindScopeFor returns the scope introduced by node. Named function
// expressions anchor two scopes; the outer FunctionName scope is returned.
func (l *Lookup) FindScopeFor(node ast.Node) (*Scope, bool) {
	s, ok := l.scopes[node]
	return s, ok
}

// FindVariablesForFuncDecl returns the variable bound by a function
// declaration and, when one was created, its Annex B companion.
func (l *Lookup) FindVariablesForFuncDecl(decl *ast.FunctionDeclaration) (*Variable, *Variable, error) {
	if decl == nil || decl.Function == nil || decl.Function.Name == nil {
		return nil, nil, fmt.Errorf("%w: function declaration without a bound name", ErrInvalidArgument)
	}
	name := decl.Function.Name
	v, ok := l.declared[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: function %q is not part of the analyzed program", ErrInvalidArgument, name.Name.String())
	}
	return v, l.companion[name], nil
}

// FindVariablesForClassDecl returns the outer binding of a class declaration
// and the inner self-reference binding of its class scope.
func (l *Lookup) FindVariablesForClassDecl(decl *ast.ClassDeclaration) (*Variable, *Variable, error) {
	if decl == nil || decl.Class == nil || decl.Class.Name == nil {
		return nil, nil, fmt.Errorf("%w: class declaration without a bound name", ErrInvalidArgument)
	}
	name := decl.Class.Name
	outer, ok := l.declared[name]
	inner, innerOK := l.classInner[name]
	if !ok || !innerOK || outer == inner {
		return nil, nil, fmt.Errorf("%w: class %q is not part of the analyzed program", ErrInvalidArgument, name.Name.String())
	}
	return outer, inner, nil
}

// IdentifierAt returns the indexed identifier whose source range covers idx,
// a 1-based offset into the program text as used by the parser.
func (l *Lookup) IdentifierAt(idx file.Idx) (*ast.Identifier, bool) {
	var best *ast.Identifier
	consider := func(id *ast.Identifier) {
		if id.Idx0() > idx || idx >= id.Idx1() {
			return
		}
		if best == nil || id.Idx0() > best.Idx0() {
			best = id
		}
	}
	for id := range l.declared {
		consider(id)
	}
	for id := range l.referenced {
		consider(id)
	}
	return best, best != nil
}

// IsGlobal reports whether v belongs to the global scope.
func (l *Lookup) IsGlobal(v *Variable) bool {
	return v != nil && v.Scope == l.global.ID
}

// ScopeOf returns the scope owning v.
func (l *Lookup) ScopeOf(v *Variable) (*Scope, bool) {
	if v == nil {
		return nil, false
	}
	s := l.global.ScopeByID(v.Scope)
	return s, s != nil
}
