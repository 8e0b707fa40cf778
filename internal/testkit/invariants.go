package testkit

import (
	"errors"
	"fmt"

	"jsscope/internal/scope"
)

// CheckLookupInvariants cross-checks a scope tree against its reverse index:
// 1) every reference maps back to the variable that holds it
// 2) every declaration maps to a variable of the same name
// 3) every scope anchor maps to that scope or to an enclosing scope on the same node
// 4) every variable is owned by the scope that lists it
func CheckLookupInvariants(global *scope.GlobalScope) error {
	if global == nil {
		return fmt.Errorf("nil global scope")
	}
	lookup := scope.NewLookup(global)
	var errs []error

	global.Walk(func(s *scope.Scope) bool {
		found, ok := lookup.FindScopeFor(s.Node)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("scope %d (%s): anchor not indexed", s.ID, s.Kind))
		case found != s && !encloses(found, s):
			errs = append(errs, fmt.Errorf("scope %d (%s): anchor maps to unrelated scope %d", s.ID, s.Kind, found.ID))
		}
		for _, v := range s.Variables() {
			if v.Scope != s.ID {
				errs = append(errs, fmt.Errorf("variable %q listed by scope %d but owned by %d", v.Name, s.ID, v.Scope))
			}
			for _, ref := range v.References {
				got, ok := lookup.FindVariableReferencedBy(ref.Node)
				if !ok || got != v {
					errs = append(errs, fmt.Errorf("reference %q at %s does not map back to scope %d", v.Name, ref.Path, s.ID))
				}
			}
			for _, decl := range v.Declarations {
				got, ok := lookup.FindVariableDeclaredBy(decl.Node)
				if !ok || got.Name != v.Name {
					errs = append(errs, fmt.Errorf("declaration %q at %s is not indexed", v.Name, decl.Path))
				}
			}
		}
		return true
	})
	return errors.Join(errs...)
}

func encloses(outer, inner *scope.Scope) bool {
	for s, ok := inner.ParentScope(); ok; s, ok = s.ParentScope() {
		if s == outer {
			return true
		}
	}
	return false
}
