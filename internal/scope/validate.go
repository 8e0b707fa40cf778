package scope

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Validate walks the arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (g *GlobalScope) Validate() error {
	var errs []error

	if g.Scope == nil || g.Kind != KindGlobal || !g.dynamic || g.Parent.IsValid() {
		errs = append(errs, errors.New("root must be a dynamic global scope without parent"))
	}

	for idx := 1; idx < len(g.scopes.data); idx++ {
		scopeID, err := toScopeID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s := &g.scopes.data[idx]
		if s.ID != scopeID {
			errs = append(errs, fmt.Errorf("scope %d stores id %d", scopeID, s.ID))
		}
		if s.Kind == KindInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		if s.Node == nil {
			errs = append(errs, fmt.Errorf("scope %d has no AST node", scopeID))
		}
		if s.Kind == KindWith && !s.dynamic {
			errs = append(errs, fmt.Errorf("with scope %d is not dynamic", scopeID))
		}
		if s.Kind == KindGlobal && scopeID != g.ID {
			errs = append(errs, fmt.Errorf("scope %d is a second global scope", scopeID))
		}
		if scopeID != g.ID {
			parent := g.scopes.Get(s.Parent)
			switch {
			case parent == nil || s.Parent == scopeID:
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", scopeID, s.Parent))
			case !slices.Contains(parent.children, scopeID):
				errs = append(errs, fmt.Errorf("scope %d parent %d missing backlink", scopeID, s.Parent))
			}
		}
		for _, child := range s.children {
			c := g.scopes.Get(child)
			if c == nil || c.Parent != scopeID {
				errs = append(errs, fmt.Errorf("scope %d child %d missing parent backlink", scopeID, child))
			}
		}
		if len(s.varIDs) != len(s.names) {
			errs = append(errs, fmt.Errorf("scope %d has %d variables but %d indexed names", scopeID, len(s.varIDs), len(s.names)))
		}
		for _, vid := range s.varIDs {
			v := g.vars.Get(vid)
			if v == nil {
				errs = append(errs, fmt.Errorf("scope %d lists invalid variable %d", scopeID, vid))
				continue
			}
			if v.Scope != scopeID {
				errs = append(errs, fmt.Errorf("variable %d (%s) owned by %d but listed in %d", vid, v.Name, v.Scope, scopeID))
			}
			if s.names[v.Name] != vid {
				errs = append(errs, fmt.Errorf("scope %d name index for %q does not point to variable %d", scopeID, v.Name, vid))
			}
		}
		for _, entry := range s.through {
			if s.Kind == KindGlobal || !s.dynamic {
				errs = append(errs, fmt.Errorf("scope %d is not dynamic but has through entries", scopeID))
				break
			}
			for _, ref := range entry.References {
				if ref.Name() != entry.Name {
					errs = append(errs, fmt.Errorf("scope %d through entry %q holds reference to %q", scopeID, entry.Name, ref.Name()))
				}
			}
		}
	}

	for idx := 1; idx < len(g.vars.data); idx++ {
		v := &g.vars.data[idx]
		owner := g.scopes.Get(v.Scope)
		if owner == nil {
			errs = append(errs, fmt.Errorf("variable %d (%s) has invalid scope %d", v.ID, v.Name, v.Scope))
			continue
		}
		if v.IsFree() && owner.Kind != KindGlobal && !(v.Name == "arguments" && owner.Kind == KindFunction) {
			errs = append(errs, fmt.Errorf("variable %d (%s) has no declarations outside the global scope", v.ID, v.Name))
		}
		for _, d := range v.Declarations {
			if d.Node == nil || d.Node.Name.String() != v.Name {
				errs = append(errs, fmt.Errorf("variable %d (%s) has a declaration for another name", v.ID, v.Name))
			}
		}
		for _, r := range v.References {
			if r.Node == nil || r.Name() != v.Name {
				errs = append(errs, fmt.Errorf("variable %d (%s) has a reference to another name", v.ID, v.Name))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func toScopeID(index int) (ScopeID, error) {
	value, err := safecast.Conv[uint32](index)
	if err != nil {
		return NoScopeID, fmt.Errorf("scope id overflow: %w", err)
	}
	return ScopeID(value), nil
}
