package scope

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/dop251/goja/ast"
)

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 16
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a scope under parent and returns its ID.
func (s *Scopes) New(kind Kind, parent ScopeID, node ast.Node) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(value)
	s.data = append(s.data, Scope{
		ID:     id,
		Kind:   kind,
		Node:   node,
		Parent: parent,
		names:  make(map[string]VariableID),
	})
	if parent.IsValid() {
		if parentScope := s.Get(parent); parentScope != nil {
			parentScope.children = append(parentScope.children, id)
		}
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
// Pointers are invalidated by New while analysis is running.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// Data exposes the underlying slice without the sentinel.
func (s *Scopes) Data() []Scope {
	if len(s.data) <= 1 {
		return nil
	}
	return s.data[1:]
}

// Variables stores variables in a compact arena.
type Variables struct {
	data []Variable
}

// NewVariables creates a variable arena with optional capacity hint.
func NewVariables(capacity uint32) *Variables {
	if capacity == 0 {
		capacity = 32
	}
	return &Variables{
		data: make([]Variable, 1, capacity+1), // index 0 reserved for NoVariableID
	}
}

// New allocates a variable named name in scope and returns its ID.
func (v *Variables) New(name string, owner ScopeID) VariableID {
	value, err := safecast.Conv[uint32](len(v.data))
	if err != nil {
		panic(fmt.Errorf("variables arena overflow: %w", err))
	}
	id := VariableID(value)
	v.data = append(v.data, Variable{ID: id, Name: name, Scope: owner})
	return id
}

// Get returns a variable pointer or nil for invalid ID.
func (v *Variables) Get(id VariableID) *Variable {
	if !id.IsValid() || int(id) >= len(v.data) {
		return nil
	}
	return &v.data[id]
}

// Len reports number of stored variables excluding sentinel.
func (v *Variables) Len() int { return len(v.data) - 1 }

// Data exposes the arena storage without the sentinel.
func (v *Variables) Data() []Variable {
	if len(v.data) <= 1 {
		return nil
	}
	return v.data[1:]
}
