package scope

// ScopeID identifies a scope inside the analysis arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// VariableID identifies a variable inside the analysis arena.
type VariableID uint32

const (
	// NoVariableID marks the absence of a variable reference.
	NoVariableID VariableID = 0
)

// IsValid reports whether the variable ID refers to an allocated variable.
func (id VariableID) IsValid() bool { return id != NoVariableID }
