package scope

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"
)

// Serializer renders scope trees as deterministic JSON. Node ids are
// "<NodeType>_<n>" where n numbers every AST node in pre-order, top-down and
// left to right, on first encounter. One Serializer shares its counter across
// every tree it renders.
type Serializer struct {
	ids  map[ast.Node]int
	next int
}

// NewSerializer returns a serializer with a fresh node counter.
func NewSerializer() *Serializer {
	return &Serializer{ids: make(map[ast.Node]int)}
}

// Serialize renders global with a fresh serializer.
func Serialize(global *GlobalScope) string {
	return NewSerializer().Serialize(global)
}

// Serialize numbers the program behind global, then renders global and
// every nested scope.
func (s *Serializer) Serialize(global *GlobalScope) string {
	if prog := global.Program(); prog != nil {
		if _, seen := s.ids[prog]; !seen {
			preorder(prog, func(n ast.Node) { s.number(n) })
		}
	}
	var b strings.Builder
	s.scope(&b, global.Scope)
	return b.String()
}

func (s *Serializer) number(node ast.Node) int {
	id, ok := s.ids[node]
	if !ok {
		id = s.next
		s.ids[node] = id
		s.next++
	}
	return id
}

// NodeID returns the id of node. Nodes outside every numbered program get
// the next free number.
func (s *Serializer) NodeID(node ast.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", node), "*ast.") + "_" + strconv.Itoa(s.number(node))
}

func (s *Serializer) scope(b *strings.Builder, sc *Scope) {
	b.WriteString(`{"node": "`)
	b.WriteString(s.NodeID(sc.Node))
	b.WriteString(`", "through": [`)
	first := true
	for _, entry := range sc.through {
		for _, ref := range entry.References {
			if !first {
				b.WriteString(", ")
			}
			first = false
			s.reference(b, ref)
		}
	}
	b.WriteString(`], "children": [`)
	for i, child := range sc.ChildScopes() {
		if i > 0 {
			b.WriteString(", ")
		}
		s.scope(b, child)
	}
	b.WriteString(`], "type": "`)
	b.WriteString(sc.Kind.String())
	b.WriteString(`", "isDynamic": `)
	b.WriteString(strconv.FormatBool(sc.dynamic))
	b.WriteString(`, "variables": [`)
	// most recently declared first
	vars := sc.Variables()
	for i := len(vars) - 1; i >= 0; i-- {
		if i < len(vars)-1 {
			b.WriteString(", ")
		}
		s.variable(b, vars[i])
	}
	b.WriteString("]}")
}

func (s *Serializer) variable(b *strings.Builder, v *Variable) {
	b.WriteString(`{"name": `)
	b.WriteString(quote(v.Name))
	b.WriteString(`, "references": [`)
	for i, ref := range v.References {
		if i > 0 {
			b.WriteString(", ")
		}
		s.reference(b, ref)
	}
	b.WriteString(`], "declarations": [`)
	for i, decl := range v.Declarations {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`{"node": "`)
		b.WriteString(s.NodeID(decl.Node))
		b.WriteString(`", "kind": "`)
		b.WriteString(decl.Kind.String())
		b.WriteString(`"}`)
	}
	b.WriteString("]}")
}

func (s *Serializer) reference(b *strings.Builder, ref *Reference) {
	b.WriteString(`{"node": "`)
	b.WriteString(s.NodeID(ref.Node))
	b.WriteString(`", "accessibility": "`)
	b.WriteString(ref.Access.String())
	b.WriteString(`"}`)
}

func quote(name string) string {
	out, err := json.Marshal(name)
	if err != nil {
		panic(fmt.Errorf("quote %q: %w", name, err))
	}
	return string(out)
}
