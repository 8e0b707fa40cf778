package scope

import (
	"errors"
	"fmt"

	"github.com/dop251/goja/ast"
)

var (
	// ErrUnsupportedNode reports an AST shape the analyzer does not know.
	ErrUnsupportedNode = errors.New("unsupported AST node")
	// ErrInvalidArgument reports a lookup query that has no meaningful answer.
	ErrInvalidArgument = errors.New("invalid argument")
)

// unsupportedNode is raised as a panic inside the walker and converted into
// an error at the API boundary.
type unsupportedNode struct {
	node ast.Node
	path Path
}

func (e *unsupportedNode) Error() string {
	if e.node == nil {
		return fmt.Sprintf("%v: <nil> at %s", ErrUnsupportedNode, e.path)
	}
	return fmt.Sprintf("%v: %T at %s", ErrUnsupportedNode, e.node, e.path)
}

func (e *unsupportedNode) Unwrap() error { return ErrUnsupportedNode }
