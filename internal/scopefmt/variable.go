package scopefmt

import (
	"fmt"
	"io"

	"github.com/dop251/goja/ast"

	"jsscope/internal/scope"
)

// Variable writes every declaration and reference site of v.
func Variable(w io.Writer, v *scope.Variable, owner *scope.Scope, opts TreeOpts) {
	st := newStyles(opts.Color)
	locate := opts.Locate
	if locate == nil {
		locate = func(ast.Node) string { return "?" }
	}
	where := "unknown scope"
	if owner != nil {
		where = owner.Kind.String() + " scope"
		if owner.Node != nil {
			where += " @" + locate(owner.Node)
		}
	}
	state := ""
	if v.IsFree() {
		state = " (implicit global)"
	}
	fmt.Fprintf(w, "%s in %s%s\n", st.name.Sprint(v.Name), st.kind.Sprint(where), state)
	for _, d := range v.Declarations {
		fmt.Fprintf(w, "  %s %-20s %s\n", st.decl.Sprint("decl"), d.Kind, locate(d.Node))
	}
	for _, r := range v.References {
		fmt.Fprintf(w, "  %s  %-20s %s\n", st.dim.Sprint("ref"), r.Access, locate(r.Node))
	}
}
