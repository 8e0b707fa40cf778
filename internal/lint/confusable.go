package lint

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"golang.org/x/text/unicode/norm"

	"jsscope/internal/diag"
	"jsscope/internal/scope"
)

// confusable reports variables of one scope whose names are canonically
// equivalent but spelled with different code points.
func (l *linter) confusable(s *scope.Scope) {
	if !l.enabled(diag.LntConfusableNames) {
		return
	}
	vars := s.Variables()
	seen := make(map[string]*scope.Variable, len(vars))
	for _, v := range vars {
		key := norm.NFC.String(v.Name)
		first, ok := seen[key]
		if !ok {
			seen[key] = v
			continue
		}
		b := diag.ReportWarning(l.r, diag.LntConfusableNames, l.at(site(v)),
			fmt.Sprintf("'%s' and '%s' look identical but are different bindings", v.Name, first.Name))
		b.WithNote(l.at(site(first)), "other spelling is used here").Emit()
	}
}

// site returns the first declaration of v, or its first reference when free.
func site(v *scope.Variable) ast.Node {
	if len(v.Declarations) > 0 {
		return v.Declarations[0].Node
	}
	if len(v.References) > 0 {
		return v.References[0].Node
	}
	return nil
}
