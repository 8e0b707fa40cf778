package scope_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"

	"jsscope/internal/scope"
	"jsscope/internal/testkit"
)

func TestFindVariablesForFuncDecl(t *testing.T) {
	prog := testkit.ParseScript(t, "{ function f() {} } function h() {}")
	g, err := scope.Analyze(prog)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	l := scope.NewLookup(g)

	block := prog.Body[0].(*ast.BlockStatement)
	decl := block.List[0].(*ast.FunctionDeclaration)
	v, companion, err := l.FindVariablesForFuncDecl(decl)
	if err != nil {
		t.Fatalf("FindVariablesForFuncDecl: %v", err)
	}
	if companion == nil || l.IsGlobal(v) || !l.IsGlobal(companion) {
		t.Fatalf("expected block binding plus global companion, got %+v / %+v", v, companion)
	}
	if s, ok := l.ScopeOf(v); !ok || s.Kind != scope.KindBlock {
		t.Fatalf("primary binding should live in the block")
	}

	top := prog.Body[1].(*ast.FunctionDeclaration)
	v, companion, err = l.FindVariablesForFuncDecl(top)
	if err != nil || companion != nil || !l.IsGlobal(v) {
		t.Fatalf("top-level function: v=%+v companion=%+v err=%v", v, companion, err)
	}

	fnScope, ok := l.FindScopeFor(top.Function)
	if !ok || fnScope.Kind != scope.KindFunction {
		t.Fatalf("function literal should map to its function scope")
	}
	if s, ok := l.FindScopeFor(top); !ok || s != fnScope {
		t.Fatalf("declaration and literal should share a scope")
	}
}

func TestFindVariablesForClassDecl(t *testing.T) {
	prog := testkit.ParseScript(t, "class C { static make() { return new C(); } }")
	g, err := scope.Analyze(prog)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	l := scope.NewLookup(g)
	decl := prog.Body[0].(*ast.ClassDeclaration)
	outer, inner, err := l.FindVariablesForClassDecl(decl)
	if err != nil {
		t.Fatalf("FindVariablesForClassDecl: %v", err)
	}
	if outer == inner || !l.IsGlobal(outer) {
		t.Fatalf("expected distinct outer global and inner binding")
	}
	if s, ok := l.ScopeOf(inner); !ok || s.Kind != scope.KindClassName {
		t.Fatalf("inner binding should live in the class scope")
	}
	if got, ok := l.FindVariableDeclaredBy(decl.Class.Name); !ok || got != outer {
		t.Fatalf("declared-by should return the outer binding")
	}
}

func TestLookupRejectsNamelessDeclarations(t *testing.T) {
	g := testkit.AnalyzeScript(t, "var x;")
	l := scope.NewLookup(g)
	if _, _, err := l.FindVariablesForFuncDecl(&ast.FunctionDeclaration{Function: &ast.FunctionLiteral{}}); !errors.Is(err, scope.ErrInvalidArgument) {
		t.Fatalf("nameless function: got %v", err)
	}
	if _, _, err := l.FindVariablesForClassDecl(&ast.ClassDeclaration{Class: &ast.ClassLiteral{}}); !errors.Is(err, scope.ErrInvalidArgument) {
		t.Fatalf("nameless class: got %v", err)
	}
	foreign := testkit.ParseScript(t, "function z() {}").Body[0].(*ast.FunctionDeclaration)
	if _, _, err := l.FindVariablesForFuncDecl(foreign); !errors.Is(err, scope.ErrInvalidArgument) {
		t.Fatalf("foreign declaration: got %v", err)
	}
}

func TestEveryIdentifierResolves(t *testing.T) {
	prog := testkit.ParseScript(t, "var a = b; function f(c) { return a + c + d; } f(a);")
	g, err := scope.Analyze(prog)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	l := scope.NewLookup(g)
	ret := prog.Body[1].(*ast.FunctionDeclaration).Function.Body.List[0].(*ast.ReturnStatement)
	sum := ret.Argument.(*ast.BinaryExpression)
	d := sum.Right.(*ast.Identifier)
	v, ok := l.FindVariableReferencedBy(d)
	if !ok || !v.IsFree() || !l.IsGlobal(v) {
		t.Fatalf("d should resolve to an implicit global")
	}
	c := sum.Left.(*ast.BinaryExpression).Right.(*ast.Identifier)
	v, ok = l.FindVariableReferencedBy(c)
	if !ok || l.IsGlobal(v) {
		t.Fatalf("c should resolve to the parameter")
	}
	if diff := declKinds(v); len(diff) != 1 || diff[0] != "Param" {
		t.Fatalf("c declarations: %v", diff)
	}
}

func TestIdentifierAt(t *testing.T) {
	src := "var alpha = 1;\nfunction f(beta) { return alpha + beta; }"
	prog := testkit.ParseScript(t, src)
	l := scope.NewLookup(scope.MustAnalyze(prog))

	at := func(sub string, nth int) file.Idx {
		off := -1
		for range nth + 1 {
			off += 1 + strings.Index(src[off+1:], sub)
		}
		return file.Idx(off + 1)
	}

	id, ok := l.IdentifierAt(at("alpha", 1) + 2)
	if !ok || id.Name != "alpha" {
		t.Fatalf("expected the alpha reference, got %v", id)
	}
	if v, ok := l.FindVariableReferencedBy(id); !ok || !l.IsGlobal(v) {
		t.Fatalf("reference should resolve to the global alpha")
	}

	id, ok = l.IdentifierAt(at("beta", 0))
	if !ok || id.Name != "beta" {
		t.Fatalf("expected the beta parameter, got %v", id)
	}
	if v, ok := l.FindVariableDeclaredBy(id); !ok || v.Declarations[0].Kind != scope.DeclParam {
		t.Fatalf("beta should be a parameter declaration")
	}

	if _, ok := l.IdentifierAt(at("return", 0)); ok {
		t.Fatalf("keywords are not identifiers")
	}
}
