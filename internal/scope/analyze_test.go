package scope_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja/ast"
	"github.com/google/go-cmp/cmp"

	"jsscope/internal/scope"
	"jsscope/internal/testkit"
)

func scopeKinds(g *scope.GlobalScope) []string {
	var out []string
	g.Walk(func(s *scope.Scope) bool {
		out = append(out, s.Kind.String())
		return true
	})
	return out
}

func firstScope(t *testing.T, g *scope.GlobalScope, kind scope.Kind) *scope.Scope {
	t.Helper()
	var found *scope.Scope
	g.Walk(func(s *scope.Scope) bool {
		if found == nil && s.Kind == kind {
			found = s
		}
		return found == nil
	})
	if found == nil {
		t.Fatalf("no %s scope", kind)
	}
	return found
}

func mustVar(t *testing.T, s *scope.Scope, name string) *scope.Variable {
	t.Helper()
	v, ok := s.LookupVariable(name)
	if !ok {
		t.Fatalf("scope %s: variable %q not found", s.Kind, name)
	}
	return v
}

func declKinds(v *scope.Variable) []string {
	out := make([]string, 0, len(v.Declarations))
	for _, d := range v.Declarations {
		out = append(out, d.Kind.String())
	}
	return out
}

func accesses(v *scope.Variable) []string {
	out := make([]string, 0, len(v.References))
	for _, r := range v.References {
		out = append(out, r.Access.String())
	}
	return out
}

const noArguments = `{"name": "arguments", "references": [], "declarations": []}`

func TestSerializeFixtures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "plain var",
			src:  "var v1; var v2 = 'hello';",
			want: `{"node": "Program_0", "through": [], "children": [], "type": "Global", "isDynamic": true, "variables": [` +
				`{"name": "v2", "references": [{"node": "Identifier_6", "accessibility": "Write"}], "declarations": [{"node": "Identifier_6", "kind": "Var"}]}, ` +
				`{"name": "v1", "references": [], "declarations": [{"node": "Identifier_3", "kind": "Var"}]}]}`,
		},
		{
			name: "with resolves to globals",
			src:  "with (Math) { var x = cos(3*PI); alert(x); }",
			want: `{"node": "Program_0", "through": [], "children": [` +
				`{"node": "WithStatement_1", "through": [], "children": [` +
				`{"node": "BlockStatement_3", "through": [], "children": [], "type": "Block", "isDynamic": false, "variables": []}` +
				`], "type": "With", "isDynamic": true, "variables": []}` +
				`], "type": "Global", "isDynamic": true, "variables": [` +
				`{"name": "alert", "references": [{"node": "Identifier_14", "accessibility": "Read"}], "declarations": []}, ` +
				`{"name": "PI", "references": [{"node": "Identifier_11", "accessibility": "Read"}], "declarations": []}, ` +
				`{"name": "cos", "references": [{"node": "Identifier_8", "accessibility": "Read"}], "declarations": []}, ` +
				`{"name": "Math", "references": [{"node": "Identifier_2", "accessibility": "Read"}], "declarations": []}, ` +
				`{"name": "x", "references": [{"node": "Identifier_6", "accessibility": "Write"}, {"node": "Identifier_15", "accessibility": "Read"}], ` +
				`"declarations": [{"node": "Identifier_6", "kind": "Var"}]}]}`,
		},
		{
			name: "duplicate function declarations",
			src:  "function foo(){ function bar(){return 3;} return bar(); function bar(){return 'hello';} }",
			want: `{"node": "Program_0", "through": [], "children": [` +
				`{"node": "FunctionDeclaration_1", "through": [], "children": [` +
				`{"node": "FunctionDeclaration_6", "through": [], "children": [], "type": "Function", "isDynamic": false, "variables": [` + noArguments + `]}, ` +
				`{"node": "FunctionDeclaration_16", "through": [], "children": [], "type": "Function", "isDynamic": false, "variables": [` + noArguments + `]}` +
				`], "type": "Function", "isDynamic": false, "variables": [` + noArguments + `, ` +
				`{"name": "bar", "references": [{"node": "Identifier_15", "accessibility": "Read"}], ` +
				`"declarations": [{"node": "Identifier_8", "kind": "FunctionDeclaration"}, {"node": "Identifier_18", "kind": "FunctionDeclaration"}]}]}` +
				`], "type": "Global", "isDynamic": true, "variables": [` +
				`{"name": "foo", "references": [], "declarations": [{"node": "Identifier_3", "kind": "FunctionDeclaration"}]}]}`,
		},
		{
			name: "nested functions with closures",
			src:  "function outer(p) { function inner() { return p; } return inner(); }",
			want: `{"node": "Program_0", "through": [], "children": [` +
				`{"node": "FunctionDeclaration_1", "through": [], "children": [` +
				`{"node": "FunctionDeclaration_8", "through": [], "children": [], "type": "Function", "isDynamic": false, "variables": [` + noArguments + `]}` +
				`], "type": "Function", "isDynamic": false, "variables": [` + noArguments + `, ` +
				`{"name": "inner", "references": [{"node": "Identifier_17", "accessibility": "Read"}], "declarations": [{"node": "Identifier_10", "kind": "FunctionDeclaration"}]}, ` +
				`{"name": "p", "references": [{"node": "Identifier_14", "accessibility": "Read"}], "declarations": [{"node": "Identifier_6", "kind": "Param"}]}]}` +
				`], "type": "Global", "isDynamic": true, "variables": [` +
				`{"name": "outer", "references": [], "declarations": [{"node": "Identifier_3", "kind": "FunctionDeclaration"}]}]}`,
		},
		{
			name: "hoisted block function",
			src:  "{ function f() {} } f();",
			want: `{"node": "Program_0", "through": [], "children": [` +
				`{"node": "BlockStatement_1", "through": [], "children": [` +
				`{"node": "FunctionDeclaration_2", "through": [], "children": [], "type": "Function", "isDynamic": false, "variables": [` + noArguments + `]}` +
				`], "type": "Block", "isDynamic": false, "variables": [` +
				`{"name": "f", "references": [], "declarations": [{"node": "Identifier_4", "kind": "FunctionDeclaration"}]}]}` +
				`], "type": "Global", "isDynamic": true, "variables": [` +
				`{"name": "f", "references": [{"node": "Identifier_9", "accessibility": "Read"}], "declarations": [{"node": "Identifier_4", "kind": "FunctionB33"}]}]}`,
		},
		{
			name: "closure over outer local",
			src:  "function counter() { var n = 0; return function () { n += 1; return n; }; }",
			want: `{"node": "Program_0", "through": [], "children": [` +
				`{"node": "FunctionDeclaration_1", "through": [], "children": [` +
				`{"node": "FunctionLiteral_11", "through": [], "children": [], "type": "Function", "isDynamic": false, "variables": [` + noArguments + `]}` +
				`], "type": "Function", "isDynamic": false, "variables": [` + noArguments + `, ` +
				`{"name": "n", "references": [{"node": "Identifier_8", "accessibility": "Write"}, {"node": "Identifier_16", "accessibility": "ReadWrite"}, ` +
				`{"node": "Identifier_19", "accessibility": "Read"}], "declarations": [{"node": "Identifier_8", "kind": "Var"}]}]}` +
				`], "type": "Global", "isDynamic": true, "variables": [` +
				`{"name": "counter", "references": [], "declarations": [{"node": "Identifier_3", "kind": "FunctionDeclaration"}]}]}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := scope.Serialize(testkit.AnalyzeScript(t, tc.src))
			if got != tc.want {
				t.Fatalf("serialize mismatch:\n got: %s\nwant: %s", got, tc.want)
			}
		})
	}
}

func TestSerializerSharesCounter(t *testing.T) {
	s := scope.NewSerializer()
	first := s.Serialize(testkit.AnalyzeScript(t, "var a;"))
	second := s.Serialize(testkit.AnalyzeScript(t, "var b;"))
	if !strings.HasPrefix(first, `{"node": "Program_0"`) {
		t.Fatalf("first tree: %s", first)
	}
	// Program, VariableStatement, Binding and Identifier of the first tree
	if !strings.HasPrefix(second, `{"node": "Program_4"`) || !strings.Contains(second, `"Identifier_7"`) {
		t.Fatalf("second tree must continue the count: %s", second)
	}
}

func TestVarHoistsToVarScope(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		owner scope.Kind
	}{
		{name: "block", src: "{ var v; }", owner: scope.KindGlobal},
		{name: "catch", src: "try {} catch (e) { var v; }", owner: scope.KindGlobal},
		{name: "with", src: "with (o) { var v; }", owner: scope.KindGlobal},
		{name: "loop head", src: "for (var v of []) {}", owner: scope.KindGlobal},
		{name: "switch", src: "switch (1) { case 1: var v; }", owner: scope.KindGlobal},
		{name: "function block", src: "function f() { if (1) { var v; } }", owner: scope.KindFunction},
		{name: "function catch", src: "function f() { try {} catch (e) { { var v; } } }", owner: scope.KindFunction},
		{name: "function with", src: "function f(o) { with (o) { var v = 1; } }", owner: scope.KindFunction},
		{name: "arrow", src: "() => { { var v; } }", owner: scope.KindArrowFunction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := testkit.AnalyzeScript(t, tc.src)
			var owners []string
			g.Walk(func(s *scope.Scope) bool {
				if v, ok := s.LookupVariable("v"); ok {
					owners = append(owners, s.Kind.String())
					if diff := cmp.Diff([]string{"Var"}, declKinds(v)); diff != "" {
						t.Errorf("v declarations (-want +got):\n%s", diff)
					}
				}
				return true
			})
			if diff := cmp.Diff([]string{tc.owner.String()}, owners); diff != "" {
				t.Fatalf("scopes owning v (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDuplicateDeclarationsShareVariable(t *testing.T) {
	g := testkit.AnalyzeScript(t, "var bar = 1; function bar() {} bar();")
	if diff := cmp.Diff([]string{"Global", "Function"}, scopeKinds(g)); diff != "" {
		t.Fatalf("scope kinds (-want +got):\n%s", diff)
	}
	bar := mustVar(t, g.Scope, "bar")
	if diff := cmp.Diff([]string{"Var", "FunctionDeclaration"}, declKinds(bar)); diff != "" {
		t.Fatalf("declarations (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Write", "Read"}, accesses(bar)); diff != "" {
		t.Fatalf("references (-want +got):\n%s", diff)
	}
	if len(g.Variables()) != 1 {
		t.Fatalf("expected a single global variable, got %d", len(g.Variables()))
	}
}

func TestWithResolvesToGlobals(t *testing.T) {
	g := testkit.AnalyzeScript(t, "with (Math) { x = cos(0); }")
	with := firstScope(t, g, scope.KindWith)
	if !with.IsDynamic() {
		t.Fatalf("with scope must be dynamic")
	}
	if len(with.Through()) != 0 {
		t.Fatalf("references resolving to globals must not pass through: %+v", with.Through())
	}
	for _, name := range []string{"Math", "x", "cos"} {
		if v := mustVar(t, g.Scope, name); !v.IsFree() {
			t.Fatalf("%s should be an implicit global", name)
		}
	}
	if diff := cmp.Diff([]string{"Write"}, accesses(mustVar(t, g.Scope, "x"))); diff != "" {
		t.Fatalf("x references (-want +got):\n%s", diff)
	}
}

func TestWithThroughToFunctionLocal(t *testing.T) {
	g := testkit.AnalyzeScript(t, "function f(o) { var y; with (o) { y = 1; z; } }")
	with := firstScope(t, g, scope.KindWith)
	refs := with.ThroughFor("y")
	if len(refs) != 1 || refs[0].Access != scope.Write {
		t.Fatalf("expected one write of y through the with scope, got %+v", refs)
	}
	if with.ThroughFor("z") != nil {
		t.Fatalf("z resolves globally and must not pass through")
	}
	fn := firstScope(t, g, scope.KindFunction)
	if y := mustVar(t, fn, "y"); len(y.References) != 1 {
		t.Fatalf("y should hold the reference, got %d", len(y.References))
	}
}

func TestEvalTaintsScope(t *testing.T) {
	g := testkit.AnalyzeScript(t, "function f() { var x; function g() { eval(''); return x; } }")
	var inner *scope.Scope
	g.Walk(func(s *scope.Scope) bool {
		if s.Kind == scope.KindFunction && s.IsDynamic() {
			inner = s
		}
		return true
	})
	if inner == nil {
		t.Fatalf("direct eval must mark its function dynamic")
	}
	if refs := inner.ThroughFor("x"); len(refs) != 1 {
		t.Fatalf("x should pass through the eval-tainted scope, got %d", len(refs))
	}
	if inner.ThroughFor("eval") != nil {
		t.Fatalf("eval resolves globally and must not pass through")
	}
	outer := firstScope(t, g, scope.KindFunction)
	if outer.IsDynamic() {
		t.Fatalf("eval taint must not spread to the enclosing function")
	}
}

func TestBlockFunctionAnnexB(t *testing.T) {
	g := testkit.AnalyzeScript(t, "{ function f() {} } f();")
	if diff := cmp.Diff([]string{"Global", "Block", "Function"}, scopeKinds(g)); diff != "" {
		t.Fatalf("scope kinds (-want +got):\n%s", diff)
	}
	block := firstScope(t, g, scope.KindBlock)
	if diff := cmp.Diff([]string{"FunctionDeclaration"}, declKinds(mustVar(t, block, "f"))); diff != "" {
		t.Fatalf("block declarations (-want +got):\n%s", diff)
	}
	outer := mustVar(t, g.Scope, "f")
	if diff := cmp.Diff([]string{"FunctionB33"}, declKinds(outer)); diff != "" {
		t.Fatalf("global declarations (-want +got):\n%s", diff)
	}
	if len(outer.References) != 1 {
		t.Fatalf("call should resolve to the var-scoped companion")
	}
}

func TestAnnexBSuppressed(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opts scope.Options
	}{
		{name: "let", src: "let f; { function f() {} }"},
		{name: "strict", src: "'use strict'; { function f() {} }"},
		{name: "module", src: "{ function f() {} }", opts: scope.Options{Module: true}},
		{name: "param", src: "function g(f) { { function f() {} } }"},
		{name: "intermediate", src: "{ function f() {} { function f() {} } }"},
		{name: "function in var scope", src: "(function(){ { function f(){} } function f(){} })"},
		{name: "global function", src: "{ function f() {} } function f() {}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := scope.AnalyzeWith(testkit.ParseScript(t, tc.src), tc.opts)
			if err != nil {
				t.Fatalf("analyze: %v", err)
			}
			g.Walk(func(s *scope.Scope) bool {
				for _, v := range s.Variables() {
					for _, d := range v.Declarations {
						if d.Kind == scope.DeclFunctionB33 && s.Kind != scope.KindGlobal {
							t.Fatalf("unexpected companion in %s scope", s.Kind)
						}
					}
				}
				return true
			})
			if v, ok := g.LookupVariable("f"); ok {
				for _, d := range v.Declarations {
					if d.Kind == scope.DeclFunctionB33 && tc.name != "intermediate" {
						t.Fatalf("companion must be suppressed")
					}
				}
			}
		})
	}
}

func TestAnnexBMergesWithVar(t *testing.T) {
	g := testkit.AnalyzeScript(t, "var f; { function f() {} }")
	if diff := cmp.Diff([]string{"Var", "FunctionB33"}, declKinds(mustVar(t, g.Scope, "f"))); diff != "" {
		t.Fatalf("declarations (-want +got):\n%s", diff)
	}
}

func TestClassBindsTwice(t *testing.T) {
	g := testkit.AnalyzeScript(t, "class C { m() { return C; } } new C();")
	outer := mustVar(t, g.Scope, "C")
	if diff := cmp.Diff([]string{"ClassDeclaration"}, declKinds(outer)); diff != "" {
		t.Fatalf("outer declarations (-want +got):\n%s", diff)
	}
	cls := firstScope(t, g, scope.KindClassName)
	if !cls.IsStrict() {
		t.Fatalf("class scope must be strict")
	}
	inner := mustVar(t, cls, "C")
	if len(inner.References) != 1 || len(outer.References) != 1 {
		t.Fatalf("inner refs=%d outer refs=%d, want 1 and 1", len(inner.References), len(outer.References))
	}
}

func TestCatchParameterPattern(t *testing.T) {
	g := testkit.AnalyzeScript(t, "try {} catch ({a, b: [c]}) { a; c; }")
	if diff := cmp.Diff([]string{"Global", "Block", "Catch", "Block"}, scopeKinds(g)); diff != "" {
		t.Fatalf("scope kinds (-want +got):\n%s", diff)
	}
	catch := firstScope(t, g, scope.KindCatch)
	for _, name := range []string{"a", "c"} {
		v := mustVar(t, catch, name)
		if diff := cmp.Diff([]string{"CatchParam"}, declKinds(v)); diff != "" {
			t.Fatalf("%s declarations (-want +got):\n%s", name, diff)
		}
		if len(v.References) != 1 {
			t.Fatalf("%s: want 1 reference, got %d", name, len(v.References))
		}
	}
	if _, ok := catch.LookupVariable("b"); ok {
		t.Fatalf("property key b must not bind")
	}
}

func TestArgumentsOnlyInFunctions(t *testing.T) {
	g := testkit.AnalyzeScript(t, "function f() { return arguments; } var g = () => arguments;")
	fn := firstScope(t, g, scope.KindFunction)
	args := mustVar(t, fn, "arguments")
	if !args.IsFree() || len(args.References) != 1 {
		t.Fatalf("function arguments: free=%v refs=%d", args.IsFree(), len(args.References))
	}
	arrow := firstScope(t, g, scope.KindArrowFunction)
	if _, ok := arrow.LookupVariable("arguments"); ok {
		t.Fatalf("arrow functions have no arguments binding")
	}
	if v := mustVar(t, g.Scope, "arguments"); len(v.References) != 1 {
		t.Fatalf("arrow reference should reach the global scope")
	}
}

func TestArgumentsShadowedByParam(t *testing.T) {
	g := testkit.AnalyzeScript(t, "function f(arguments) { return arguments; }")
	fn := firstScope(t, g, scope.KindFunction)
	v := mustVar(t, fn, "arguments")
	if diff := cmp.Diff([]string{"Param"}, declKinds(v)); diff != "" {
		t.Fatalf("declarations (-want +got):\n%s", diff)
	}
}

func TestParameterExpressionsGetOwnScope(t *testing.T) {
	g := testkit.AnalyzeScript(t, "function f(a = b, c) { var b; }")
	if diff := cmp.Diff([]string{"Global", "Parameters", "Function"}, scopeKinds(g)); diff != "" {
		t.Fatalf("scope kinds (-want +got):\n%s", diff)
	}
	params := firstScope(t, g, scope.KindParameters)
	mustVar(t, params, "a")
	mustVar(t, params, "c")
	fn := firstScope(t, g, scope.KindFunction)
	if b := mustVar(t, fn, "b"); len(b.References) != 0 {
		t.Fatalf("default value must not see body vars")
	}
	if b := mustVar(t, g.Scope, "b"); !b.IsFree() {
		t.Fatalf("b in the default value should be an implicit global")
	}
}

func TestNamedFunctionExpression(t *testing.T) {
	prog := testkit.ParseScript(t, "var f = function g() { return g; };")
	g, err := scope.Analyze(prog)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if diff := cmp.Diff([]string{"Global", "FunctionName", "Function"}, scopeKinds(g)); diff != "" {
		t.Fatalf("scope kinds (-want +got):\n%s", diff)
	}
	name := firstScope(t, g, scope.KindFunctionName)
	if v := mustVar(t, name, "g"); len(v.References) != 1 {
		t.Fatalf("self reference should resolve to the name scope")
	}
	lit := prog.Body[0].(*ast.VariableStatement).List[0].Initializer.(*ast.FunctionLiteral)
	found, ok := scope.NewLookup(g).FindScopeFor(lit)
	if !ok || found != name {
		t.Fatalf("function literal should map to its FunctionName scope")
	}
}

func TestAccessibility(t *testing.T) {
	g := testkit.AnalyzeScript(t, "var n = 0; n += 1; n++; --n; [n] = [1]; ({n} = {}); for (n in {}) {} n;")
	want := []string{"Write", "ReadWrite", "ReadWrite", "ReadWrite", "Write", "Write", "Write", "Read"}
	if diff := cmp.Diff(want, accesses(mustVar(t, g.Scope, "n"))); diff != "" {
		t.Fatalf("accesses (-want +got):\n%s", diff)
	}
}

func TestLetWithoutInitializerHasNoReference(t *testing.T) {
	g := testkit.AnalyzeScript(t, "let a; const b = 1; { let a = b; }")
	if v := mustVar(t, g.Scope, "a"); len(v.References) != 0 {
		t.Fatalf("uninitialized let must not write")
	}
	block := firstScope(t, g, scope.KindBlock)
	if diff := cmp.Diff([]string{"Let"}, declKinds(mustVar(t, block, "a"))); diff != "" {
		t.Fatalf("inner a (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Write", "Read"}, accesses(mustVar(t, g.Scope, "b"))); diff != "" {
		t.Fatalf("b accesses (-want +got):\n%s", diff)
	}
}

func TestLoopScopes(t *testing.T) {
	g := testkit.AnalyzeScript(t, "for (let i = 0; i < 3; i++) {} for (const k of []) {} switch (1) { case 1: let s; }")
	want := []string{"Global", "Block", "Block", "Block", "Block", "Block"}
	if diff := cmp.Diff(want, scopeKinds(g)); diff != "" {
		t.Fatalf("scope kinds (-want +got):\n%s", diff)
	}
	if _, ok := g.LookupVariable("i"); ok {
		t.Fatalf("loop let must stay in the loop scope")
	}
	kids := g.ChildIDs()
	if len(kids) != 3 {
		t.Fatalf("global children = %d, want 3", len(kids))
	}
	kids[0] = g.ID
	if g.ChildIDs()[0] == g.ID {
		t.Fatalf("ChildIDs must return a copy")
	}
}

func TestModuleAndStrict(t *testing.T) {
	mod := testkit.AnalyzeModule(t, "var x;")
	if !mod.IsModule() || !mod.IsStrict() {
		t.Fatalf("module root must be strict")
	}
	script := testkit.AnalyzeScript(t, "function f() { 'use strict'; { function g() {} } }")
	if script.IsStrict() {
		t.Fatalf("script root is sloppy")
	}
	fn := firstScope(t, script, scope.KindFunction)
	if !fn.IsStrict() {
		t.Fatalf("directive should make the function strict")
	}
	if _, ok := fn.LookupVariable("g"); ok {
		t.Fatalf("strict block functions get no companion")
	}
}

func TestStaticBlockIsVarScope(t *testing.T) {
	g := testkit.AnalyzeScript(t, "class A { static { var v = 1; } }")
	sb := firstScope(t, g, scope.KindStaticBlock)
	mustVar(t, sb, "v")
	if _, ok := g.LookupVariable("v"); ok {
		t.Fatalf("static block var must not leak")
	}
}

func TestSerializeIsDeterministic(t *testing.T) {
	const src = "function f(a, b = 1) { with (a) { b; } try { g(); } catch (e) { let q = e; } } class K extends f {}"
	first := scope.Serialize(testkit.AnalyzeScript(t, src))
	second := scope.Serialize(testkit.AnalyzeScript(t, src))
	if first != second {
		t.Fatalf("serialization differs between runs:\n%s\n%s", first, second)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := scope.Analyze(nil); !errors.Is(err, scope.ErrInvalidArgument) {
		t.Fatalf("nil program: got %v", err)
	}
	prog := &ast.Program{Body: []ast.Statement{&ast.BadStatement{From: 1, To: 2}}}
	_, err := scope.Analyze(prog)
	if !errors.Is(err, scope.ErrUnsupportedNode) {
		t.Fatalf("bad statement: got %v", err)
	}
}
